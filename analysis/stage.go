// SPDX-License-Identifier: EPL-2.0

package analysis

// Stage names a step of Session.Load.
type Stage int

const (
	StageCache Stage = iota
	StageTranscode
	StageDecode
	StageFeatures
	StageEnvelope
	StageBuild
	StagePublish
)

var stageNames = [...]string{
	StageCache:     "cache",
	StageTranscode: "transcode",
	StageDecode:    "decode",
	StageFeatures:  "features",
	StageEnvelope:  "envelope",
	StageBuild:     "build",
	StagePublish:   "publish",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageCache, StageTranscode, StageDecode, StageFeatures, StageEnvelope, StageBuild, StagePublish}
}
