// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"errors"
	"fmt"
)

var (
	// ErrTranscode is the root of every error returned by Gate.Transcode.
	ErrTranscode = errors.New("transcode failed")

	ErrInputNotFound     = fmt.Errorf("%w: input not found", ErrTranscode)
	ErrTranscoderMissing = fmt.Errorf("%w: ffmpeg not available", ErrTranscode)
)
