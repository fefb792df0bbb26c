// SPDX-License-Identifier: EPL-2.0

package utils

import "errors"

var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for the positive side so 1.0 does not overflow
	return int16(x * 32767.0)
}

// PCMScale returns the divisor that maps signed integer PCM of the given
// bit depth into [-1, 1).
func PCMScale(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8:
		return 128.0, nil
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, ErrUnsupportedBitDepth
	}
}
