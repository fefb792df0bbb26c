// SPDX-License-Identifier: EPL-2.0

package wire

import (
	"errors"
	"fmt"
	"io"
)

// Op is a request opcode.
type Op int32

const (
	OpTranscode Op = 1 // int32 n, n bytes of UTF-8 path
	OpLoad      Op = 2
	OpHeader    Op = 3
	OpPayload   Op = 4
)

func (o Op) String() string {
	switch o {
	case OpTranscode:
		return "transcode"
	case OpLoad:
		return "load"
	case OpHeader:
		return "header"
	case OpPayload:
		return "payload"
	}
	return fmt.Sprintf("op(%d)", int32(o))
}

// Status leads every reply. StatusOK is followed by the op's body (nothing
// for transcode and load, so the reply is exactly the ack); any other
// status is followed by int32 n and an n-byte message.
type Status int32

const (
	StatusOK                Status = 0
	StatusTranscode         Status = 1
	StatusFeatureExtraction Status = 2
	StatusNoSession         Status = 3
	StatusBadRequest        Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTranscode:
		return "transcode error"
	case StatusFeatureExtraction:
		return "feature extraction error"
	case StatusNoSession:
		return "no session"
	case StatusBadRequest:
		return "bad request"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// MaxPathLen bounds the path in a transcode request.
const MaxPathLen = 4096

// RemoteError is a failure reply received by a Client.
type RemoteError struct {
	Status  Status
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

var errBadRequest = errors.New("bad request")

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b[:])), nil
}

func writeInt32(w io.Writer, v int32) error {
	_, err := w.Write(byteOrder.AppendUint32(nil, uint32(v)))
	return err
}

func writeFailure(w io.Writer, status Status, msg string) error {
	buf := byteOrder.AppendUint32(nil, uint32(status))
	buf = byteOrder.AppendUint32(buf, uint32(len(msg)))
	buf = append(buf, msg...)
	_, err := w.Write(buf)
	return err
}
