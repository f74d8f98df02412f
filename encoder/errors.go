package encoder

import (
	"fmt"

	"github.com/lookbusy1344/mc8/parser"
)

// EncodingError provides detailed context for encoding failures: the instruction's position
// (when known) and the underlying message, mirroring the positional-error shape used throughout
// the toolchain.
type EncodingError struct {
	Pos     parser.Position
	Kind    parser.ErrorKind
	Message string
}

func (e *EncodingError) Error() string {
	if e.Pos.Filename == "" && e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

// NewEncodingError creates an EncodingError at the given position.
func NewEncodingError(pos parser.Position, kind parser.ErrorKind, message string) *EncodingError {
	return &EncodingError{Pos: pos, Kind: kind, Message: message}
}
