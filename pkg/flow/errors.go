package flow

import (
	"errors"
	"fmt"

	"github.com/sameehj/hlsflow/pkg/types"
)

var (
	ErrDuplicate      = errors.New("flow already registered")
	ErrNotFound       = errors.New("flow not found")
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrCycle          = errors.New("flow requirement cycle")
	ErrEmptyFlow      = errors.New("flow has no passes and no requirements")
	ErrInvalid        = errors.New("invalid flow")
)

// Error reports a registry failure for a specific flow key.
type Error struct {
	Kind error
	Key  types.FlowKey
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Key)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Key, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func flowErr(kind error, key types.FlowKey, format string, args ...any) error {
	return &Error{Kind: kind, Key: key, Msg: fmt.Sprintf(format, args...)}
}
