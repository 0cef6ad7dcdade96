package certificates

import (
	"errors"
	"fmt"
)

// Kind classifies a rendering failure.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindImageDecode Kind = "image_decode"
	KindEncoding    Kind = "encoding"
	KindRender      Kind = "render"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrImageDecode = &Error{Kind: KindImageDecode}
	ErrEncoding    = &Error{Kind: KindEncoding}
	ErrRender      = &Error{Kind: KindRender}
)

// Error is returned by every stage of the rendering pipeline.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

var errMissingImage = errors.New("image is missing")
