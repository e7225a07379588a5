package apiclient

import (
	"errors"
	"fmt"
)

// TagError is a tracker operation that completed with a failure tag.
type TagError struct {
	// Tag is the outcome tag (ERROR, FULL, COPY, CRED, PASSWORD, 404).
	Tag string

	// Message is the operator-facing explanation, when present.
	Message string
}

func (e *TagError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tracker refused: %s", e.Tag)
	}
	return fmt.Sprintf("tracker refused (%s): %s", e.Tag, e.Message)
}

// tagError builds a TagError from a failure outcome.
func tagError(out []string) *TagError {
	e := &TagError{Tag: out[0]}
	if len(out) > 1 {
		e.Message = out[1]
	}
	return e
}

// HasTag reports whether err is a TagError carrying the given tag.
func HasTag(err error, tag string) bool {
	var te *TagError
	return errors.As(err, &te) && te.Tag == tag
}

// IsNotFound reports whether err is the empty-result outcome.
func IsNotFound(err error) bool {
	return HasTag(err, "404")
}

// IsCredentialError reports whether err is a token/name mismatch.
func IsCredentialError(err error) bool {
	return HasTag(err, "CRED")
}
