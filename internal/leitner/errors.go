package leitner

import "errors"

// Expected outcomes returned directly to callers. Check with errors.Is.
var (
	ErrInvalidName        = errors.New("leitner: topic name is empty or not valid UTF-8")
	ErrInvalidDescription = errors.New("leitner: description is not valid UTF-8")
	ErrAlreadyExists      = errors.New("leitner: topic already exists")
	ErrNotFound           = errors.New("leitner: topic not found")
	ErrInvalidLadder      = errors.New("leitner: ladder must be non-empty and strictly ascending")
)
