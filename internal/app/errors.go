package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnreadableDocument = errors.New("document yielded no extractable text")
	ErrEmptyDocument      = errors.New("document produced no chunks")
	ErrStorageUnavailable = errors.New("vector store unavailable")
	ErrAnswerTimeout      = errors.New("answer generation timed out")
	ErrServiceUnavailable = errors.New("language model service unavailable")
)
