package pugtl

import (
	"errors"
	"fmt"
)

// ErrEmptyTranslation is returned by providers that answered with nothing.
var ErrEmptyTranslation = errors.New("empty translation")

// TranslationError wraps a failed translation of a single text.
type TranslationError struct {
	Text  string
	Cause error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translating %q: %v", e.Text, e.Cause)
	}
	return fmt.Sprintf("translating %q", e.Text)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a backend failure (API error, rate limit, etc.).
type ProviderError struct {
	Provider  string
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	name := e.Provider
	if name == "" {
		name = "provider"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", name, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Op    string
	Key   string
	Cause error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("cache %s %s", e.Op, e.Key)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure.
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the backend returned a different number of translations than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
