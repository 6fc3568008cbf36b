package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrChunkFailed       = errors.New("chunk failed")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrDictionary        = errors.New("dictionary unavailable")
	ErrSinkFailed        = errors.New("sink write failed")
	ErrDependencyDown    = errors.New("dependency unavailable")
)

// Process exit codes returned by the spellcheck command.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitDependency = 3
	ExitOutput     = 4
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ChunkError records which chunk of which stage failed.
type ChunkError struct {
	Stage string
	Chunk int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s: stage %s chunk %d: %v", ErrChunkFailed, e.Stage, e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() []error {
	return []error{ErrChunkFailed, e.Err}
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrDependencyDown), errors.Is(err, ErrDictionary):
		return ExitDependency
	case errors.Is(err, ErrSinkFailed):
		return ExitOutput
	default:
		return ExitFailure
	}

}
