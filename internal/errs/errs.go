// Package errs holds the failure kinds shared by the tile pipeline. Failures
// are marked with one of the sentinels below, test for them with errors.Is.
package errs

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrDecode marks malformed tile bytes. The tile is aborted.
	ErrDecode = errors.New("decode failure")
	// ErrConfiguration marks an invalid tile index, scheme or style.
	ErrConfiguration = errors.New("configuration failure")
	// ErrIO marks a failed fetch: transport error or non-success status.
	ErrIO = errors.New("io failure")
)

// Decode wraps err as a decode failure.
func Decode(err error, format string, args ...any) error {
	if err == nil {
		err = errors.New("malformed payload")
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrDecode)
}

// Configurationf builds a configuration failure.
func Configurationf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// Configuration wraps err as a configuration failure.
func Configuration(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrConfiguration)
}

// IO wraps err as an I/O failure.
func IO(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrIO)
}

// IOf builds an I/O failure with no underlying cause.
func IOf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrIO)
}

// Kind names the failure kind of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrIO):
		return "io"
	}
	return "other"
}
