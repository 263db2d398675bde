package bucketmap

import (
	"github.com/pkg/errors"
)

var (
	// ErrKeyNotFound is returned by Get and Delete when the key is absent.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned by the bulk-load constructors and
	// UnmarshalJSON when the input is not a sequence of key/value pairs.
	ErrInvalidArgument = errors.New("invalid argument")
)

func keyNotFound[K comparable](key K) error {
	return errors.Wrapf(ErrKeyNotFound, "key %v", key)
}

func invalidRow(row int, format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, "row %d: "+format, append([]any{row}, args...)...)
}
