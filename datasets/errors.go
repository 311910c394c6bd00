package datasets

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned by New when the configuration can't be used.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrLabelNotFound is returned by Generator.Next when an image basename has
	// no entry in the label mapping.
	ErrLabelNotFound = errors.New("basename not found in label mapping")

	// ErrUnrecognizedLabel is returned when a label is not in the vocabulary.
	ErrUnrecognizedLabel = errors.New("unrecognized label")
)
