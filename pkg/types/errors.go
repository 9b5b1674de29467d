package types

import "errors"

// Domain errors shared across pipeline components
var (
	// Generation errors
	ErrGenerationFailed  = errors.New("generation failed after all attempts")
	ErrEmptyResponse     = errors.New("empty response from provider")
	ErrShortResponse     = errors.New("response contained fewer lines than requested")
	ErrNoProviderEnabled = errors.New("no generation provider configured")
	ErrUnsupportedModel  = errors.New("unsupported provider")

	// Dataset errors
	ErrMissingColumn = errors.New("required column not found")
	ErrEmptyDataset  = errors.New("dataset contains no usable rows")
	ErrInvalidTag    = errors.New("tag is not usable as a filename")

	// Artifact errors
	ErrNoArtifacts = errors.New("no artifact files found")
)
