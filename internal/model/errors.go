package model

import "github.com/rotisserie/eris"

// Error taxonomy shared by the generator, normalizer and scorer. Callers wrap
// these with eris and test for them with errors.Is.
var (
	// ErrSchemaMismatch means a weight, metric or column references something
	// the dataset schema does not declare.
	ErrSchemaMismatch = eris.New("schema mismatch")

	// ErrEmptyDataset means there are no records to normalize or rescale.
	ErrEmptyDataset = eris.New("empty dataset")

	// ErrInvalidWeight means a weight failed validation (negative or non-finite).
	ErrInvalidWeight = eris.New("invalid weight")

	// ErrInvalidParams means generator or catalog parameters are unusable.
	ErrInvalidParams = eris.New("invalid parameters")
)
