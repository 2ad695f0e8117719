package models

import "errors"

var (
	// ErrInvalidPieceSize rejects piece lengths that are not a power of
	// two or are below MinPieceLength, before any hashing starts.
	ErrInvalidPieceSize = errors.New("invalid piece size")

	// ErrUnsupportedVersion means a metainfo file carries neither v1 nor
	// v2 info fields.
	ErrUnsupportedVersion = errors.New("unsupported metainfo version")

	// ErrMissingField means a required info key is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInconsistent means stored v2 fields contradict each other, e.g.
	// a piece layer whose length does not match the declared file size.
	ErrInconsistent = errors.New("inconsistent metainfo")

	// ErrAlignmentImpossible is a defensive check in the hybrid combiner.
	// Padding always suffices to realign piece boundaries, so seeing this
	// error means a bug, not bad input.
	ErrAlignmentImpossible = errors.New("cannot align v1 and v2 piece boundaries")
)
