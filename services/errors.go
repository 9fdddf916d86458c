package services

import "errors"

var (
	// ErrInvalidScopeParameters means a scope was requested without its
	// required argument (or the scope itself is unknown). Caller error.
	ErrInvalidScopeParameters = errors.New("invalid scope parameters")

	// ErrInvalidParameters covers bad topK/limit values. Caller error.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrMalformedChunkID means the vector index returned a chunk id that
	// does not follow the "{noteID}#chunk{index}" format. This should never
	// happen in normal operation; treat it as a bug signal, not bad input.
	ErrMalformedChunkID = errors.New("malformed chunk identifier")
)
