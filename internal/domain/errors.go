package domain

import "errors"

var (
	// ErrInvalidRequest signals missing or malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCoordinate signals a coordinate naming an unknown repository.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrNotFound signals that no component, asset, or blob matched.
	ErrNotFound = errors.New("not found")
	// ErrMalformedRecord signals an index record missing required attributes.
	ErrMalformedRecord = errors.New("malformed index record")
	// ErrInternal signals an unexpected storage or search failure.
	ErrInternal = errors.New("internal error")
)
