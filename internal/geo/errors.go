package geo

import "errors"

var (
	// ErrOutOfBounds is returned when a latitude or longitude lies outside the valid range.
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	// ErrInvalidUnit is returned for an unrecognized distance unit token.
	ErrInvalidUnit = errors.New("invalid unit of measurement")
	// ErrInvalidArgument is returned for a negative or non-numeric distance.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDegeneratePolygon is returned when a polygon with fewer than 3 vertices is queried.
	ErrDegeneratePolygon = errors.New("polygon needs at least 3 vertices")
)
