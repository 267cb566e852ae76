// Package utils provides small, generic helpers used across different layers
// of the application. They are independent of HTTP and of the store.
package utils

import (
	"errors"
	"fmt"
	"strconv"
)

// Query parameter names understood by ExtractPagination.
const (
	ParamStart = "start"
	ParamEnd   = "end"
)

// ErrMissingParameters is returned when pagination parameters are present but
// start or end is missing.
var ErrMissingParameters = errors.New("missing parameters: both start and end are required")

// ParseError reports a pagination parameter that is not a non-negative
// integer. Value carries the offending input verbatim.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse parameter %s=%q", e.Param, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RangeError reports a half-open range that cannot be applied to a sequence
// of length Len: either Start > End or End > Len.
type RangeError struct {
	Start, End, Len uint
}

func (e *RangeError) Error() string {
	if e.Start > e.End {
		return fmt.Sprintf("invalid range: start %d is greater than end %d", e.Start, e.End)
	}
	return fmt.Sprintf("invalid range: end %d exceeds %d available items", e.End, e.Len)
}

// Pagination is the half-open range [Start, End) into a result sequence.
type Pagination struct {
	Start uint
	End   uint
}

// ExtractPagination resolves start and end from a query parameter map.
//
// Both keys must be present, otherwise ErrMissingParameters is returned. Each
// value must parse as a base-10 unsigned integer, otherwise a *ParseError
// naming the value is returned (start is checked first). No range validation
// happens here; see Pagination.Bounds.
//
// Example:
//
//	p, err := utils.ExtractPagination(map[string]string{"start": "0", "end": "2"})
//	// p == Pagination{Start: 0, End: 2}
func ExtractPagination(params map[string]string) (Pagination, error) {
	rawStart, okStart := params[ParamStart]
	rawEnd, okEnd := params[ParamEnd]
	if !okStart || !okEnd {
		return Pagination{}, ErrMissingParameters
	}

	start, err := parseUint(ParamStart, rawStart)
	if err != nil {
		return Pagination{}, err
	}
	end, err := parseUint(ParamEnd, rawEnd)
	if err != nil {
		return Pagination{}, err
	}
	return Pagination{Start: start, End: end}, nil
}

// Bounds validates p against a sequence of length n and returns the slice
// indexes to use. It fails with *RangeError rather than letting a slice
// expression panic.
func (p Pagination) Bounds(n int) (lo, hi int, err error) {
	if n < 0 {
		n = 0
	}
	if p.Start > p.End || p.End > uint(n) {
		return 0, 0, &RangeError{Start: p.Start, End: p.End, Len: uint(n)}
	}
	return int(p.Start), int(p.End), nil
}

func parseUint(param, raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil {
		return 0, &ParseError{Param: param, Value: raw, Err: err}
	}
	return uint(v), nil
}
