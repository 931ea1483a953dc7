package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTermCode    = errors.New("invalid term code")
	ErrUnknownCourse      = errors.New("unknown course")
	ErrInvalidRequirement = errors.New("invalid degree requirement")
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrEmptyDataset       = errors.New("dataset is empty")
	ErrMalformedID        = errors.New("malformed record id")
	ErrInvalidDataset     = errors.New("dataset invariant violated")
	ErrInvalidInput       = errors.New("invalid input")
)
