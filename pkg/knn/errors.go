package knn

import "errors"

var (
	// ErrCardinality is returned by Fit when the label count differs from the
	// number of training rows.
	ErrCardinality     = errors.New("label count does not match training rows")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFitted       = errors.New("classifier has no labels, call Fit first")
)
