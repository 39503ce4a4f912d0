package services

import "errors"

// Service errors
var (
	// Input errors
	ErrNoInput      = errors.New("input has neither a path nor a reader")
	ErrNoOutput     = errors.New("output has neither a path nor a writer")
	ErrNoFilesFound = errors.New("no spreadsheets found")
)
