package profile

import (
	"errors"
)

var (
	// ErrEmptyPath is returned when the path has no parts
	// or one of its parts has no vertices.
	ErrEmptyPath = errors.New("profile: path is empty")

	// ErrMinPointCount is returned when densifying with a non-positive point count.
	ErrMinPointCount = errors.New("profile: min point count must be positive")

	// ErrNilSampler is returned when profiling without an elevation sampler.
	ErrNilSampler = errors.New("profile: elevation sampler is nil")

	// ErrSuperseded is returned by SetPath when a newer path was set
	// while this one was being profiled. The result is discarded.
	ErrSuperseded = errors.New("profile: superseded by a newer path")
)
