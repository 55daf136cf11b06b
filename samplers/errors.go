// Package samplers holds what is shared by the elevation sampler implementations.
package samplers

import (
	"errors"
)

var (
	// ErrBoundEmpty is returned when trying to build a surface
	// for an empty lng/lat boundary.
	ErrBoundEmpty = errors.New("samplers: surface area bound is empty")

	// ErrStdDevNegative is returned building a surface for a negative Std Dev.
	ErrStdDevNegative = errors.New("samplers: standard deviation negative")

	// ErrTileSize is returned when a downloaded tile does not have the expected dimensions.
	ErrTileSize = errors.New("samplers: unexpected tile size")

	// ErrElevationRange is returned when a heightmap's max elevation is below its min.
	ErrElevationRange = errors.New("samplers: max elevation below min elevation")
)
