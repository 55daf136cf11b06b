package utils

import (
	"errors"

	"github.com/paulmach/go.geo"
)

// ErrNoTileRange is returned when no zoom level can cover the bound
// with the allowed number of tiles.
var ErrNoTileRange = errors.New("unable to find a tile range containing the bound")

// TileRanges returns the ranges of tiles that enclose the given lng/lat bound.
// It starts at maxZoom, the most detailed level wanted, and zooms out until
// the range fits in maxTileDim x maxTileDim tiles.
func TileRanges(lnglatBound *geo.Bound, maxTileDim, maxZoom uint64) (xTileMin, xTileMax, yTileMin, yTileMax, zoomLevel uint64, err error) {
	sw := lnglatBound.SouthWest()
	ne := lnglatBound.NorthEast()

	// NOTE: y-tiles increase from top down
	swX, swY := geo.ScalarMercator.Project(sw.Lng(), sw.Lat())
	neX, neY := geo.ScalarMercator.Project(ne.Lng(), ne.Lat())

	for zoomLevel = maxZoom; ; zoomLevel-- {
		shift := geo.ScalarMercator.Level - zoomLevel

		xTileMin, yTileMax = swX>>shift, swY>>shift
		xTileMax, yTileMin = neX>>shift, neY>>shift

		if xTileMax-xTileMin+1 <= maxTileDim && yTileMax-yTileMin+1 <= maxTileDim {
			return xTileMin, xTileMax, yTileMin, yTileMax, zoomLevel, nil
		}

		if zoomLevel == 0 {
			break
		}
	}

	return 0, 0, 0, 0, 0, ErrNoTileRange
}
