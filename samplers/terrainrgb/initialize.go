// Package terrainrgb samples elevations from raster tiles with heights
// encoded in the pixel colors, such as Mapbox Terrain-RGB or
// the Terrarium tiles from the AWS open terrain data.
package terrainrgb

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/paulmach/go.geo"
	"github.com/paulmach/profile/samplers"
	"github.com/paulmach/profile/utils"
)

// defaults for newly created Samplers.
// See Sampler for more information about these parameters.
const (
	DefaultZoom               = 14
	DefaultMaxSurfaceTileDim  = 4
	DefaultDownloadGoroutines = 4
	DefaultDownloadRetries    = 2
	DefaultTileSize           = 256
	DefaultTimeout            = 10 * time.Second
)

const (
	boundPadding    = 0.05   // fraction of the path bound
	minBoundPadding = 0.0005 // degrees, about 50 meters
)

// Encoding is how a tile pixel color maps to an elevation.
type Encoding int

// Supported encodings.
const (
	Mapbox    Encoding = iota // -10000 + (R*256*256 + G*256 + B) * 0.1
	Terrarium                 // R*256 + G + B/256 - 32768
)

// ParseEncoding parses the config name of an encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "", "mapbox":
		return Mapbox, nil
	case "terrarium":
		return Terrarium, nil
	}

	return Mapbox, fmt.Errorf("terrainrgb: unknown encoding %q", name)
}

func (e Encoding) String() string {
	if e == Terrarium {
		return "terrarium"
	}

	return "mapbox"
}

// Elevation decodes the pixel color into meters.
// Transparent pixels have no data and return NaN.
func (e Encoding) Elevation(c color.Color) float64 {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	if nrgba.A == 0 {
		return math.NaN()
	}

	r, g, b := float64(nrgba.R), float64(nrgba.G), float64(nrgba.B)
	if e == Terrarium {
		return r*256 + g + b/256 - 32768
	}

	return -10000 + (r*256*256+g*256+b)*0.1
}

// TileCache stores raw tile data between queries.
type TileCache interface {
	Get(ctx context.Context, z, x, y uint64) ([]byte, bool, error)
	Put(ctx context.Context, z, x, y uint64, data []byte) error
}

// A Sampler builds an elevation surface from the tiles covering
// the queried path and samples it at every vertex.
type Sampler struct {
	// required options
	SourceURLTemplate string // should be of the form http://{s}.host.com/{z}/{x}/{y}.png
	Encoding          Encoding

	// Subdomains replace {s} in the template, if any.
	Subdomains []string

	// SmoothingStdDev is used to smooth out the quantization steps of the tiles.
	// It is in meters and scaled to match the mercator projection of the surface,
	// so the same value can be used anywhere. Zero disables smoothing.
	SmoothingStdDev float64

	// set from defaults, so optional
	Zoom               int           // most detailed zoom level to use
	MaxSurfaceTileDim  int           // max height and width of the surface in tiles, to cap memory usage
	DownloadGoroutines int           // how many goroutines to use when downloading remote tiles
	DownloadRetries    int           // number of times to try fetching a tile, to absorb network errors
	TileSize           int           // pixel width and height of the tiles
	Timeout            time.Duration // per tile request

	Client *http.Client
	Cache  TileCache // optional
	Logger *slog.Logger
}

// Surface is the elevation grid built for one query, in mercator (EPSG:3857).
type Surface struct {
	Grid *geo.Surface

	lnglatBound        *geo.Bound
	smooth             valueAtter
	xTileMin, yTileMin uint64
	xTileMax, yTileMax uint64
	level              uint64
	tileSize           int
}

type valueAtter interface {
	ValueAt(point *geo.Point) float64
}

// New creates a new Sampler with the given options,
// plus the others set to the defaults.
func New(sourceURLTemplate string, encoding Encoding) *Sampler {
	return &Sampler{
		SourceURLTemplate: sourceURLTemplate,
		Encoding:          encoding,

		Zoom:               DefaultZoom,
		MaxSurfaceTileDim:  DefaultMaxSurfaceTileDim,
		DownloadGoroutines: DefaultDownloadGoroutines,
		DownloadRetries:    DefaultDownloadRetries,
		TileSize:           DefaultTileSize,
		Timeout:            DefaultTimeout,
	}
}

// QueryElevation builds the surface around the parts and samples every vertex.
// Tiles that fail to download leave NaN holes in the surface, the values for
// the rest are still returned along with the error.
func (s *Sampler) QueryElevation(ctx context.Context, parts []*geo.Path) ([][]float64, error) {
	bound := samplers.Bound(parts)
	if bound == nil {
		return nil, samplers.ErrBoundEmpty
	}

	surface, err := s.Build(ctx, bound)
	if surface == nil {
		return nil, err
	}

	return samplers.Query(parts, surface.ValueAt), err
}

// Build goes through the whole process of building the surface:
//   - figures out the proper zoom and tiles to download
//   - downloads those tiles
//   - smooths the surface, per the options
//
// A non nil surface with an error means some tiles are missing.
func (s *Sampler) Build(ctx context.Context, lnglatBound *geo.Bound) (*Surface, error) {
	if s.SmoothingStdDev < 0.0 {
		return nil, samplers.ErrStdDevNegative
	}

	surface, err := s.initialize(samplers.Pad(lnglatBound, boundPadding, minBoundPadding))
	if err != nil {
		return nil, err
	}

	err = s.downloadTiles(ctx, surface)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	surface.smooth = s.smooth(surface)
	return surface, err
}

// initialize figures out the proper size of the surface and initializes it.
// The next step should be to download the tiles and place them in the surface, see downloadTiles()
func (s *Sampler) initialize(lnglatBound *geo.Bound) (*Surface, error) {
	zoom := s.Zoom
	if zoom <= 0 || uint64(zoom) > geo.ScalarMercator.Level {
		zoom = DefaultZoom
	}

	maxTileDim := s.MaxSurfaceTileDim
	if maxTileDim < 1 {
		maxTileDim = DefaultMaxSurfaceTileDim
	}

	tileSize := s.TileSize
	if tileSize < 1 {
		tileSize = DefaultTileSize
	}

	xTileMin, xTileMax, yTileMin, yTileMax, level, err := utils.TileRanges(
		lnglatBound, uint64(maxTileDim), uint64(zoom))
	if err != nil {
		return nil, fmt.Errorf("terrainrgb: %w", err)
	}

	shift := geo.ScalarMercator.Level - level

	// build lng/lat and mercator bounds for the tile ranges we just found
	lng, lat := geo.ScalarMercator.Inverse(xTileMin<<shift, yTileMin<<shift)
	nw := geo.NewPoint(lng, lat)

	lng, lat = geo.ScalarMercator.Inverse((xTileMax+1)<<shift, (yTileMax+1)<<shift)
	se := geo.NewPoint(lng, lat)

	surfaceBound := geo.NewBoundFromPoints(nw, se)
	mercatorBound := geo.NewBoundFromPoints(
		nw.Clone().Transform(geo.Mercator.Project),
		se.Clone().Transform(geo.Mercator.Project),
	)

	if mercatorBound.Width() == 0 || mercatorBound.Height() == 0 {
		return nil, samplers.ErrBoundEmpty
	}

	grid := geo.NewSurface(
		mercatorBound,
		int(xTileMax-xTileMin+1)*tileSize,
		int(yTileMax-yTileMin+1)*tileSize,
	)

	// anything not covered by a downloaded tile has no data
	nan := math.NaN()
	for i := range grid.Grid {
		for j := range grid.Grid[i] {
			grid.Grid[i][j] = nan
		}
	}

	return &Surface{
		Grid:        grid,
		lnglatBound: surfaceBound,
		xTileMin:    xTileMin,
		xTileMax:    xTileMax,
		yTileMin:    yTileMin,
		yTileMax:    yTileMax,
		level:       level,
		tileSize:    tileSize,
	}, nil
}

// ValueAt returns the elevation at the mercator point, NaN if unknown.
func (s *Surface) ValueAt(point *geo.Point) float64 {
	if !s.Grid.Bound().Contains(point) {
		return math.NaN()
	}

	if s.smooth != nil {
		return s.smooth.ValueAt(point)
	}

	return s.Grid.ValueAt(point)
}

// Level is the zoom level of the tiles used.
func (s *Surface) Level() uint64 {
	return s.level
}

// TileCount is the number of tiles covering the surface.
func (s *Surface) TileCount() int {
	return int((s.xTileMax - s.xTileMin + 1) * (s.yTileMax - s.yTileMin + 1))
}

func (s *Sampler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return s.Logger
}
