package terrainrgb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paulmach/profile/samplers"
	"github.com/paulmach/profile/utils"
)

import _ "image/png" // to support tiles in these formats automatically
import _ "image/jpeg"

// downloadTiles fetches the tiles and puts the decoded elevations in the correct locations in the surface.
// It starts up to DownloadGoroutines goroutines to download the data in parallel.
// A tile that fails does not stop the others, all failures are returned joined together.
func (s *Sampler) downloadTiles(ctx context.Context, surface *Surface) error {
	var (
		mu       sync.Mutex
		tileErrs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.DownloadGoroutines))

	for x := surface.xTileMin; x <= surface.xTileMax; x++ {
		for y := surface.yTileMin; y <= surface.yTileMax; y++ {
			g.Go(func() error {
				img, err := s.fetchTile(gctx, x, y, surface.level)
				if err == nil {
					err = s.placeTile(surface, img, x, y)
				}

				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}

					s.logger().WarnContext(ctx, "tile failed",
						slog.Uint64("z", surface.level),
						slog.Uint64("x", x),
						slog.Uint64("y", y),
						slog.Any("error", err))

					mu.Lock()
					tileErrs = append(tileErrs, err)
					mu.Unlock()
				}

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return errors.Join(tileErrs...)
}

// fetchTile returns the decoded tile, from the cache if available.
func (s *Sampler) fetchTile(ctx context.Context, x, y, z uint64) (image.Image, error) {
	if s.Cache != nil {
		data, ok, err := s.Cache.Get(ctx, z, x, y)
		if err != nil {
			s.logger().WarnContext(ctx, "tile cache get failed", slog.Any("error", err))
		}

		if ok {
			if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
				return img, nil
			}
		}
	}

	reqCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	url := utils.BuildTileURL(s.SourceURLTemplate, x, y, z, s.Subdomains...)
	data, err := utils.FetchURL(reqCtx, s.Client, url, s.DownloadRetries)
	if err != nil {
		return nil, fmt.Errorf("terrainrgb: tile %d/%d/%d: %w", z, x, y, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("terrainrgb: decode tile %d/%d/%d: %w", z, x, y, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Put(ctx, z, x, y, data); err != nil {
			s.logger().WarnContext(ctx, "tile cache put failed", slog.Any("error", err))
		}
	}

	return img, nil
}

// placeTile decodes the pixels into the grid. Tiles do not overlap so
// concurrent calls write to disjoint parts of the grid.
func (s *Sampler) placeTile(surface *Surface, img image.Image, x, y uint64) error {
	bounds := img.Bounds()
	if bounds.Dx() != surface.tileSize || bounds.Dy() != surface.tileSize {
		return fmt.Errorf("%w: got %dx%d, want %d", samplers.ErrTileSize, bounds.Dx(), bounds.Dy(), surface.tileSize)
	}

	// for the tiles, 0,0 is northwest. For the surface, 0,0 is south west
	verticalFlipOffset := surface.Grid.Height - 1

	xStart := int(x-surface.xTileMin) * surface.tileSize
	yStart := int(y-surface.yTileMin) * surface.tileSize

	for k := 0; k < surface.tileSize; k++ {
		offset := verticalFlipOffset - (yStart + k)
		for l := 0; l < surface.tileSize; l++ {
			surface.Grid.Grid[xStart+l][offset] = s.Encoding.Elevation(img.At(bounds.Min.X+l, bounds.Min.Y+k))
		}
	}

	return nil
}
