// Package profile computes elevation profiles along sketched paths.
//
// A path goes through three steps:
//   - Preprocess: polygons become polylines and the path is densified
//   - Annotate: every vertex gets an elevation and a distance along its part
//   - Reduce: the annotated path becomes chart samples plus summary statistics
//
// Profile ties these together with an ElevationSampler and a Presenter.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMinPointCount is the number of points a path is densified into,
// at a minimum.
const DefaultMinPointCount = 250

// State of the profile display.
type State int

// Empty means no path is set and the presenter shows the placeholder series.
// Active means the presenter shows the profile of the last path set.
const (
	Empty State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}

	return "empty"
}

// Profile holds the options and state to profile paths.
type Profile struct {
	Sampler   ElevationSampler
	Presenter Presenter // may be nil, then only Do is useful

	// MinPointCount controls the densification, the spacing is the
	// geodesic length of the path divided by this value.
	MinPointCount int

	// DistanceFunc measures the distance between consecutive vertices.
	// Defaults to GeoDistance if nil.
	DistanceFunc DistanceFunc

	// Interpolate places the points added by densification.
	// Defaults to GreatCircle if nil.
	Interpolate InterpolateFunc

	Logger *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
}

// Result is the output of the full pipeline for one path.
type Result struct {
	Densified *Path
	Annotated AnnotatedPath
	Samples   []Sample
	Summary   Summary
	Runtime   time.Duration
}

// New creates a new Profile with the default parameters.
func New(sampler ElevationSampler, presenter Presenter) *Profile {
	return &Profile{
		Sampler:       sampler,
		Presenter:     presenter,
		MinPointCount: DefaultMinPointCount,
		DistanceFunc:  GeoDistance,
		Interpolate:   GreatCircle,
	}
}

// UsePlanar switches distances and densification to straight web mercator
// lines. Distances stay in meters.
func (p *Profile) UsePlanar() {
	p.DistanceFunc = PlanarDistance
	p.Interpolate = StraightLine
}

// Do runs the full pipeline on the path without touching the presenter:
// - convert to polyline and densify
// - query elevations and compute distances
// - reduce into samples and summary
func (p *Profile) Do(ctx context.Context, path *Path) (*Result, error) {
	start := time.Now()

	interpolate := p.Interpolate
	if interpolate == nil {
		interpolate = GreatCircle
	}

	densified, err := PreprocessWith(path, p.MinPointCount, interpolate)
	if err != nil {
		return nil, fmt.Errorf("profile: preprocess: %w", err)
	}

	annotated, err := p.Annotate(ctx, densified)
	if err != nil {
		return nil, err
	}

	samples, summary := Reduce(annotated)

	return &Result{
		Densified: densified,
		Annotated: annotated,
		Samples:   samples,
		Summary:   summary,
		Runtime:   time.Since(start),
	}, nil
}

// SetPath is the entry point for sketch events. A nil path clears the
// presenter. Otherwise the full pipeline runs and, if it succeeds and no
// newer path was set in the meantime, its result replaces what the
// presenter shows. On error the presenter is left untouched.
func (p *Profile) SetPath(ctx context.Context, path *Path) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation

	if path == nil {
		defer p.mu.Unlock()

		p.state = Empty
		if p.Presenter != nil {
			p.Presenter.Clear()
		}

		p.logger().DebugContext(ctx, "profile cleared")
		return nil
	}
	p.mu.Unlock()

	result, err := p.Do(ctx, path)
	if err != nil {
		p.logger().ErrorContext(ctx, "profile failed, keeping last result",
			slog.String("kind", path.Kind.String()),
			slog.Any("error", err))
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		p.logger().DebugContext(ctx, "discarding superseded profile",
			slog.Uint64("generation", generation),
			slog.Uint64("current", p.generation))
		return ErrSuperseded
	}

	p.state = Active
	if p.Presenter != nil {
		p.Presenter.Update(result.Samples, result.Summary)
	}

	p.logger().InfoContext(ctx, "profile updated",
		slog.Int("samples", len(result.Samples)),
		slog.Float64("min_elevation", result.Summary.MinElevation),
		slog.Float64("max_elevation", result.Summary.MaxElevation),
		slog.Float64("max_distance", result.Summary.MaxDistance),
		slog.Duration("runtime", result.Runtime))

	return nil
}

// State returns the current display state.
func (p *Profile) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// IsInputError reports if err was caused by a bad path rather than
// a failure while profiling it.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyPath) || errors.Is(err, ErrMinPointCount)
}

func (p *Profile) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return p.Logger
}
