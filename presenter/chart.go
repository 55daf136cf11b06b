// Package presenter keeps the chart state of a profile and renders it.
package presenter

import (
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/paulmach/profile"
)

// DefaultTitle is used when a Chart has no title set.
const DefaultTitle = "Elevation Profile"

// Chart is a profile.Presenter that holds the series to display.
// Before the first update, and after a clear, it shows the placeholder series.
// It is safe for concurrent use.
type Chart struct {
	mu      sync.RWMutex
	title   string
	samples []profile.Sample
	summary profile.Summary
	active  bool
}

var _ profile.Presenter = &Chart{}

// NewChart creates a chart showing the placeholder series.
func NewChart() *Chart {
	return &Chart{
		title:   DefaultTitle,
		samples: profile.DefaultSamples(),
	}
}

// Update replaces the displayed series and summary.
func (c *Chart) Update(samples []profile.Sample, summary profile.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples = append([]profile.Sample(nil), samples...)
	c.summary = summary
	c.active = true
}

// Clear goes back to the placeholder series and empty details.
func (c *Chart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples = profile.DefaultSamples()
	c.summary = profile.Summary{}
	c.active = false
}

// Samples returns a copy of the displayed series.
func (c *Chart) Samples() []profile.Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]profile.Sample(nil), c.samples...)
}

// Summary returns the statistics of the displayed profile.
// The bool is false when the chart shows the placeholder series.
func (c *Chart) Summary() (profile.Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.summary, c.active && !c.summary.Empty()
}

// Active reports if the chart shows a computed profile.
func (c *Chart) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.active
}

// Details is the one line summary displayed under the chart,
// empty when there is no profile.
func (c *Chart) Details() string {
	summary, ok := c.Summary()
	if !ok {
		return ""
	}

	return FormatDetails(summary)
}

// FormatDetails formats the summary statistics with one decimal
// and thousands separators.
func FormatDetails(s profile.Summary) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("first: %.1f  last: %.1f  change: %.1f  min: %.1f  max: %.1f  range: %.1f",
		s.FirstElevation, s.LastElevation, s.Change(),
		s.MinElevation, s.MaxElevation, s.Range())
}

// IndicatorAt returns the sample with the distance closest to the given one,
// the first in path order on ties. It is used to place a marker on the map
// while hovering the chart. The bool is false if there is no profile.
func (c *Chart) IndicatorAt(distance float64) (profile.Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.active || len(c.samples) == 0 || math.IsNaN(distance) {
		return profile.Sample{}, false
	}

	best := 0
	bestDiff := math.Inf(1)
	for i, s := range c.samples {
		if d := math.Abs(s.Distance - distance); d < bestDiff {
			best, bestDiff = i, d
		}
	}

	return c.samples[best], true
}

// SetTitle changes the chart title, empty means DefaultTitle.
func (c *Chart) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.title = title
}

// Title returns the chart title.
func (c *Chart) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.title == "" {
		return DefaultTitle
	}

	return c.title
}
