package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/go.geo"
	"github.com/spf13/cobra"

	"github.com/paulmach/profile"
	"github.com/paulmach/profile/export"
	"github.com/paulmach/profile/geojsonio"
	"github.com/paulmach/profile/presenter"
)

// Output formats of the compute command.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatKML     = "kml"
	FormatHTML    = "html"
	FormatPNG     = "png"
)

// ComputeOptions holds the options for the compute command.
type ComputeOptions struct {
	Input     string
	Polyline  string
	Precision int
	Format    string
	Out       string
	Width     int
	Height    int
}

// computeOutput is the json format.
type computeOutput struct {
	Samples []profile.Sample `json:"samples"`
	Summary *profile.Summary `json:"summary,omitempty"`
	Details string           `json:"details"`
	Runtime string           `json:"runtime"`
}

// NewComputeCommand creates the compute command.
func NewComputeCommand() *cobra.Command {
	opts := &ComputeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the elevation profile of one path",
		Example: `  # profile a GeoJSON line with the default terrain tiles
  profile compute --input route.geojson

  # encoded polyline against a local heightmap, as a chart
  profile compute --polyline '_p~iF~ps|U_ulLnnqC' --precision 100000 \
    --sampler image --heightmap dem.png --format png --out profile.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "GeoJSON file with a line or polygon, - for stdin")
	cmd.Flags().StringVar(&opts.Polyline, "polyline", "", "encoded polyline instead of --input")
	cmd.Flags().IntVar(&opts.Precision, "precision", 1e6, "encoded polyline precision factor")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatJSON, "output format (json|geojson|kml|html|png)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&opts.Width, "width", 800, "png width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 300, "png height in pixels")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatJSON, FormatGeoJSON, FormatKML, FormatHTML, FormatPNG}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCompute(cmd *cobra.Command, opts *ComputeOptions) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	switch opts.Format {
	case FormatJSON, FormatGeoJSON, FormatKML, FormatHTML, FormatPNG:
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}

	path, err := readPath(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}

	sampler, closeSampler, err := newSampler(ctx, cfg.Sampler, logger)
	if err != nil {
		return err
	}
	defer closeSampler()

	result, err := newProfile(sampler, nil, cfg, logger).Do(ctx, path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()

		w = f
	}

	if err := writeResult(w, opts, result); err != nil {
		return err
	}

	logger.Debug("profile computed",
		"samples", len(result.Samples),
		"runtime", result.Runtime)

	return nil
}

func readPath(stdin io.Reader, opts *ComputeOptions) (*profile.Path, error) {
	switch {
	case opts.Polyline != "" && opts.Input != "":
		return nil, errors.New("use only one of --input and --polyline")
	case opts.Polyline != "":
		return profile.NewPolyline(geo.Decode(opts.Polyline, opts.Precision)), nil
	case opts.Input == "":
		return nil, errors.New("one of --input or --polyline is required")
	}

	var (
		data []byte
		err  error
	)
	if opts.Input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return geojsonio.Decode(data)
}

func writeResult(w io.Writer, opts *ComputeOptions, result *profile.Result) error {
	switch opts.Format {
	case FormatGeoJSON:
		data, err := geojsonio.FeatureCollection(result.Annotated, result.Summary).MarshalJSON()
		if err != nil {
			return err
		}

		_, err = w.Write(append(data, '\n'))
		return err

	case FormatKML:
		return export.KML(w, "Profile", result.Annotated)

	case FormatHTML, FormatPNG:
		chart := presenter.NewChart()
		chart.Update(result.Samples, result.Summary)

		if opts.Format == FormatPNG {
			return chart.RenderPNG(w, opts.Width, opts.Height)
		}
		return chart.Render(w)
	}

	out := computeOutput{
		Samples: result.Samples,
		Details: presenter.FormatDetails(result.Summary),
		Runtime: result.Runtime.String(),
	}
	if !result.Summary.Empty() {
		out.Summary = &result.Summary
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
