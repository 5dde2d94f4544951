package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"FinChart/internal/chart"
	"FinChart/internal/chart/draw"
	"FinChart/internal/domain/repository"
	internalrepo "FinChart/internal/repository"
	"FinChart/internal/series"
	"FinChart/internal/services/prediction"
	"FinChart/internal/usecase"
	applogger "FinChart/pkg/logger"
)

func init() {
	f := rootCmd.Flags()
	f.String("symbol", prediction.DefaultSymbol, "ticker symbol")
	f.String("type", "candlestick", "projection: candlestick, line, area or volume")
	f.Float64("width", chart.DefaultViewport.Width, "viewport width")
	f.Float64("height", chart.DefaultViewport.Height, "viewport height")
	f.Float64("padding", chart.DefaultViewport.Padding, "viewport padding")
	f.Int("n", 30, "number of bars")
	f.Int64("seed", time.Now().UnixNano(), "random walk seed")
	f.String("format", "svg", "output format: svg, png or json")
	f.String("out", "-", "output file, - for stdout")
	f.String("sqlite", "", "read bars from this sqlite database instead of the random walk")
	f.String("predict-url", "", "prediction service base URL")
	f.String("overlay", string(chart.OverlayForecast), "overlay mode: forecast, fixed or none")
	f.Bool("verbose", false, "log to stderr")
}

var rootCmd = &cobra.Command{
	Use:          "render",
	Short:        "render a chart scene to svg, png or json",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOptions(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), opts)
	},
}

type options struct {
	symbol     string
	projection chart.Projection
	viewport   chart.Viewport
	n          int
	seed       int64
	format     string
	out        string
	sqlite     string
	predictURL string
	overlay    chart.OverlayMode
	verbose    bool
}

func readOptions(cmd *cobra.Command) (*options, error) {
	f := cmd.Flags()
	o := &options{}
	var err error
	if o.symbol, err = f.GetString("symbol"); err != nil {
		return nil, err
	}
	name, err := f.GetString("type")
	if err != nil {
		return nil, err
	}
	if o.projection, err = chart.ParseProjection(name); err != nil {
		return nil, err
	}
	if o.viewport.Width, err = f.GetFloat64("width"); err != nil {
		return nil, err
	}
	if o.viewport.Height, err = f.GetFloat64("height"); err != nil {
		return nil, err
	}
	if o.viewport.Padding, err = f.GetFloat64("padding"); err != nil {
		return nil, err
	}
	if o.n, err = f.GetInt("n"); err != nil {
		return nil, err
	}
	if o.seed, err = f.GetInt64("seed"); err != nil {
		return nil, err
	}
	if o.format, err = f.GetString("format"); err != nil {
		return nil, err
	}
	if o.out, err = f.GetString("out"); err != nil {
		return nil, err
	}
	if o.sqlite, err = f.GetString("sqlite"); err != nil {
		return nil, err
	}
	if o.predictURL, err = f.GetString("predict-url"); err != nil {
		return nil, err
	}
	mode, err := f.GetString("overlay")
	if err != nil {
		return nil, err
	}
	if o.overlay, err = chart.ParseOverlayMode(mode); err != nil {
		return nil, err
	}
	if o.verbose, err = f.GetBool("verbose"); err != nil {
		return nil, err
	}
	return o, nil
}

func run(ctx context.Context, o *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := applogger.Nop()
	if o.verbose {
		log = applogger.NewWriter(os.Stderr)
	}

	var provider repository.SeriesProvider = series.NewRandomWalk(o.seed)
	if o.sqlite != "" {
		store, err := internalrepo.NewSQLiteCandleStore(o.sqlite, log)
		if err != nil {
			return err
		}
		defer store.Close()
		provider = store
	}

	ucOpts := []usecase.ChartOption{usecase.WithLogger(log)}
	if o.predictURL != "" {
		ucOpts = append(ucOpts, usecase.WithPredictor(prediction.NewClient(o.predictURL, 10*time.Second, prediction.WithLogger(log))))
	}
	charts := usecase.NewChartUseCase(provider, ucOpts...)

	res, err := charts.Render(ctx, usecase.ChartParams{
		Symbol:     o.symbol,
		Projection: o.projection,
		Viewport:   o.viewport,
		N:          o.n,
		Overlay:    o.overlay,
	})
	if err != nil {
		return err
	}
	if res.PredictionError != "" {
		log.Warn("prediction unavailable", applogger.String("error", res.PredictionError))
	}

	w, closeOut, err := openOutput(o.out)
	if err != nil {
		return err
	}
	defer closeOut()
	return write(w, res, o.format)
}

func write(w io.Writer, res *usecase.ChartResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	f, err := draw.ParseFormat(format)
	if err != nil {
		return err
	}
	return draw.Render(w, res.Scene, f, draw.WithTitle(res.Symbol))
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
