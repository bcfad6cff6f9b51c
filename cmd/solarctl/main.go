package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"solar-siting-service/internal/api/dto"
	"solar-siting-service/internal/app"
	"solar-siting-service/internal/config"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/logger"
	"solar-siting-service/internal/services"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "solarctl",
		Short:         "Find the best solar panel sites around a coordinate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, domain.ErrInvalidArgument) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type siteAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest, onProgress services.ProgressFunc) ([]domain.SolarResult, error)
}

type analyzeOptions struct {
	lat, lng, radius float64
	asJSON           bool
	quiet            bool
}

func analyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank the top candidate sites within a radius",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(cfg)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.radius > cfg.MaxRadiusKm {
				return fmt.Errorf("%w: radius must not exceed %g km", domain.ErrInvalidArgument, cfg.MaxRadiusKm)
			}

			analyzer, cleanup, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return runAnalyze(ctx, analyzer, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "center latitude in degrees")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "center longitude in degrees")
	cmd.Flags().Float64VarP(&opts.radius, "radius", "r", 5, "search radius in km")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func runAnalyze(ctx context.Context, a siteAnalyzer, opts analyzeOptions, stdout, stderr io.Writer) error {
	req := domain.AnalysisRequest{
		Center:   domain.Coordinates{Lat: opts.lat, Lng: opts.lng},
		RadiusKm: opts.radius,
	}

	var onProgress services.ProgressFunc
	if !opts.quiet {
		onProgress = func(percent int) {
			fmt.Fprintf(stderr, "\ranalyzing... %3d%%", percent)
			if percent == 100 {
				fmt.Fprintln(stderr)
			}
		}
	}

	results, err := a.Analyze(ctx, req, onProgress)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if opts.asJSON {
		out := dto.NewAnalysisResponse(uuid.NewString(), results)
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tLAT\tLNG\tKWH/M²/DAY")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%.5f\t%.5f\t%.2f\n", r.Rank, r.Coordinates.Lat, r.Coordinates.Lng, r.KwhPerDay)
	}
	return tw.Flush()
}
