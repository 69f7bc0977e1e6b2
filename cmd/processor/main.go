package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"marksight/internal/config"
	"marksight/internal/dataprocessing"
	apierrors "marksight/internal/errors"
	"marksight/internal/exporter"
	"marksight/internal/infrastructure"
	"marksight/internal/services"
	"marksight/internal/validation"
	"marksight/pkg/contracts/domain"
)

func main() {
	inPath := flag.String("in", "", "input mark sheet (.csv, .xlsx or .xlsm)")
	outPath := flag.String("out", "", "output file (defaults to <input>_results.<format>)")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	metric := flag.String("metric", "total_marks", "ranking metric: total_marks, total_internal, total_external or sgpa")
	mode := flag.String("mode", "marks", "result mode: marks or sgpa")
	sectionsPath := flag.String("sections", "", "optional section config YAML")
	creditsPath := flag.String("credits", "", "optional credit config YAML")
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if err := run(context.Background(), cfg, logger, options{
		in:       *inPath,
		out:      *outPath,
		format:   strings.ToLower(*format),
		metric:   *metric,
		mode:     *mode,
		sections: *sectionsPath,
		credits:  *creditsPath,
	}); err != nil {
		logger.Error("Processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type options struct {
	in       string
	out      string
	format   string
	metric   string
	mode     string
	sections string
	credits  string
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts options) error {
	if opts.format != "csv" && opts.format != "xlsx" {
		return fmt.Errorf("unsupported output format %q", opts.format)
	}
	if opts.out == "" {
		base := strings.TrimSuffix(opts.in, filepath.Ext(opts.in))
		opts.out = fmt.Sprintf("%s_results.%s", base, opts.format)
	}

	svc := services.NewResultsServiceWithLogger(cfg, logger)

	src, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	meta, err := svc.LoadUpload(ctx, src, filepath.Base(opts.in))
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("Dataset loaded",
		slog.String("input", opts.in),
		slog.Int("rows", meta.Rows),
		slog.Int("subjects", len(meta.Subjects)))

	if err := applyConfigs(ctx, svc, logger, opts); err != nil {
		return err
	}

	query := services.QueryOptions{
		Metric: domain.ParseRankMetric(opts.metric),
		Mode:   domain.ParseResultMode(opts.mode),
	}

	result, err := svc.Snapshot(ctx, query)
	if err != nil {
		return fmt.Errorf("compute results: %w", err)
	}
	for _, warning := range result.Warnings {
		logger.Warn("Pipeline warning", slog.String("warning", warning))
	}

	dst, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer dst.Close()

	switch opts.format {
	case "xlsx":
		err = exporter.NewWorkbookExporter(logger).WriteCategoryWorkbook(dst, result)
	default:
		err = exporter.NewCSVExporter(logger).WriteRecords(dst, result)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSummary(result, opts.out)
	return nil
}

// applyConfigs loads the optional section and credit YAML files and
// installs them before the pipeline runs.
func applyConfigs(ctx context.Context, svc *services.ResultsService, logger *slog.Logger, opts options) error {
	validator := validation.NewConfigValidator(logger)

	if opts.sections != "" {
		var cfg domain.SectionConfig
		if err := readYAML(opts.sections, &cfg); err != nil {
			return apierrors.NewConfigError("read section config", err)
		}
		if err := validator.ValidateSections(cfg); err != nil {
			return apierrors.NewConfigError("invalid section config", err)
		}
		if err := svc.SetSections(ctx, cfg); err != nil {
			return err
		}
	}

	if opts.credits != "" {
		var cfg domain.CreditConfig
		if err := readYAML(opts.credits, &cfg); err != nil {
			return apierrors.NewConfigError("read credit config", err)
		}
		if err := validator.ValidateCredits(cfg); err != nil {
			return apierrors.NewConfigError("invalid credit config", err)
		}
		if err := svc.SetCredits(ctx, cfg); err != nil {
			return err
		}
	}

	return nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func printSummary(result *dataprocessing.Result, outPath string) {
	kpi := result.Report.KPI
	fmt.Printf("Processed %d students (%d present, %d passed)\n",
		kpi.TotalStudents, kpi.PresentStudents, kpi.PassedStudents)
	fmt.Printf("Result percent %.2f%%\n", kpi.ResultPercent)
	fmt.Printf("Results written to %s\n", outPath)
}
