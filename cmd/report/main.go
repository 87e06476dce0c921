// Command report runs the channel analytics once from the command line and
// writes the full report as JSON, or the aggregated periods as CSV or XLSX.
//
//	report -data data/channel.csv -start 2024-01-01 -end 2024-06-30 -frequency monthly -out report.json
//	report -frequency weekly -out weekly.xlsx
//
// The output format follows the -out extension; without -out the JSON
// report is printed to stdout. The exit status is 2 when the dataset cannot
// be loaded and 1 for any other failure.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"channelpulse/internal/analytics"
	"channelpulse/internal/app"
	"channelpulse/internal/config"
	"channelpulse/internal/exporter"
	"channelpulse/internal/infrastructure"
	"channelpulse/pkg/contracts"
	"channelpulse/pkg/contracts/domain"
)

const (
	exitFailure  = 1
	exitDataLoad = 2
)

type options struct {
	data       string
	configFile string
	start      string
	end        string
	frequency  string
	metric     string
	goalMetric string
	goalTarget string
	goalDate   string
	out        string
	verbose    bool
	version    bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		if errors.Is(err, domain.ErrDataLoadFailure) {
			os.Exit(exitDataLoad)
		}
		os.Exit(exitFailure)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.data, "data", "", "dataset file (CSV or XLSX); defaults to the configured path")
	fs.StringVar(&o.configFile, "config", "", "config file (YAML)")
	fs.StringVar(&o.start, "start", "", "first day of the window (YYYY-MM-DD)")
	fs.StringVar(&o.end, "end", "", "last day of the window (YYYY-MM-DD)")
	fs.StringVar(&o.frequency, "frequency", "daily", "period frequency: daily, weekly, monthly or quarterly")
	fs.StringVar(&o.metric, "metric", "", "metric for the trend and distribution sections")
	fs.StringVar(&o.goalMetric, "goal-metric", "", "metric tracked toward a goal")
	fs.StringVar(&o.goalTarget, "goal-target", "", "cumulative goal target")
	fs.StringVar(&o.goalDate, "goal-date", "", "goal deadline (YYYY-MM-DD)")
	fs.StringVar(&o.out, "out", "", "output file: .json report, .csv or .xlsx periods; stdout when empty")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := infrastructure.WithComponent(
		infrastructure.NewLogger(stderr, "text", &slog.HandlerOptions{Level: level}), "report")
	ctx = infrastructure.EnsureTraceID(ctx)

	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return err
	}
	if o.data != "" {
		cfg.Dataset.Path = o.data
		cfg.Dataset.Format = ""
	}

	req, err := viewRequest(o)
	if err != nil {
		return err
	}

	container, err := app.NewServiceContainer(cfg, nil, nil, logger)
	if err != nil {
		return err
	}
	svc := container.Analytics

	switch format := outputFormat(o.out); format {
	case "json":
		rep, err := svc.Report(ctx, req)
		if err != nil {
			return err
		}
		for _, w := range rep.Warnings {
			logger.Warn("section skipped", slog.String("reason", w))
		}
		return writeOutput(o.out, stdout, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		})
	default:
		f, err := exporter.ParseFormat(format)
		if err != nil {
			return err
		}
		return writeOutput(o.out, stdout, func(w io.Writer) error {
			_, err := svc.Export(ctx, req, f, w)
			return err
		})
	}
}

// outputFormat picks the output encoding from the -out extension
func outputFormat(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".json":
		return "json"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// writeOutput runs write against the -out file, or stdout when it is empty.
// A failed write removes the partial file.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return write(f)
}

func viewRequest(o options) (analytics.ViewRequest, error) {
	var req analytics.ViewRequest
	var err error

	if req.Start, err = parseDate("start", o.start); err != nil {
		return req, err
	}
	if req.End, err = parseDate("end", o.end); err != nil {
		return req, err
	}
	if req.Frequency, err = domain.ParseFrequency(o.frequency); err != nil {
		return req, err
	}
	if o.metric != "" {
		m, err := domain.ParseMetric(o.metric)
		if err != nil {
			return req, err
		}
		req.TrendMetric, req.DistributionMetric = m, m
	}

	if o.goalMetric == "" && o.goalTarget == "" {
		return req, nil
	}
	if o.goalMetric == "" || o.goalTarget == "" {
		return req, errors.New("-goal-metric and -goal-target must be given together")
	}
	goal := &analytics.GoalRequest{}
	if goal.Metric, err = domain.ParseMetric(o.goalMetric); err != nil {
		return req, err
	}
	if goal.Target, err = strconv.ParseFloat(o.goalTarget, 64); err != nil {
		return req, fmt.Errorf("goal target %q: %w", o.goalTarget, domain.ErrInvalidGoalTarget)
	}
	if goal.TargetDate, err = parseDate("goal-date", o.goalDate); err != nil {
		return req, err
	}
	req.Goal = goal
	return req, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: %w", name, err)
	}
	return t, nil
}
