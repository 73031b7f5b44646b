package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/veltio/tallypipe/internal/config"
	"github.com/veltio/tallypipe/internal/pipeline"
	"github.com/veltio/tallypipe/internal/runtime"
	"github.com/veltio/tallypipe/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tallypipe: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "tallypipe",
		Usage: "process election tally archives through a pipeline of pipes",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "tally",
				Aliases: []string{"t"},
				Usage:   "tally archive to process (repeatable)",
			},
			&cli.StringFlag{
				Name:    "election-config",
				Aliases: []string{"e"},
				Usage:   "election configuration document to synthesize an empty tally from",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "application configuration file (YAML)",
			},
			&cli.StringFlag{
				Name:  "pipes",
				Usage: "pipeline description document (JSON)",
			},
			&cli.StringFlag{
				Name:  "pipes-whitelist",
				Usage: "newline-delimited list of allowed stage identifiers",
			},
			&cli.StringFlag{
				Name:    "output-format",
				Aliases: []string{"f"},
				Usage:   "output format: json, csv, tsv or pretty",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file (default stdout)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"s"},
				Usage:   "suppress the cleanup notice on interrupt",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format: json or text",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "emit OpenTelemetry spans for every executed pipe",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	logger, err := newLogger(
		firstNonEmpty(cmd.String("log-format"), cfg.Log.Format),
		firstNonEmpty(cmd.String("log-level"), cfg.Log.Level),
	)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cmd.Bool("trace") {
		shutdown, err := telemetry.InitTracer("tallypipe", logger)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	opts := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithQuiet(cmd.Bool("quiet")),
	}

	if tallies := cmd.StringSlice("tally"); len(tallies) > 0 {
		opts = append(opts, runtime.WithTallies(tallies...))
	}
	if ec := cmd.String("election-config"); ec != "" {
		opts = append(opts, runtime.WithElectionConfig(ec))
	}

	if descPath := firstNonEmpty(cmd.String("pipes"), cfg.Pipes.Path); descPath != "" {
		desc, err := pipeline.LoadDescription(descPath)
		if err != nil {
			return err
		}
		opts = append(opts, runtime.WithDescription(desc))
	}

	if wlPath := firstNonEmpty(cmd.String("pipes-whitelist"), cfg.Pipes.Whitelist); wlPath != "" {
		wl, err := pipeline.LoadWhitelist(wlPath)
		if err != nil {
			return err
		}
		opts = append(opts, runtime.WithWhitelist(wl))
	}

	var out io.Writer = os.Stdout
	if outPath := firstNonEmpty(cmd.String("output"), cfg.Output.Path); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	opts = append(opts, runtime.WithOutput(
		firstNonEmpty(cmd.String("output-format"), cfg.Output.Format), out))

	runner, err := runtime.New(opts...)
	if err != nil {
		return err
	}

	if _, err := runner.Run(ctx); err != nil {
		return err
	}
	return nil
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format %q (must be 'json' or 'text')", format)
	}

	return slog.New(handler), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
