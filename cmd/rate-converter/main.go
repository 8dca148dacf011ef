package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/omerorhan/rate-converter/internal/cli"
	"github.com/omerorhan/rate-converter/internal/config"
	"github.com/omerorhan/rate-converter/internal/metrics"
	"github.com/omerorhan/rate-converter/internal/service"
)

func main() {
	os.Exit(int(run(os.Args[1:])))
}

func run(args []string) cli.ReturnCode {
	fs := flag.NewFlagSet("rate-converter", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to a YAML config file (overrides $"+config.ConfigPathEnv+")")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), cli.Usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli.Success
		}
		return cli.InvalidArgs
	}

	colorOpt := cli.WithColor(term.IsTerminal(int(os.Stdout.Fd())) && !color.NoColor)

	// Bad arguments are reported before the environment is read, so a broken
	// config never turns them into an Error.
	if _, err := cli.ParseArgs(fs.Args()); err != nil {
		return cli.NewApp(nil, os.Stdout, os.Stderr, colorOpt).Run(context.Background(), fs.Args())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		return cli.Error
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	runID := uuid.NewString()
	m := metrics.NewConverterMetrics()
	defer func() {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}()

	logger.Debug("starting", "run_id", runID, "config", cfg)

	factory := func() (cli.Converter, error) {
		options := []service.ServiceOption{
			service.WithRatesURL(cfg.RatesURL),
			service.WithHTTPTimeout(cfg.HTTPTimeout),
			service.WithTimezone(cfg.Timezone),
			service.WithStrictPersistence(cfg.Cache.StrictWrite),
			service.WithLogger(logger),
			service.WithMetrics(m),
			service.WithRunID(runID),
		}
		if cfg.Cache.Backend == config.BackendRedis {
			options = append(options, service.WithRedisConfig(cfg.Cache.RedisURL, cfg.Cache.RedisKey))
		} else {
			options = append(options, service.WithCachePath(cfg.Cache.Path))
		}
		return service.NewConverterService(options...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(factory, os.Stdout, os.Stderr,
		cli.WithLogger(logger),
		cli.WithMetrics(m),
		colorOpt,
	)
	return app.Run(ctx, fs.Args())
}
