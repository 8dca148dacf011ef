package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/omerorhan/rate-converter/internal/metrics"
	"github.com/omerorhan/rate-converter/internal/service"
)

// ReturnCode is the process exit status.
type ReturnCode int

const (
	Success     ReturnCode = 0
	InvalidArgs ReturnCode = 1
	Error       ReturnCode = 2
)

func (rc ReturnCode) String() string {
	switch rc {
	case Success:
		return "Success"
	case InvalidArgs:
		return "InvalidArgs"
	default:
		return "Error"
	}
}

const Usage = "usage: rate-converter [-config file.yaml] <source currency> <target currency> <amount>"

type Converter interface {
	Convert(ctx context.Context, req service.ConvertReq) (*service.ConvertResp, error)
}

// ConverterFactory builds the converter lazily so that bad arguments never open
// the cache or the network.
type ConverterFactory func() (Converter, error)

type App struct {
	factory ConverterFactory
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	metrics *metrics.ConverterMetrics

	highlight *color.Color
	failure   *color.Color
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *metrics.ConverterMetrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithColor toggles ANSI colors on both output streams.
func WithColor(enabled bool) Option {
	return func(a *App) {
		if enabled {
			a.highlight.EnableColor()
			a.failure.EnableColor()
		} else {
			a.highlight.DisableColor()
			a.failure.DisableColor()
		}
	}
}

func NewApp(factory ConverterFactory, stdout, stderr io.Writer, options ...Option) *App {
	a := &App{
		factory:   factory,
		stdout:    stdout,
		stderr:    stderr,
		logger:    slog.New(slog.DiscardHandler),
		highlight: color.New(color.FgGreen, color.Bold),
		failure:   color.New(color.FgRed),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// ParseArgs turns <source> <target> <amount> into a validated request.
// Every error wraps service.ErrInvalidArguments.
func ParseArgs(args []string) (service.ConvertReq, error) {
	if len(args) != 3 {
		return service.ConvertReq{}, fmt.Errorf("%w: expected 3 arguments, got %d", service.ErrInvalidArguments, len(args))
	}
	amount, err := service.ParseAmount(args[2])
	if err != nil {
		return service.ConvertReq{}, err
	}
	req := service.ConvertReq{From: args[0], To: args[1], Amount: amount}
	if err := req.Validate(); err != nil {
		return service.ConvertReq{}, err
	}
	return req, nil
}

// Run converts args = <source> <target> <amount> and prints one result line.
func (a *App) Run(ctx context.Context, args []string) ReturnCode {
	req, err := ParseArgs(args)
	if err != nil {
		a.metrics.Conversion(metrics.OutcomeInvalidArgs)
		return a.invalid(err)
	}

	conv, err := a.factory()
	if err != nil {
		a.metrics.Conversion(metrics.OutcomeError)
		return a.fail(err)
	}
	if closer, ok := conv.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				a.logger.Warn("failed to close converter", "error", err)
			}
		}()
	}

	// the converter records its own outcome from here on
	resp, err := conv.Convert(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArguments) {
			return a.invalid(err)
		}
		return a.fail(err)
	}

	fmt.Fprintln(a.stdout, a.render(resp))
	return Success
}

// render prints the line in the format "Rate USD:UAH = 37.5, Date: 19.10.2026, Sum: 3750".
func (a *App) render(resp *service.ConvertResp) string {
	return fmt.Sprintf("Rate %s:%s = %s, Date: %s, Sum: %s",
		resp.From, resp.To,
		a.highlight.Sprint(resp.Rate.String()),
		resp.Date,
		a.highlight.Sprint(resp.Converted.String()),
	)
}

func (a *App) invalid(err error) ReturnCode {
	a.logger.Debug("invalid arguments", "error", err)
	fmt.Fprintln(a.stderr, a.failure.Sprint("error: "+err.Error()))
	fmt.Fprintln(a.stderr, Usage)
	return InvalidArgs
}

func (a *App) fail(err error) ReturnCode {
	a.logger.Error("conversion failed", "error", err)
	fmt.Fprintln(a.stderr, a.failure.Sprint("error: "+err.Error()))
	return Error
}
