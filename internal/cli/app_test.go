package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omerorhan/rate-converter/internal/metrics"
	"github.com/omerorhan/rate-converter/internal/service"
	"github.com/omerorhan/rate-converter/internal/storage"
)

const snapshot = `[
{"r030":840,"txt":"Долар США","rate":37.5,"cc":"USD","exchangedate":"19.10.2026"},
{"r030":978,"txt":"Євро","rate":40.5,"cc":"EUR","exchangedate":"19.10.2026"}
]`

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, req service.ConvertReq) (*service.ConvertResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConvertResp), args.Error(1)
}

func (m *MockConverter) Close() error {
	return m.Called().Error(0)
}

type harness struct {
	stdout, stderr bytes.Buffer
	factoryCalls   int
	metrics        *metrics.ConverterMetrics
	app            *App
}

func newHarness(conv Converter, factoryErr error) *harness {
	h := &harness{metrics: metrics.NewConverterMetrics()}
	factory := func() (Converter, error) {
		h.factoryCalls++
		if factoryErr != nil {
			return nil, factoryErr
		}
		return conv, nil
	}
	h.app = NewApp(factory, &h.stdout, &h.stderr, WithColor(false), WithMetrics(h.metrics))
	return h
}

// realConverter wires the actual service to an in-memory store and a stub fetcher.
func realConverter(t *testing.T, fetches *int) Converter {
	t.Helper()
	svc, err := service.NewConverterService(
		service.WithStore(storage.NewMemoryStore()),
		service.WithFetcher(service.FetcherFunc(func(context.Context) ([]byte, error) {
			*fetches++
			return []byte(snapshot), nil
		})),
		service.WithClock(func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }),
		service.WithTimezone("UTC"),
		service.WithLogging(false),
	)
	require.NoError(t, err)
	return svc
}

func TestApp_Run_Success(t *testing.T) {
	fetches := 0
	h := newHarness(realConverter(t, &fetches), nil)

	code := h.app.Run(context.Background(), []string{"usd", "UAH", "100"})

	assert.Equal(t, Success, code)
	assert.Equal(t, "Rate USD:UAH = 37.5, Date: 19.10.2026, Sum: 3750\n", h.stdout.String())
	assert.Empty(t, h.stderr.String())
	assert.Equal(t, 1, fetches)
}

func TestApp_Run_InvalidArgumentsTouchNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "two arguments", args: []string{"USD", "UAH"}},
		{name: "four arguments", args: []string{"USD", "UAH", "1", "2"}},
		{name: "negative amount", args: []string{"USD", "UAH", "-100"}},
		{name: "non numeric amount", args: []string{"USD", "UAH", "hundred"}},
		{name: "exponent amount", args: []string{"USD", "UAH", "1e50000000"}},
		{name: "blank code", args: []string{" ", "UAH", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := new(MockConverter)
			h := newHarness(conv, nil)

			code := h.app.Run(context.Background(), tt.args)

			assert.Equal(t, InvalidArgs, code)
			assert.Equal(t, 0, h.factoryCalls, "converter must not be built")
			assert.Empty(t, h.stdout.String())
			assert.Contains(t, h.stderr.String(), Usage)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ConversionsTotal.WithLabelValues(metrics.OutcomeInvalidArgs)))
			conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
		})
	}
}

func TestParseArgs(t *testing.T) {
	req, err := ParseArgs([]string{"usd", "eur", "12,5"})
	require.NoError(t, err)
	assert.Equal(t, "usd", req.From)
	assert.Equal(t, "eur", req.To)
	assert.Equal(t, "12.5", req.Amount.String())

	for _, args := range [][]string{nil, {"USD"}, {"USD", "EUR", "1", "2"}, {"USD", "EUR", "-1"}, {"", "EUR", "1"}} {
		_, err := ParseArgs(args)
		assert.ErrorIs(t, err, service.ErrInvalidArguments, "args %q", args)
	}
}

func TestApp_Run_UnknownCurrency(t *testing.T) {
	fetches := 0
	h := newHarness(realConverter(t, &fetches), nil)

	code := h.app.Run(context.Background(), []string{"XYZ", "USD", "100"})

	assert.Equal(t, InvalidArgs, code)
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), "XYZ")
	assert.Equal(t, 1, fetches)
}

func TestApp_Run_ErrorOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "transport", err: fmt.Errorf("%w: %w", service.ErrTransport, errors.New("timeout"))},
		{name: "persistence", err: fmt.Errorf("%w: %w", service.ErrPersistence, errors.New("read-only"))},
		{name: "malformed", err: fmt.Errorf("%w: unexpected EOF", service.ErrMalformedData)},
		{name: "zero rate", err: fmt.Errorf("%w: XAU", service.ErrZeroRate)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := new(MockConverter)
			conv.On("Convert", mock.Anything, mock.AnythingOfType("service.ConvertReq")).Return(nil, tt.err).Once()
			conv.On("Close").Return(nil).Once()
			h := newHarness(conv, nil)

			code := h.app.Run(context.Background(), []string{"USD", "EUR", "1"})

			assert.Equal(t, Error, code)
			assert.Empty(t, h.stdout.String(), "no partial output on failure")
			assert.Contains(t, h.stderr.String(), "error: ")
			conv.AssertExpectations(t)
		})
	}
}

func TestApp_Run_FactoryError(t *testing.T) {
	h := newHarness(nil, errors.New("failed to connect to Redis"))

	code := h.app.Run(context.Background(), []string{"USD", "EUR", "1"})

	assert.Equal(t, Error, code)
	assert.Equal(t, 1, h.factoryCalls)
	assert.Contains(t, h.stderr.String(), "Redis")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ConversionsTotal.WithLabelValues(metrics.OutcomeError)))
}

func TestApp_Run_ClosesConverter(t *testing.T) {
	conv := new(MockConverter)
	resp := &service.ConvertResp{From: "EUR", To: "UAH", Date: "19.10.2026"}
	conv.On("Convert", mock.Anything, mock.Anything).Return(resp, nil).Once()
	conv.On("Close").Return(errors.New("already closed")).Once()
	h := newHarness(conv, nil)

	code := h.app.Run(context.Background(), []string{"eur", "uah", "2,5"})

	assert.Equal(t, Success, code)
	conv.AssertExpectations(t)
	req := conv.Calls[0].Arguments.Get(1).(service.ConvertReq)
	assert.Equal(t, "2.5", req.Amount.String())
}

func TestApp_Render_Colored(t *testing.T) {
	h := newHarness(nil, nil)
	WithColor(true)(h.app)

	resp := &service.ConvertResp{From: "USD", To: "UAH", Date: "19.10.2026"}
	line := h.app.render(resp)

	assert.Contains(t, line, "\x1b[")
	assert.Contains(t, line, "Rate USD:UAH = ")
}

func TestReturnCode_String(t *testing.T) {
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "InvalidArgs", InvalidArgs.String())
	assert.Equal(t, "Error", Error.String())
	assert.Equal(t, 0, int(Success))
	assert.Equal(t, 1, int(InvalidArgs))
	assert.Equal(t, 2, int(Error))
}
