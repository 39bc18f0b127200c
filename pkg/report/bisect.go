package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/saturnines/ledger-core/pkg/errors"
)

// Truncated is the cell value a reporting endpoint emits in place of data
// once a result passes its row limit.
const Truncated = "Unable to display more data. Please reduce the date range."

// DefaultMaxDepth bounds the number of times a period is halved
const DefaultMaxDepth = 5

// Querier fetches one raw report for a period
type Querier interface {
	QueryReport(ctx context.Context, reportType string, period Period, params map[string]string) (map[string]interface{}, error)
}

// QuerierFunc adapts a function to Querier
type QuerierFunc func(ctx context.Context, reportType string, period Period, params map[string]string) (map[string]interface{}, error)

func (f QuerierFunc) QueryReport(ctx context.Context, reportType string, period Period, params map[string]string) (map[string]interface{}, error) {
	return f(ctx, reportType, period, params)
}

// QueryCountExceededError means a period still truncated after the maximum
// number of halvings, or truncated while already a single day.
type QueryCountExceededError struct {
	ReportType string
	Period     Period
	Depth      int
}

func (e *QueryCountExceededError) Error() string {
	return fmt.Sprintf("max query count exceeded for report %s over %s at depth %d", e.ReportType, e.Period, e.Depth)
}

func (e *QueryCountExceededError) Unwrap() error {
	return errors.ErrQueryCountExceeded
}

// Result is the merged outcome of a bisected query. Table, Responses and
// Periods are in chronological order; Periods[i] produced Responses[i].
type Result struct {
	Table     []Row
	Responses []map[string]interface{}
	Periods   []Period
}

// Bisector queries a report and re-queries halves of the period whenever
// the response is truncated.
type Bisector struct {
	querier  Querier
	maxDepth int
	parallel bool
	logger   *slog.Logger
}

// Option configures a Bisector
type Option func(*Bisector)

// WithMaxDepth sets how many times a period may be halved
func WithMaxDepth(depth int) Option {
	return func(b *Bisector) {
		b.maxDepth = depth
	}
}

// WithParallelHalves queries both halves of a split concurrently. The
// default is sequential to bound load on the upstream API.
func WithParallelHalves() Option {
	return func(b *Bisector) {
		b.parallel = true
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bisector) {
		b.logger = logger
	}
}

// NewBisector creates a Bisector around querier
func NewBisector(querier Querier, options ...Option) *Bisector {
	b := &Bisector{
		querier:  querier,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Query runs reportType over period, bisecting as needed. It returns either
// the complete table or an error; a QueryCountExceededError when the
// truncation cannot be worked around.
func (b *Bisector) Query(ctx context.Context, reportType string, period Period, params map[string]string) (*Result, error) {
	return b.query(ctx, reportType, period, params, 0)
}

func (b *Bisector) query(ctx context.Context, reportType string, period Period, params map[string]string, depth int) (*Result, error) {
	log := b.logger.With("report", reportType, "start", period.StartDate(), "end", period.EndDate(), "depth", depth)
	log.Info("querying report")

	raw, err := b.querier.QueryReport(ctx, reportType, period, params)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPRequest, fmt.Sprintf("query %s over %s", reportType, period))
	}

	table := FlattenReport(raw)
	if !IsTruncated(table) {
		log.Info("no cutoff", "rows", len(table))
		return &Result{
			Table:     table,
			Responses: []map[string]interface{}{raw},
			Periods:   []Period{period},
		}, nil
	}

	log.Info("cutoff")
	exceeded := &QueryCountExceededError{ReportType: reportType, Period: period, Depth: depth}
	if depth >= b.maxDepth {
		return nil, exceeded
	}
	first, second, err := HalvePeriod(period)
	if err != nil {
		return nil, exceeded
	}

	var left, right *Result
	if b.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			left, err = b.query(gctx, reportType, first, params, depth+1)
			return err
		})
		g.Go(func() (err error) {
			right, err = b.query(gctx, reportType, second, params, depth+1)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if left, err = b.query(ctx, reportType, first, params, depth+1); err != nil {
			return nil, err
		}
		if right, err = b.query(ctx, reportType, second, params, depth+1); err != nil {
			return nil, err
		}
	}

	return &Result{
		Table:     append(left.Table, right.Table...),
		Responses: append(left.Responses, right.Responses...),
		Periods:   append(left.Periods, right.Periods...),
	}, nil
}

// IsTruncated reports whether any cell of table is the truncation marker
func IsTruncated(table []Row) bool {
	for _, row := range table {
		for _, v := range row {
			if v == Truncated {
				return true
			}
		}
	}
	return false
}
