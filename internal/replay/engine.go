package replay

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plateful/tax-reporter/internal/client/logsearch"
	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/logger"
)

const (
	// failurePageSize is the page size for the failure-document scan.
	failurePageSize = 10
	// eventFetchSize caps how much of one order's event stream is scanned.
	eventFetchSize = 200
)

// payloadPattern extracts the original message body from a trace log line.
// The body is logged between the value= marker and the trailing timestamp.
var payloadPattern = regexp.MustCompile(`(?s)value=(.*?), timestamp=`)

// LogSearcher is the slice of the log-search API the engine uses.
type LogSearcher interface {
	SearchActions(ctx context.Context, index string, q logsearch.ActionQuery) ([]logsearch.Hit, error)
	GetByDocID(ctx context.Context, index string, docID string) ([]logsearch.Hit, error)
}

// Publisher re-emits recovered order events onto the message bus.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Options configures one reconciliation run.
type Options struct {
	ActionIndex     string
	TraceIndex      string
	AppName         string
	ActionFilter    string
	FailureCode     string
	OrderEventTopic string
	Workers         int
}

// FailedOrder identifies an order whose recovery could not be completed.
type FailedOrder struct {
	OrderID string
	Event   string
}

// BatchResults summarizes one reconciliation run.
type BatchResults struct {
	Scanned      int
	Replayed     int
	Ignored      int
	Failed       int
	FailedOrders []FailedOrder
}

// failureEntry is one failure document pulled from the action index.
type failureEntry struct {
	orderID string
	docID   string
	event   string
}

// Engine scans the log-search index for failed tax reports and replays the
// ones that were never superseded by a later order event.
type Engine struct {
	search LogSearcher
	bus    Publisher
	opts   Options
}

// NewEngine wires a reconciliation engine.
func NewEngine(search LogSearcher, bus Publisher, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	return &Engine{search: search, bus: bus, opts: opts}
}

// Run executes a full reconciliation pass.
func (e *Engine) Run(ctx context.Context) (*BatchResults, error) {
	failures, err := e.collectFailures(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("collected failure documents", zap.Int("count", len(failures)))

	type outcome struct {
		decision domain.ReplayDecision
		failed   *FailedOrder
	}

	jobs := make(chan failureEntry)
	outcomes := make(chan outcome, len(failures))

	var wg sync.WaitGroup
	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				decision, replayErr := e.processFailure(ctx, entry)
				o := outcome{decision: decision}
				if replayErr != nil {
					logger.Error("replay failed",
						zap.String("orderId", entry.orderID),
						zap.Error(replayErr))
					o.failed = &FailedOrder{OrderID: entry.orderID, Event: entry.event}
				}
				outcomes <- o
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, entry := range failures {
			select {
			case jobs <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	results := &BatchResults{Scanned: len(failures)}
	for o := range outcomes {
		switch {
		case o.failed != nil:
			results.Failed++
			results.FailedOrders = append(results.FailedOrders, *o.failed)
		case o.decision.Outcome == domain.DecisionReplay:
			results.Replayed++
		default:
			results.Ignored++
		}
	}
	return results, ctx.Err()
}

// collectFailures pages through every failure document in the action index.
func (e *Engine) collectFailures(ctx context.Context) ([]failureEntry, error) {
	var entries []failureEntry
	from := 0
	for {
		hits, err := e.search.SearchActions(ctx, e.opts.ActionIndex, logsearch.ActionQuery{
			App:       e.opts.AppName,
			Action:    e.opts.ActionFilter,
			ErrorCode: e.opts.FailureCode,
			From:      from,
			Size:      failurePageSize,
		})
		if err != nil {
			return nil, errors.Wrap(err, "scanning failure documents")
		}
		if len(hits) == 0 {
			return entries, nil
		}

		for _, hit := range hits {
			orderID := hit.Source.Context.OrderID.String()
			if orderID == "" || hit.Source.ID == "" {
				continue
			}
			entries = append(entries, failureEntry{
				orderID: orderID,
				docID:   hit.Source.ID,
				event:   hit.Source.Context.Event.String(),
			})
		}
		from += failurePageSize
	}
}

// processFailure scans the order's event stream, decides, and replays when
// the decision calls for it.
func (e *Engine) processFailure(ctx context.Context, entry failureEntry) (domain.ReplayDecision, error) {
	decision := domain.ReplayDecision{
		Outcome:    domain.DecisionIgnore,
		OrderID:    entry.orderID,
		DocumentID: entry.docID,
	}

	hits, err := e.search.SearchActions(ctx, e.opts.ActionIndex, logsearch.ActionQuery{
		App:     e.opts.AppName,
		Action:  e.opts.ActionFilter,
		OrderID: entry.orderID,
		Size:    eventFetchSize,
	})
	if err != nil {
		return decision, errors.Wrapf(err, "scanning events of order %s", entry.orderID)
	}

	scan := NewEventScan()
	for i, hit := range hits {
		scan.Observe(i,
			hit.Source.Context.Event.String(),
			hit.Source.ErrorCode,
			hit.Source.Context.BrandCategory.String(),
			e.opts.FailureCode)
	}

	decision.Outcome = Decide(scan)
	logger.Debug("replay decision",
		zap.String("orderId", decision.OrderID),
		zap.String("docId", decision.DocumentID),
		zap.String("outcome", string(decision.Outcome)))

	if decision.Outcome != domain.DecisionReplay {
		return decision, nil
	}

	if err := e.replayOrder(ctx, entry); err != nil {
		return decision, err
	}
	return decision, nil
}

// replayOrder recovers the original message body from the trace log and
// republishes it onto the order-event topic.
func (e *Engine) replayOrder(ctx context.Context, entry failureEntry) error {
	hits, err := e.search.GetByDocID(ctx, e.opts.TraceIndex, entry.docID)
	if err != nil {
		return errors.Wrapf(err, "fetching trace document %s", entry.docID)
	}

	for _, hit := range hits {
		matches := payloadPattern.FindStringSubmatch(hit.Source.Content)
		if len(matches) < 2 {
			continue
		}

		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(matches[1]), &payload); err != nil {
			return errors.Wrapf(err, "decoding replay payload of order %s", entry.orderID)
		}

		if err := e.bus.Publish(ctx, e.opts.OrderEventTopic, entry.orderID, payload); err != nil {
			return errors.Wrapf(err, "republishing order %s", entry.orderID)
		}

		logger.Info("replayed order event",
			zap.String("orderId", entry.orderID),
			zap.String("docId", entry.docID))
		return nil
	}

	return errors.Errorf("no replayable payload found in trace of order %s", entry.orderID)
}
