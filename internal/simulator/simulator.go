package simulator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/ledger"
	"github.com/Shopify/gocheckoutflow/internal/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type SimulationDriver struct {
	Ctx           context.Context
	CtxCancelFunc context.CancelFunc

	Customers  []*SimulatedCustomer
	NumWorkers int

	Ledger *ledger.Ledger

	// Summary output; nil discards it.
	Out io.Writer

	recordErrOnce sync.Once
	recordErr     error
}

// Results is the per-run aggregate printed at the end of a simulation.
type Results struct {
	Total     int64
	ByOutcome map[ledger.Outcome]int64
	ByLabel   []ledger.LabelSummary

	// Sessions that ended without an order, keyed by the stage they stopped at.
	AbandonedAtStage map[checkout.Stage]int64
}

// StartSimulation runs every customer through a bounded pool of workers and
// blocks until they finish or the context is cancelled.
func (d *SimulationDriver) StartSimulation() (Results, error) {
	customers := make(chan *SimulatedCustomer)
	var workersFinishedWaitGroup sync.WaitGroup

	numWorkers := d.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	workersFinishedWaitGroup.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go d.runCustomerWorker(customers, &workersFinishedWaitGroup)
	}

feed:
	for _, c := range d.Customers {
		select { // block handing the next customer to a free worker
		case customers <- c:
		case <-d.Ctx.Done():
			log.Info().Msg("simulation cancelled; no further customers admitted")
			break feed
		}
	}
	close(customers)
	workersFinishedWaitGroup.Wait()

	if d.recordErr != nil {
		return Results{}, errors.Wrap(d.recordErr, "simulation aborted")
	}
	return d.aggregateResults()
}

func (d *SimulationDriver) runCustomerWorker(customers <-chan *SimulatedCustomer, wg *sync.WaitGroup) {
	defer wg.Done()
	for c := range customers {
		outcome, err := c.Run(d.Ctx)
		if err != nil {
			log.Error().Err(err).Str("customer", c.Label()).Int("customer_id", c.Id).Msg("simulated session failed")
			metrics.Incr("simulator.session_error", []string{metrics.Tag("customer_label", c.Label())})
			continue
		}
		tags := []string{
			metrics.Tag("outcome", outcome.Outcome),
			metrics.Tag("customer_label", outcome.CustomerLabel),
		}
		metrics.Incr("simulator.outcome", tags)
		metrics.Distribution("simulator.session_duration_ms", float64(outcome.DurationMs), tags)
		if err := d.Ledger.Record(outcome); err != nil {
			log.Error().Err(err).Str("session_id", outcome.SessionID).Msg("failed recording session outcome")
			d.abort(err)
		}
	}
}

// abort stops admitting customers once outcomes can no longer be recorded.
func (d *SimulationDriver) abort(err error) {
	d.recordErrOnce.Do(func() {
		d.recordErr = err
		if d.CtxCancelFunc != nil {
			d.CtxCancelFunc()
		}
	})
}

func (d *SimulationDriver) aggregateResults() (Results, error) {
	results := Results{
		ByOutcome:        make(map[ledger.Outcome]int64),
		AbandonedAtStage: make(map[checkout.Stage]int64),
	}
	total, err := d.Ledger.Count()
	if err != nil {
		return results, err
	}
	results.Total = total
	byLabel, err := d.Ledger.SummaryByLabel()
	if err != nil {
		return results, err
	}
	results.ByLabel = byLabel

	for _, row := range byLabel {
		results.ByOutcome[row.Outcome] += row.Total
		metrics.Gauge(
			"simulator.outcomes_by_label",
			float64(row.Total),
			[]string{metrics.Tag("customer_label", row.CustomerLabel), metrics.Tag("outcome", row.Outcome)},
		)
	}
	confirmed, err := d.Ledger.CountByOutcome(ledger.OutcomeConfirmed)
	if err != nil {
		return results, err
	}
	byStage, err := d.Ledger.AbandonedByStage()
	if err != nil {
		return results, err
	}
	for _, row := range byStage {
		stage, ok := checkout.ParseStage(row.FinalStage)
		if !ok {
			log.Warn().Str("final_stage", row.FinalStage).Msg("skipping unknown stage in ledger")
			continue
		}
		results.AbandonedAtStage[stage] += row.Total
		metrics.Gauge("simulator.abandoned_at_stage", float64(row.Total), []string{metrics.Tag("stage", stage)})
	}
	conversion := 0.0
	if total > 0 {
		conversion = float64(confirmed) / float64(total)
	}
	metrics.Gauge("simulator.conversion_rate", conversion, nil)

	if d.Out != nil {
		fmt.Fprintf(d.Out, "\nnum_sessions=%d\nnum_confirmed=%d\nconversion_rate=%.3f\n", total, confirmed, conversion)
		for _, row := range byLabel {
			fmt.Fprintf(d.Out, "\n%s\t%s=%d", row.CustomerLabel, row.Outcome, row.Total)
		}
		fmt.Fprintln(d.Out)
		for _, stage := range checkout.Stages() {
			if n := results.AbandonedAtStage[stage]; n > 0 {
				fmt.Fprintf(d.Out, "\nabandoned_at_%s=%d", stage, n)
			}
		}
		fmt.Fprintln(d.Out)
	}
	return results, nil
}

