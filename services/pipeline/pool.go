package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
)

// ProcessorFunc processes a single attachment and reports its outcome.
type ProcessorFunc func(ctx context.Context, item models.ProcessingContext) models.ProcessingOutcome

// ProcessingPool fans work out to a bounded set of goroutines. Run returns
// exactly one outcome per submitted item, a panicking item becomes a failed
// outcome instead of taking the pool down.
type ProcessingPool struct {
	workers   int
	processor ProcessorFunc
	log       logger.Logger
}

func NewProcessingPool(workers int, processor ProcessorFunc, log logger.Logger) *ProcessingPool {
	if workers < 1 {
		workers = 1
	}
	return &ProcessingPool{
		workers:   workers,
		processor: processor,
		log:       log,
	}
}

// Run processes all items and blocks until every outcome is in. Outcome order
// is not related to input order.
func (p *ProcessingPool) Run(ctx context.Context, items []models.ProcessingContext) []models.ProcessingOutcome {
	if len(items) == 0 {
		return []models.ProcessingOutcome{}
	}

	workerCount := p.workers
	if workerCount > len(items) {
		workerCount = len(items)
	}

	jobs := make(chan models.ProcessingContext)
	results := make(chan models.ProcessingOutcome, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- p.processItem(ctx, item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
	close(results)

	outcomes := make([]models.ProcessingOutcome, 0, len(items))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// processItem shields the pool from panics in the processor. The named return
// lets the recover path substitute a failed outcome for the item.
func (p *ProcessingPool) processItem(ctx context.Context, item models.ProcessingContext) (outcome models.ProcessingOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Recovered panic while processing %s: %v", item.Attachment.Filename, r)
			outcome = models.ProcessingOutcome{
				MessageID: item.MessageID,
				Filename:  item.Attachment.Filename,
				Error:     fmt.Sprintf("panic: %v", r),
				Elapsed:   time.Since(start),
			}
		}
	}()
	return p.processor(ctx, item)
}
