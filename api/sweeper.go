/*
sweeper.go - Automated overdue sweep

PURPOSE:
  Periodically re-resolves stored open charges whose due date has passed,
  marking them overdue. The dashboard projection always computes the right
  status on render; the sweep keeps the persisted rows from going stale
  between renders.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Paid charges are never touched
  - Idempotent: a charge already overdue is skipped

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewOverdueSweeper(store, clock)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - billing/status.go: The resolver the sweep applies
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vinculo/billing-engine/billing"
)

// OverdueSweeper converges persisted charge statuses with the calendar.
type OverdueSweeper struct {
	Charges       billing.ChargeStore
	Clock         billing.Clock
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewOverdueSweeper creates a sweeper over the given charge store.
func NewOverdueSweeper(charges billing.ChargeStore, clock billing.Clock) *OverdueSweeper {
	if clock == nil {
		clock = billing.SystemClock{}
	}
	return &OverdueSweeper{
		Charges:       charges,
		Clock:         clock,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (os *OverdueSweeper) Start() {
	os.mu.Lock()
	defer os.mu.Unlock()

	if !os.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	os.ticker = time.NewTicker(os.CheckInterval)
	os.wg.Add(1)

	go os.run()

	log.Printf("[Sweeper] Started with check interval: %v", os.CheckInterval)
}

// Stop stops the sweeper.
func (os *OverdueSweeper) Stop() {
	os.mu.Lock()
	defer os.mu.Unlock()

	if os.ticker != nil {
		os.ticker.Stop()
		close(os.stop)
		os.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (os *OverdueSweeper) run() {
	defer os.wg.Done()

	// Run immediately on start
	os.Sweep()

	for {
		select {
		case <-os.ticker.C:
			os.Sweep()
		case <-os.stop:
			return
		}
	}
}

// Sweep re-resolves every stored unpaid charge once. Exposed for tests and
// manual admin triggering.
func (os *OverdueSweeper) Sweep() {
	ctx := context.Background()

	charges, err := os.Charges.ListCharges(ctx)
	if err != nil {
		log.Printf("[Sweeper] Error listing charges: %v", err)
		return
	}

	updated := 0
	for _, ch := range charges {
		if ch.Status != billing.StatusOpen {
			continue
		}
		resolved := billing.ResolveStatus(ch.DueDate, false, os.Clock)
		if resolved == ch.Status {
			continue
		}
		ch.Status = resolved
		if err := os.Charges.UpdateCharge(ctx, ch); err != nil {
			log.Printf("[Sweeper] Error updating charge %s: %v", ch.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("[Sweeper] Marked %d charge(s) overdue", updated)
	}
}
