package billing

import "time"

// =============================================================================
// STATUS RESOLVER - Derive paid/overdue/open from a due date
// =============================================================================

// ResolveStatus derives a charge status from its due date and paid flag.
// An explicit paid mark wins regardless of date. Otherwise a due date
// strictly before the clock's today is overdue; today or later is open.
// Pure and deterministic for a fixed clock.
func ResolveStatus(dueDate time.Time, paid bool, clock Clock) ChargeStatus {
	if paid {
		return StatusPaid
	}
	if NormalizeDate(dueDate).Before(clock.Today()) {
		return StatusOverdue
	}
	return StatusOpen
}
