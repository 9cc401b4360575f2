package billing

import "context"

// =============================================================================
// CLIENT LIFECYCLE - Status transitions and their billing side effects
// =============================================================================

// TransitionClientStatus moves a client to a new lifecycle state. Entering
// blocked or inactive releases the client's open charges: unpaid obligations
// that are not yet overdue are deleted, since nothing further will be billed.
// Paid history and already-overdue charges are kept.
//
// Returns the updated client and the number of charges released.
func TransitionClientStatus(ctx context.Context, clients ClientStore, charges ChargeStore, clientID string, next ClientStatus) (*Client, int, error) {
	if !ValidClientStatus(next) {
		return nil, 0, &ValidationError{Field: "status", Message: "unknown client status"}
	}

	client, err := clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, 0, err
	}

	client.Status = next
	if err := clients.UpdateClient(ctx, *client); err != nil {
		return nil, 0, err
	}

	released := 0
	if next == ClientBlocked || next == ClientInactive {
		released, err = ReleaseOpenCharges(ctx, charges, clientID)
		if err != nil {
			return client, released, err
		}
	}
	return client, released, nil
}

// ReleaseOpenCharges deletes a client's open (unpaid, non-overdue) charges.
// Deletion proceeds sequentially; the first failure is returned along with
// the count already released.
func ReleaseOpenCharges(ctx context.Context, charges ChargeStore, clientID string) (int, error) {
	list, err := charges.ListChargesByClient(ctx, clientID)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, ch := range list {
		if ch.Status != StatusOpen {
			continue
		}
		if err := charges.DeleteCharge(ctx, ch.ID); err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}
