package transfer

import (
	"errors"
	"fmt"
)

// Service errors
var (
	ErrTransferNotFound = errors.New("transfer not found")
	ErrSelfTransfer     = errors.New("cannot transfer to the same wallet")
	ErrNotCancellable   = errors.New("only pending transfers can be cancelled")
	ErrNotReviewable    = errors.New("transfer is not awaiting review")
	ErrMissingRecipient = errors.New("external account id is required")
)

// FraudBlockedError rejects a transfer outright. Nothing is persisted for
// a blocked transfer.
type FraudBlockedError struct {
	Reason string
	Score  int
}

func (e *FraudBlockedError) Error() string {
	return fmt.Sprintf("transfer blocked by fraud screening: %s", e.Reason)
}
