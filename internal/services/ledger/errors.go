package ledger

import "errors"

// Service errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnknownKind         = errors.New("unknown transaction kind")
	ErrNotReversible       = errors.New("transaction cannot be reversed")
)
