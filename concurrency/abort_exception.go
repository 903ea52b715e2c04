// this code is grounded on the original CMU BusTub TransactionAbortException
// (original_source/include/concurrency/transaction_manager.h /
// lock_manager.h) translated to a plain Go error type.

package concurrency

import (
	"fmt"

	"github.com/dbcore/bustubgo/types"
)

// AbortReason names why the lock manager forced a transaction to abort.
type AbortReason int

const (
	LockOnShrinking AbortReason = iota
	LockSharedOnReadUncommitted
	UpgradeConflict
	Deadlock
)

func (r AbortReason) String() string {
	switch r {
	case LockOnShrinking:
		return "a lock was requested while the transaction is in the SHRINKING state"
	case LockSharedOnReadUncommitted:
		return "a shared lock was requested under READ_UNCOMMITTED isolation"
	case UpgradeConflict:
		return "another transaction is already upgrading a lock on this tuple"
	case Deadlock:
		return "the transaction was chosen as the victim of wound-wait deadlock prevention"
	default:
		return "unknown abort reason"
	}
}

// TransactionAbortException is returned by the lock manager when it sets a
// transaction's state to Aborted as a side effect of a lock request.
type TransactionAbortException struct {
	TxnID  types.TxnID
	Reason AbortReason
}

func NewTransactionAbortException(txnID types.TxnID, reason AbortReason) *TransactionAbortException {
	return &TransactionAbortException{TxnID: txnID, Reason: reason}
}

func (e *TransactionAbortException) Error() string {
	return fmt.Sprintf("transaction %d aborted: %s", e.TxnID, e.Reason)
}
