// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/executors/executor.go, itself from
// https://github.com/brunocalza/go-bustub); Next additionally returns
// the produced tuple's RID, which every mutation executor's index
// maintenance needs and the teacher instead read back off the tuple
// itself.

// Package executors implements the pull-based (iterator) query executor
// spec.md §4.I describes: Init walks the tree once, Next pulls one
// tuple upward per call until the operator is exhausted.
package executors

import (
	"errors"
	"fmt"

	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
)

// ErrUnknownType is the error an executor reports when a child's Next
// call fails for a reason that is not itself a structured transaction
// abort (spec.md §7's "UNKNOWN_TYPE" propagation policy).
var ErrUnknownType = errors.New("executors: unknown error from child executor")

// Executor is the pull iterator every operator implements: Init must be
// called once before the first Next, and Next produces tuples one at a
// time until it reports done = true.
type Executor interface {
	Init() error
	Next() (t *tuple.Tuple, rid page.RID, done bool, err error)
	GetOutputSchema() *schema.Schema
}

// wrapChildError rewraps a non-nil child error as ErrUnknownType unless
// it is already a structured TransactionAbortException, which must
// propagate unchanged so the driver can abort cleanly (spec.md §7).
func wrapChildError(err error) error {
	if err == nil {
		return nil
	}
	var abortErr *concurrency.TransactionAbortException
	if errors.As(err, &abortErr) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnknownType, err)
}
