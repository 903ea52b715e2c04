// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/executors/executor_context.go, itself from
// https://github.com/brunocalza/go-bustub); generalized to also carry
// the lock manager, since this project's
// executors acquire row locks and append undo records directly instead
// of leaving concurrency control to a stub (SPEC_FULL.md §10.2,
// spec.md §9 "global mutable catalog and txn tables" design note:
// exposed as a context object, never a process-wide static).
package executors

import (
	"github.com/dbcore/bustubgo/catalog"
	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/storage/buffer"
)

// ExecutorContext threads the collaborators every executor needs
// (spec.md §2 component H) through the tree: the catalog to resolve
// table/index oids, the buffer pool, the lock manager, and the
// transaction the whole tree executes under.
type ExecutorContext struct {
	catalog     *catalog.Catalog
	bpm         *buffer.BufferPoolManager
	lockManager *concurrency.LockManager
	txn         *concurrency.Transaction
}

func NewExecutorContext(cat *catalog.Catalog, bpm *buffer.BufferPoolManager, lockManager *concurrency.LockManager, txn *concurrency.Transaction) *ExecutorContext {
	return &ExecutorContext{catalog: cat, bpm: bpm, lockManager: lockManager, txn: txn}
}

func (c *ExecutorContext) GetCatalog() *catalog.Catalog                  { return c.catalog }
func (c *ExecutorContext) GetBufferPoolManager() *buffer.BufferPoolManager { return c.bpm }
func (c *ExecutorContext) GetLockManager() *concurrency.LockManager      { return c.lockManager }
func (c *ExecutorContext) GetTransaction() *concurrency.Transaction      { return c.txn }
