// Grounded on spec.md §4.I's Update/Delete executor description:
// "acquire X (or upgrade if REPEATABLE_READ already holds S)". Factored
// out since both executors need exactly this rule.
package executors

import (
	"github.com/dbcore/bustubgo/storage/page"
)

func acquireExclusive(ctx *ExecutorContext, rid page.RID) error {
	txn := ctx.GetTransaction()
	if txn.IsExclusiveLocked(rid) {
		return nil
	}
	if txn.IsSharedLocked(rid) {
		return ctx.GetLockManager().LockUpgrade(txn, rid)
	}
	return ctx.GetLockManager().LockExclusive(txn, rid)
}
