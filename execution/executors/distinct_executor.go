// this code is grounded on the original implementation's
// distinct_executor.cpp/.h: Init drains Child once into a map keyed by
// every output column's value, keeping only the first tuple seen per
// key, then Next streams the map. The teacher repo carries no Go
// equivalent, so this follows spec.md §4.I's DISTINCT rule directly,
// using the same serialize-to-string keying this package's other
// set/map-keyed executors (HashJoin, Aggregation) already use since
// types.Value is not itself comparable.

package executors

import (
	"github.com/dbcore/bustubgo/execution/plans"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
)

// DistinctExecutor suppresses duplicate rows from Child, comparing
// rows by every column of plan.OutputSchema.
type DistinctExecutor struct {
	ctx   *ExecutorContext
	plan  *plans.DistinctPlan
	child Executor

	seen     map[string]bool
	buffered []*tuple.Tuple
	index    int
}

func NewDistinctExecutor(ctx *ExecutorContext, plan *plans.DistinctPlan, child Executor) *DistinctExecutor {
	return &DistinctExecutor{ctx: ctx, plan: plan, child: child}
}

func (e *DistinctExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema }

func (e *DistinctExecutor) Init() error {
	if err := e.child.Init(); err != nil {
		return err
	}
	e.seen = make(map[string]bool)

	for {
		t, _, done, err := e.child.Next()
		if err != nil {
			return wrapChildError(err)
		}
		if done {
			break
		}
		key := encodeGroupKey(t.GetValues(e.plan.OutputSchema))
		if e.seen[key] {
			continue
		}
		e.seen[key] = true
		e.buffered = append(e.buffered, t)
	}
	return nil
}

func (e *DistinctExecutor) Next() (*tuple.Tuple, page.RID, bool, error) {
	if e.index >= len(e.buffered) {
		return nil, page.RID{}, true, nil
	}
	t := e.buffered[e.index]
	e.index++
	return t, t.GetRID(), false, nil
}
