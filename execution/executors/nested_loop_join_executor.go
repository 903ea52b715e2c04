// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/executors/nested_loop_join_executor.go); kept close to the
// teacher's materialize-then-stream shape, which already matches
// spec.md §4.I ("in init, materialize the join result ... next streams
// the buffered result"), generalized to report a RID-less join output
// (a join output does not identify a single base-table row).

package executors

import (
	"github.com/dbcore/bustubgo/execution/plans"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// NestedLoopJoinExecutor joins Left and Right by evaluating
// plan.Predicate against every pair of their tuples.
type NestedLoopJoinExecutor struct {
	ctx         *ExecutorContext
	plan        *plans.NestedLoopJoinPlan
	left, right Executor
	buffered    []*tuple.Tuple
	index       int
}

func NewNestedLoopJoinExecutor(ctx *ExecutorContext, plan *plans.NestedLoopJoinPlan, left, right Executor) *NestedLoopJoinExecutor {
	return &NestedLoopJoinExecutor{ctx: ctx, plan: plan, left: left, right: right}
}

func (e *NestedLoopJoinExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema }

func (e *NestedLoopJoinExecutor) Init() error {
	if err := e.left.Init(); err != nil {
		return err
	}
	if err := e.right.Init(); err != nil {
		return err
	}

	var rightTuples []*tuple.Tuple
	for {
		rt, _, done, err := e.right.Next()
		if err != nil {
			return wrapChildError(err)
		}
		if done {
			break
		}
		rightTuples = append(rightTuples, rt)
	}

	for {
		lt, _, done, err := e.left.Next()
		if err != nil {
			return wrapChildError(err)
		}
		if done {
			break
		}
		for _, rt := range rightTuples {
			if e.plan.Predicate == nil || e.plan.Predicate.EvaluateJoin(lt, e.plan.LeftSchema, rt, e.plan.RightSchema).ToBoolean() {
				e.buffered = append(e.buffered, e.makeOutputTuple(lt, rt))
			}
		}
	}
	return nil
}

func (e *NestedLoopJoinExecutor) makeOutputTuple(left, right *tuple.Tuple) *tuple.Tuple {
	outCount := e.plan.OutputSchema.GetColumnCount()
	values := make([]types.Value, outCount)
	for i := uint32(0); i < outCount; i++ {
		if i < e.plan.LeftColCount {
			values[i] = left.GetValue(e.plan.LeftSchema, i)
		} else {
			values[i] = right.GetValue(e.plan.RightSchema, i-e.plan.LeftColCount)
		}
	}
	return tuple.NewTupleFromValues(values)
}

func (e *NestedLoopJoinExecutor) Next() (*tuple.Tuple, page.RID, bool, error) {
	if e.index >= len(e.buffered) {
		return nil, page.RID{}, true, nil
	}
	t := e.buffered[e.index]
	e.index++
	return t, page.RID{}, false, nil
}
