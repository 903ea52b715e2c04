// this code is grounded on https://github.com/ryogrid/SamehadaDB
// (execution/executors/hash_join_executor.go), which is an unfinished
// transliteration of CMU BusTub's C++ temp-page hash join (it does not
// compile: undeclared plans_/exec_ctx_ fields, reflect.Tuple casts).
// This version follows spec.md §4.I's simpler contract instead ("build a
// multimap left_key -> list<left_tuple> ... next streams results"),
// keeping the build side in memory rather than spilling to temp pages,
// matching the scale the rest of this executor set already assumes.

package executors

import (
	"github.com/dbcore/bustubgo/execution/plans"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// HashJoinExecutor builds an in-memory multimap of Left's tuples keyed
// by plan.LeftKey, then probes it with every Right tuple's plan.RightKey.
type HashJoinExecutor struct {
	ctx         *ExecutorContext
	plan        *plans.HashJoinPlan
	left, right Executor

	buildTable   map[string][]*tuple.Tuple
	matches      []*tuple.Tuple
	matchIndex   int
	currentRight *tuple.Tuple
}

func NewHashJoinExecutor(ctx *ExecutorContext, plan *plans.HashJoinPlan, left, right Executor) *HashJoinExecutor {
	return &HashJoinExecutor{ctx: ctx, plan: plan, left: left, right: right}
}

func (e *HashJoinExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema }

func (e *HashJoinExecutor) Init() error {
	if err := e.left.Init(); err != nil {
		return err
	}
	if err := e.right.Init(); err != nil {
		return err
	}

	e.buildTable = make(map[string][]*tuple.Tuple)
	for {
		lt, _, done, err := e.left.Next()
		if err != nil {
			return wrapChildError(err)
		}
		if done {
			break
		}
		key := joinKey(e.plan.LeftKey.Evaluate(lt, e.plan.LeftSchema))
		e.buildTable[key] = append(e.buildTable[key], lt)
	}
	return nil
}

// joinKey maps a key value to the string a Go map can compare, since
// types.Value is not itself comparable (it carries pointer fields).
func joinKey(v types.Value) string {
	return string(v.Serialize())
}

func (e *HashJoinExecutor) Next() (*tuple.Tuple, page.RID, bool, error) {
	for {
		if e.matchIndex < len(e.matches) {
			lt := e.matches[e.matchIndex]
			e.matchIndex++
			return e.makeOutputTuple(lt, e.currentRight), page.RID{}, false, nil
		}

		rt, _, done, err := e.right.Next()
		if err != nil {
			return nil, page.RID{}, true, wrapChildError(err)
		}
		if done {
			return nil, page.RID{}, true, nil
		}

		e.currentRight = rt
		key := joinKey(e.plan.RightKey.Evaluate(rt, e.plan.RightSchema))
		e.matches = e.buildTable[key]
		e.matchIndex = 0
	}
}

func (e *HashJoinExecutor) makeOutputTuple(left, right *tuple.Tuple) *tuple.Tuple {
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
