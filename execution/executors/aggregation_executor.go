// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/executors/aggregation_executor.go): the teacher's
// SimpleAggregationHashTable keys by a murmur hash of the serialized
// group-by values with no collision check, so two distinct groups that
// happen to hash alike would silently merge. This version keys the map
// directly by the serialized bytes (a correct, if coarser, equality
// key) and keeps an explicit insertion-order slice so Next's iteration
// order is deterministic. MIN/MAX also seed from the first member's
// actual value instead of the teacher's INT_MAX/INT_MIN sentinels,
// since this project's aggregates are not limited to Integer.

package executors

import (
	"github.com/dbcore/bustubgo/execution/expression"
	"github.com/dbcore/bustubgo/execution/plans"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// aggregateGroup is one row of the SimpleAggregationHashTable: the
// group-by values that produced the key, and the running aggregate
// values folded in by every member tuple seen so far.
type aggregateGroup struct {
	groupBys    []types.Value
	aggregates  []types.Value
	initialized []bool
}

// AggregationExecutor folds Child's tuples into groups keyed by
// plan.GroupBys, computing plan.Aggregates per group, and emits one
// output tuple per group satisfying plan.Having (spec.md §4.I).
type AggregationExecutor struct {
	ctx   *ExecutorContext
	plan  *plans.AggregationPlan
	child Executor

	groups map[string]*aggregateGroup
	order  []string
	cursor int
}

func NewAggregationExecutor(ctx *ExecutorContext, plan *plans.AggregationPlan, child Executor) *AggregationExecutor {
	return &AggregationExecutor{ctx: ctx, plan: plan, child: child}
}

func (e *AggregationExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema }

func (e *AggregationExecutor) Init() error {
	if err := e.child.Init(); err != nil {
		return err
	}
	e.groups = make(map[string]*aggregateGroup)

	for {
		t, _, done, err := e.child.Next()
		if err != nil {
			return wrapChildError(err)
		}
		if done {
			break
		}
		groupBys := evaluateAll(e.plan.GroupBys, t, e.child.GetOutputSchema())
		input := evaluateAll(e.plan.Aggregates, t, e.child.GetOutputSchema())
		e.combine(groupBys, input)
	}
	return nil
}

func evaluateAll(exprs []expression.Expression, t *tuple.Tuple, sch *schema.Schema) []types.Value {
	values := make([]types.Value, len(exprs))
	for i, expr := range exprs {
		values[i] = expr.Evaluate(t, sch)
	}
	return values
}

func (e *AggregationExecutor) combine(groupBys, input []types.Value) {
	key := encodeGroupKey(groupBys)
	group, ok := e.groups[key]
	if !ok {
		n := len(e.plan.AggregateTypes)
		group = &aggregateGroup{groupBys: groupBys, aggregates: make([]types.Value, n), initialized: make([]bool, n)}
		for i, kind := range e.plan.AggregateTypes {
			if kind == plans.CountAggregate || kind == plans.SumAggregate {
				group.aggregates[i] = types.NewInteger(0)
				group.initialized[i] = true
			}
		}
		e.groups[key] = group
		e.order = append(e.order, key)
	}
	for i, kind := range e.plan.AggregateTypes {
		switch kind {
		case plans.CountAggregate:
			group.aggregates[i] = group.aggregates[i].Add(types.NewInteger(1))
		case plans.SumAggregate:
			group.aggregates[i] = group.aggregates[i].Add(input[i])
		case plans.MinAggregate:
			if !group.initialized[i] {
				group.aggregates[i] = input[i]
				group.initialized[i] = true
			} else {
				group.aggregates[i] = group.aggregates[i].Min(input[i])
			}
		case plans.MaxAggregate:
			if !group.initialized[i] {
				group.aggregates[i] = input[i]
				group.initialized[i] = true
			} else {
				group.aggregates[i] = group.aggregates[i].Max(input[i])
			}
		}
	}
}

func encodeGroupKey(values []types.Value) string {
	var buf []byte
	for _, v := range values {
		buf = append(buf, v.Serialize()...)
	}
	return string(buf)
}

func (e *AggregationExecutor) Next() (*tuple.Tuple, page.RID, bool, error) {
	for e.cursor < len(e.order) {
		group := e.groups[e.order[e.cursor]]
		if e.plan.Having != nil && !e.plan.Having.EvaluateAggregate(group.groupBys, group.aggregates).ToBoolean() {
			e.cursor++
			continue
		}
		values := make([]types.Value, len(e.plan.OutputExprs))
		for i, expr := range e.plan.OutputExprs {
			values[i] = expr.EvaluateAggregate(group.groupBys, group.aggregates)
		}
		e.cursor++
		return tuple.NewTupleFromValues(values), page.RID{}, false, nil
	}
	return nil, page.RID{}, true, nil
}
