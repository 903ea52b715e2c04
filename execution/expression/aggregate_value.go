// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/aggregate_value.go)

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// AggregateValue names one slot of an Aggregation executor's output: a
// group-by column or a computed aggregate, by index into the respective
// vector. It is only ever evaluated through EvaluateAggregate.
type AggregateValue struct {
	IsGroupByTerm bool
	TermIndex     uint32
}

func NewAggregateValue(isGroupByTerm bool, termIndex uint32) *AggregateValue {
	return &AggregateValue{IsGroupByTerm: isGroupByTerm, TermIndex: termIndex}
}

func (a *AggregateValue) Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value {
	panic("AggregateValue.Evaluate: an aggregate reference is only meaningful over aggregation results")
}

func (a *AggregateValue) EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value {
	panic("AggregateValue.EvaluateJoin: an aggregate reference is only meaningful over aggregation results")
}

func (a *AggregateValue) EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value {
	if a.IsGroupByTerm {
		return groupBys[a.TermIndex]
	}
	return aggregates[a.TermIndex]
}
