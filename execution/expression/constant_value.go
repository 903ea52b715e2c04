// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/constant_value.go, itself from
// https://github.com/brunocalza/go-bustub)

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// ConstantValue always evaluates to the literal it was built with,
// regardless of the tuple(s) passed in.
type ConstantValue struct {
	Value types.Value
}

func NewConstantValue(value types.Value) *ConstantValue {
	return &ConstantValue{Value: value}
}

func (c *ConstantValue) Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value {
	return c.Value
}

func (c *ConstantValue) EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value {
	return c.Value
}

func (c *ConstantValue) EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value {
	return c.Value
}
