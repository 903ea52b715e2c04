// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/column_value.go, itself from
// https://github.com/brunocalza/go-bustub)

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// ColumnValue reads one column out of a tuple. TupleIndex selects which
// side of a join the column comes from: 0 for the left, 1 for the right.
type ColumnValue struct {
	TupleIndex uint32
	ColIndex   uint32
	RetType    types.TypeID
}

func NewColumnValue(tupleIndex, colIndex uint32, retType types.TypeID) *ColumnValue {
	return &ColumnValue{TupleIndex: tupleIndex, ColIndex: colIndex, RetType: retType}
}

func (c *ColumnValue) Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value {
	return t.GetValue(sch, c.ColIndex)
}

func (c *ColumnValue) EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value {
	if c.TupleIndex == 0 {
		return left.GetValue(leftSchema, c.ColIndex)
	}
	return right.GetValue(rightSchema, c.ColIndex)
}

func (c *ColumnValue) EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value {
	panic("ColumnValue.EvaluateAggregate: a column reference cannot be evaluated against aggregate results")
}
