// this code is grounded on https://github.com/ryogrid/SamehadaDB
// (execution/expression tests are absent there); tuples are built
// directly with schema.NewColumn and tuple.NewTupleFromValues.

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

func testSchema() *schema.Schema {
	return schema.NewSchema([]*schema.Column{
		schema.NewColumn("a", types.Integer),
		schema.NewColumn("b", types.Integer),
	})
}

func TestColumnValueEvaluate(t *testing.T) {
	sch := testSchema()
	tup := tuple.NewTupleFromValues([]types.Value{types.NewInteger(10), types.NewInteger(20)})

	colA := &ColumnValue{TupleIndex: 0, ColIndex: 0, RetType: types.Integer}
	colB := &ColumnValue{TupleIndex: 0, ColIndex: 1, RetType: types.Integer}

	assert.Equal(t, int32(10), colA.Evaluate(tup, sch).ToInteger())
	assert.Equal(t, int32(20), colB.Evaluate(tup, sch).ToInteger())
}

func TestColumnValueEvaluateJoinPicksSide(t *testing.T) {
	leftSchema := testSchema()
	rightSchema := testSchema()
	left := tuple.NewTupleFromValues([]types.Value{types.NewInteger(1), types.NewInteger(2)})
	right := tuple.NewTupleFromValues([]types.Value{types.NewInteger(100), types.NewInteger(200)})

	fromLeft := &ColumnValue{TupleIndex: 0, ColIndex: 1, RetType: types.Integer}
	fromRight := &ColumnValue{TupleIndex: 1, ColIndex: 1, RetType: types.Integer}

	assert.Equal(t, int32(2), fromLeft.EvaluateJoin(left, leftSchema, right, rightSchema).ToInteger())
	assert.Equal(t, int32(200), fromRight.EvaluateJoin(left, leftSchema, right, rightSchema).ToInteger())
}

func TestComparisonEqualAndLessThan(t *testing.T) {
	sch := testSchema()
	tup := tuple.NewTupleFromValues([]types.Value{types.NewInteger(5), types.NewInteger(7)})

	eq := NewComparison(&ColumnValue{ColIndex: 0, RetType: types.Integer}, &ConstantValue{Value: types.NewInteger(5)}, Equal)
	assert.True(t, eq.Evaluate(tup, sch).ToBoolean())

	lt := NewComparison(&ColumnValue{ColIndex: 0, RetType: types.Integer}, &ColumnValue{ColIndex: 1, RetType: types.Integer}, LessThan)
	assert.True(t, lt.Evaluate(tup, sch).ToBoolean())

	gte := NewComparison(&ColumnValue{ColIndex: 1, RetType: types.Integer}, &ColumnValue{ColIndex: 0, RetType: types.Integer}, GreaterThanOrEqual)
	assert.True(t, gte.Evaluate(tup, sch).ToBoolean())
}

func TestLogicalOpAndOrNot(t *testing.T) {
	sch := testSchema()
	tup := tuple.NewTupleFromValues([]types.Value{types.NewInteger(5), types.NewInteger(7)})

	tru := &ConstantValue{Value: types.NewBoolean(true)}
	fls := &ConstantValue{Value: types.NewBoolean(false)}

	and := &LogicalOp{Left: tru, Right: fls, Op: And}
	assert.False(t, and.Evaluate(tup, sch).ToBoolean())

	or := &LogicalOp{Left: tru, Right: fls, Op: Or}
	assert.True(t, or.Evaluate(tup, sch).ToBoolean())

	not := &LogicalOp{Left: fls, Op: Not}
	assert.True(t, not.Evaluate(tup, sch).ToBoolean())
}

func TestAggregateValueReadsGroupByOrAggregate(t *testing.T) {
	groupBys := []types.Value{types.NewInteger(1)}
	aggregates := []types.Value{types.NewInteger(42)}

	group := &AggregateValue{IsGroupByTerm: true, TermIndex: 0}
	agg := &AggregateValue{IsGroupByTerm: false, TermIndex: 0}

	assert.Equal(t, int32(1), group.EvaluateAggregate(groupBys, aggregates).ToInteger())
	assert.Equal(t, int32(42), agg.EvaluateAggregate(groupBys, aggregates).ToInteger())
}

func TestAggregateValuePanicsOutsideAggregateContext(t *testing.T) {
	sch := testSchema()
	tup := tuple.NewTupleFromValues([]types.Value{types.NewInteger(5), types.NewInteger(7)})
	av := &AggregateValue{TermIndex: 0}

	assert.Panics(t, func() { av.Evaluate(tup, sch) })
}
