// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/comparison.go, itself from
// https://github.com/brunocalza/go-bustub); generalized from the
// teacher's Equal/NotEqual-only switch to every comparison
// types.Value defines, and from a fixed left-is-a-ColumnValue shape to
// two general child expressions.

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

type ComparisonType int

const (
	Equal ComparisonType = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

// Comparison evaluates Left and Right and compares the results,
// producing a Boolean value.
type Comparison struct {
	Left, Right Expression
	Op          ComparisonType
}

func NewComparison(left, right Expression, op ComparisonType) *Comparison {
	return &Comparison{Left: left, Right: right, Op: op}
}

func (c *Comparison) compare(lhs, rhs types.Value) bool {
	switch c.Op {
	case Equal:
		return lhs.CompareEquals(rhs)
	case NotEqual:
		return lhs.CompareNotEquals(rhs)
	case LessThan:
		return lhs.CompareLessThan(rhs)
	case LessThanOrEqual:
		return lhs.CompareLessThanOrEqual(rhs)
	case GreaterThan:
		return lhs.CompareGreaterThan(rhs)
	case GreaterThanOrEqual:
		return lhs.CompareGreaterThanOrEqual(rhs)
	default:
		panic("Comparison: unknown comparison type")
	}
}

func (c *Comparison) Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value {
	lhs := c.Left.Evaluate(t, sch)
	rhs := c.Right.Evaluate(t, sch)
	return types.NewBoolean(c.compare(lhs, rhs))
}

func (c *Comparison) EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value {
	lhs := c.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	rhs := c.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	return types.NewBoolean(c.compare(lhs, rhs))
}

func (c *Comparison) EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value {
	lhs := c.Left.EvaluateAggregate(groupBys, aggregates)
	rhs := c.Right.EvaluateAggregate(groupBys, aggregates)
	return types.NewBoolean(c.compare(lhs, rhs))
}
