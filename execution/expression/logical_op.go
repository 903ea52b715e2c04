// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/loggical_op.go), fixing the filename typo and
// the teacher's hard panic on a malformed NOT (right must be nil) by
// making the zero-value of Right simply ignored for NOT.

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

type LogicalOpType int

const (
	And LogicalOpType = iota
	Or
	Not
)

// LogicalOp combines one or two Boolean-valued child expressions. Right
// is ignored when Op is Not.
type LogicalOp struct {
	Left, Right Expression
	Op          LogicalOpType
}

func NewLogicalOp(left, right Expression, op LogicalOpType) *LogicalOp {
	return &LogicalOp{Left: left, Right: right, Op: op}
}

func (l *LogicalOp) combine(lhs, rhs types.Value) bool {
	switch l.Op {
	case And:
		return lhs.ToBoolean() && rhs.ToBoolean()
	case Or:
		return lhs.ToBoolean() || rhs.ToBoolean()
	default:
		panic("LogicalOp.combine: not valid for NOT")
	}
}

func (l *LogicalOp) Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value {
	lhs := l.Left.Evaluate(t, sch)
	if l.Op == Not {
		return types.NewBoolean(!lhs.ToBoolean())
	}
	rhs := l.Right.Evaluate(t, sch)
	return types.NewBoolean(l.combine(lhs, rhs))
}

func (l *LogicalOp) EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value {
	lhs := l.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if l.Op == Not {
		return types.NewBoolean(!lhs.ToBoolean())
	}
	rhs := l.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	return types.NewBoolean(l.combine(lhs, rhs))
}

func (l *LogicalOp) EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value {
	lhs := l.Left.EvaluateAggregate(groupBys, aggregates)
	if l.Op == Not {
		return types.NewBoolean(!lhs.ToBoolean())
	}
	rhs := l.Right.EvaluateAggregate(groupBys, aggregates)
	return types.NewBoolean(l.combine(lhs, rhs))
}
