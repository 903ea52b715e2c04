// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/expression/abstract_expression.go, column_value.go,
// comparison.go, constant_value.go): the teacher's fixed [2]Expression
// child array and untyped ExpressionType switch are dropped in favor of
// one interface every leaf expression implements directly, since this
// project's executors only ever need the three evaluation shapes spec.md
// §4.I names (against a tuple, a join pair, or an aggregate key/value
// vector), never generic tree traversal.

package expression

import (
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// Expression is the predicate/projection tree spec.md §4.I requires:
// every operator evaluates its predicates and output columns through one
// of these three shapes depending on what it has on hand.
type Expression interface {
	// Evaluate computes this expression's value against a single tuple.
	Evaluate(t *tuple.Tuple, sch *schema.Schema) types.Value
	// EvaluateJoin computes this expression's value against a pair of
	// tuples from a join's two sides.
	EvaluateJoin(left *tuple.Tuple, leftSchema *schema.Schema, right *tuple.Tuple, rightSchema *schema.Schema) types.Value
	// EvaluateAggregate computes this expression's value against an
	// aggregation's group-by and aggregate result vectors.
	EvaluateAggregate(groupBys []types.Value, aggregates []types.Value) types.Value
}
