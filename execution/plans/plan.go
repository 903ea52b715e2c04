// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (execution/plans/plan.go, itself from https://github.com/brunocalza/go-bustub);
// the teacher's GetChildren()/GetType() generic Plan interface is dropped
// since this project's execution engine wires children directly when it
// builds the executor tree (spec.md §1 treats the planner as an external
// collaborator that merely hands the executor a tree) rather than walking
// plan nodes generically.

// Package plans holds the plan-node shapes a planner would hand the
// execution engine: each one is read-only configuration for the
// matching executor in execution/executors.
package plans

import (
	"github.com/dbcore/bustubgo/execution/expression"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/types"
)

// SeqScanPlan identifies the table to scan, the output projection, and
// an optional predicate every scanned tuple must satisfy.
type SeqScanPlan struct {
	OutputSchema *schema.Schema
	Predicate    expression.Expression
	TableOID     uint32
}

// InsertPlan identifies the target table. Values is a "raw insert"
// literal set; when the InsertExecutor is given a child executor
// instead, each tuple the child produces is inserted verbatim.
type InsertPlan struct {
	TableOID uint32
	Values   [][]types.Value
}

// DeletePlan identifies the target table; every tuple the child
// produces is removed from it.
type DeletePlan struct {
	TableOID uint32
}

// UpdateKind selects how an UpdateTarget's expression combines with a
// column's current value (spec.md §4.I "per-column Set or Add").
type UpdateKind int

const (
	UpdateSet UpdateKind = iota
	UpdateAdd
)

// UpdateTarget describes how to recompute one column of the updated
// tuple: either replace it with Expr's value (UpdateSet) or add Expr's
// value to the column's current one (UpdateAdd).
type UpdateTarget struct {
	ColIndex uint32
	Kind     UpdateKind
	Expr     expression.Expression
}

// UpdatePlan identifies the target table and the per-column
// transformation applied to every tuple the child produces.
type UpdatePlan struct {
	TableOID uint32
	Targets  []UpdateTarget
}

// NestedLoopJoinPlan joins its left and right children by evaluating
// Predicate against every (left, right) pair.
type NestedLoopJoinPlan struct {
	OutputSchema  *schema.Schema
	Predicate     expression.Expression
	LeftSchema    *schema.Schema
	RightSchema   *schema.Schema
	LeftColCount  uint32
	RightColCount uint32
}

// HashJoinPlan joins its left (build side) and right (probe side)
// children by equality of LeftKey and RightKey.
type HashJoinPlan struct {
	OutputSchema  *schema.Schema
	LeftKey       expression.Expression
	RightKey      expression.Expression
	LeftSchema    *schema.Schema
	RightSchema   *schema.Schema
	LeftColCount  uint32
	RightColCount uint32
}

// AggregationType enumerates the aggregate functions SimpleAggregationHashTable
// computes while folding a child's tuples.
type AggregationType int

const (
	CountAggregate AggregationType = iota
	SumAggregate
	MinAggregate
	MaxAggregate
)

// AggregationPlan groups the child's tuples by GroupBys, folds each
// group through Aggregates/AggregateTypes, and emits one output tuple
// per group whose result satisfies Having (if any). OutputExprs
// computes each output column from the resulting group-by/aggregate
// vectors, by convention an expression.AggregateValue per column.
type AggregationPlan struct {
	OutputSchema   *schema.Schema
	OutputExprs    []expression.Expression
	GroupBys       []expression.Expression
	Aggregates     []expression.Expression
	AggregateTypes []AggregationType
	Having         expression.Expression
}

// DistinctPlan removes duplicate tuples from its child, comparing on
// every column of OutputSchema.
type DistinctPlan struct {
	OutputSchema *schema.Schema
}
