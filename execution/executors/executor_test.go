// this code is grounded on https://github.com/ryogrid/SamehadaDB
// (execution/executors/executor_test.go); rebuilt against this
// project's own catalog/table-heap/lock-manager APIs rather than the
// teacher's (which threads a log manager and WAL-aware transaction
// manager this project's storage layer never carries), but keeps the
// teacher's "insert rows then SeqScan them back" shape for the base
// case and extends it per-executor.

package executors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbcore/bustubgo/catalog"
	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/execution/expression"
	"github.com/dbcore/bustubgo/execution/plans"
	"github.com/dbcore/bustubgo/storage/buffer"
	"github.com/dbcore/bustubgo/storage/disk"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/types"
)

type testHarness struct {
	catalog     *catalog.Catalog
	bpm         *buffer.BufferPoolManager
	lockManager *concurrency.LockManager
	txnManager  *concurrency.TransactionManager
	txn         *concurrency.Transaction
}

func newTestHarness() *testHarness {
	dm := disk.NewMemManager()
	bpm := buffer.NewBufferPoolManager(buffer.Config{PoolSize: 32}, dm)
	lockManager := concurrency.NewLockManager()
	txnManager := concurrency.NewTransactionManager(lockManager)
	txn := txnManager.Begin(concurrency.RepeatableRead)
	cat := catalog.NewCatalog(bpm, lockManager)
	return &testHarness{catalog: cat, bpm: bpm, lockManager: lockManager, txnManager: txnManager, txn: txn}
}

func (h *testHarness) context() *ExecutorContext {
	return NewExecutorContext(h.catalog, h.bpm, h.lockManager, h.txn)
}

func twoColumnSchema() *schema.Schema {
	return schema.NewSchema([]*schema.Column{
		schema.NewColumn("a", types.Integer),
		schema.NewColumn("b", types.Integer),
	})
}

func collect(t *testing.T, e Executor) []*types.Value {
	t.Helper()
	var out []*types.Value
	require.NoError(t, e.Init())
	for {
		tup, _, done, err := e.Next()
		require.NoError(t, err)
		if done {
			break
		}
		v := tup.GetValue(e.GetOutputSchema(), 0)
		out = append(out, &v)
	}
	return out
}

func TestInsertAndSeqScan(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)

	rows := [][]types.Value{
		{types.NewInteger(20), types.NewInteger(22)},
		{types.NewInteger(99), types.NewInteger(55)},
	}
	insertPlan := &plans.InsertPlan{TableOID: tableMeta.OID, Values: rows}
	insert := NewInsertExecutor(h.context(), insertPlan, nil)
	require.NoError(t, insert.Init())
	for {
		_, _, done, err := insert.Next()
		require.NoError(t, err)
		if done {
			break
		}
	}

	scanPlan := &plans.SeqScanPlan{OutputSchema: sch, TableOID: tableMeta.OID}
	scan := NewSeqScanExecutor(h.context(), scanPlan)
	values := collect(t, scan)
	require.Len(t, values, 2)
	assert.Equal(t, int32(20), values[0].ToInteger())
	assert.Equal(t, int32(99), values[1].ToInteger())
}

func TestSeqScanWithPredicate(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)

	rows := [][]types.Value{
		{types.NewInteger(20), types.NewInteger(22)},
		{types.NewInteger(99), types.NewInteger(55)},
	}
	insertPlan := &plans.InsertPlan{TableOID: tableMeta.OID, Values: rows}
	insert := NewInsertExecutor(h.context(), insertPlan, nil)
	require.NoError(t, insert.Init())
	for {
		_, _, done, err := insert.Next()
		require.NoError(t, err)
		if done {
			break
		}
	}

	predicate := expression.NewComparison(
		&expression.ColumnValue{ColIndex: 0, RetType: types.Integer},
		&expression.ConstantValue{Value: types.NewInteger(50)},
		expression.GreaterThan,
	)
	scanPlan := &plans.SeqScanPlan{OutputSchema: sch, Predicate: predicate, TableOID: tableMeta.OID}
	scan := NewSeqScanExecutor(h.context(), scanPlan)
	values := collect(t, scan)
	require.Len(t, values, 1)
	assert.Equal(t, int32(99), values[0].ToInteger())
}

func TestInsertMaintainsIndex(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)
	keySchema := schema.NewSchema([]*schema.Column{schema.NewColumn("a", types.Integer)})
	idx := h.catalog.CreateIndex("idx_a", "t1", keySchema, 0)

	insertPlan := &plans.InsertPlan{TableOID: tableMeta.OID, Values: [][]types.Value{
		{types.NewInteger(7), types.NewInteger(8)},
	}}
	insert := NewInsertExecutor(h.context(), insertPlan, nil)
	require.NoError(t, insert.Init())
	_, rid, done, err := insert.Next()
	require.NoError(t, err)
	require.False(t, done)

	results := idx.Index.GetValue(types.NewInteger(7))
	require.Len(t, results, 1)
	assert.Equal(t, rid, results[0])
}

func TestDeleteRemovesFromIndexAndHeap(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)
	keySchema := schema.NewSchema([]*schema.Column{schema.NewColumn("a", types.Integer)})
	idx := h.catalog.CreateIndex("idx_a", "t1", keySchema, 0)

	insertPlan := &plans.InsertPlan{TableOID: tableMeta.OID, Values: [][]types.Value{
		{types.NewInteger(7), types.NewInteger(8)},
	}}
	insert := NewInsertExecutor(h.context(), insertPlan, nil)
	require.NoError(t, insert.Init())
	_, _, _, err := insert.Next()
	require.NoError(t, err)

	scanPlan := &plans.SeqScanPlan{OutputSchema: sch, TableOID: tableMeta.OID}
	deletePlan := &plans.DeletePlan{TableOID: tableMeta.OID}
	del := NewDeleteExecutor(h.context(), deletePlan, NewSeqScanExecutor(h.context(), scanPlan))
	require.NoError(t, del.Init())
	_, _, done, err := del.Next()
	require.NoError(t, err)
	require.False(t, done)

	assert.Empty(t, idx.Index.GetValue(types.NewInteger(7)))

	remaining := collect(t, NewSeqScanExecutor(h.context(), scanPlan))
	assert.Empty(t, remaining)
}

func TestUpdateSetAndAdd(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)

	insertPlan := &plans.InsertPlan{TableOID: tableMeta.OID, Values: [][]types.Value{
		{types.NewInteger(1), types.NewInteger(10)},
	}}
	insert := NewInsertExecutor(h.context(), insertPlan, nil)
	require.NoError(t, insert.Init())
	_, _, _, err := insert.Next()
	require.NoError(t, err)

	scanPlan := &plans.SeqScanPlan{OutputSchema: sch, TableOID: tableMeta.OID}
	updatePlan := &plans.UpdatePlan{
		TableOID: tableMeta.OID,
		Targets: []plans.UpdateTarget{
			{ColIndex: 0, Kind: plans.UpdateSet, Expr: &expression.ConstantValue{Value: types.NewInteger(99)}},
			{ColIndex: 1, Kind: plans.UpdateAdd, Expr: &expression.ConstantValue{Value: types.NewInteger(5)}},
		},
	}
	update := NewUpdateExecutor(h.context(), updatePlan, NewSeqScanExecutor(h.context(), scanPlan))
	require.NoError(t, update.Init())
	newTuple, _, done, err := update.Next()
	require.NoError(t, err)
	require.False(t, done)

	assert.Equal(t, int32(99), newTuple.GetValue(sch, 0).ToInteger())
	assert.Equal(t, int32(15), newTuple.GetValue(sch, 1).ToInteger())
}

func TestNestedLoopJoin(t *testing.T) {
	h := newTestHarness()
	leftSchema := twoColumnSchema()
	rightSchema := twoColumnSchema()
	leftMeta := h.catalog.CreateTable("left", leftSchema)
	rightMeta := h.catalog.CreateTable("right", rightSchema)

	for _, row := range [][]types.Value{
		{types.NewInteger(1), types.NewInteger(100)},
		{types.NewInteger(2), types.NewInteger(200)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: leftMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}
	for _, row := range [][]types.Value{
		{types.NewInteger(1), types.NewInteger(999)},
		{types.NewInteger(3), types.NewInteger(888)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: rightMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}

	outSchema := schema.NewSchema([]*schema.Column{
		schema.NewColumn("l_a", types.Integer),
		schema.NewColumn("l_b", types.Integer),
		schema.NewColumn("r_a", types.Integer),
		schema.NewColumn("r_b", types.Integer),
	})
	predicate := expression.NewComparison(
		&expression.ColumnValue{TupleIndex: 0, ColIndex: 0, RetType: types.Integer},
		&expression.ColumnValue{TupleIndex: 1, ColIndex: 0, RetType: types.Integer},
		expression.Equal,
	)
	joinPlan := &plans.NestedLoopJoinPlan{
		OutputSchema: outSchema, Predicate: predicate,
		LeftSchema: leftSchema, RightSchema: rightSchema,
		LeftColCount: 2, RightColCount: 2,
	}
	left := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: leftSchema, TableOID: leftMeta.OID})
	right := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: rightSchema, TableOID: rightMeta.OID})
	join := NewNestedLoopJoinExecutor(h.context(), joinPlan, left, right)

	require.NoError(t, join.Init())
	tup, _, done, err := join.Next()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, int32(1), tup.GetValue(outSchema, 0).ToInteger())
	assert.Equal(t, int32(999), tup.GetValue(outSchema, 3).ToInteger())

	_, _, done, err = join.Next()
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHashJoin(t *testing.T) {
	h := newTestHarness()
	leftSchema := twoColumnSchema()
	rightSchema := twoColumnSchema()
	leftMeta := h.catalog.CreateTable("left", leftSchema)
	rightMeta := h.catalog.CreateTable("right", rightSchema)

	for _, row := range [][]types.Value{
		{types.NewInteger(1), types.NewInteger(100)},
		{types.NewInteger(2), types.NewInteger(200)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: leftMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}
	for _, row := range [][]types.Value{
		{types.NewInteger(2), types.NewInteger(999)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: rightMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}

	outSchema := schema.NewSchema([]*schema.Column{
		schema.NewColumn("l_a", types.Integer),
		schema.NewColumn("r_b", types.Integer),
	})
	joinPlan := &plans.HashJoinPlan{
		OutputSchema: outSchema,
		LeftKey:      &expression.ColumnValue{ColIndex: 0, RetType: types.Integer},
		RightKey:     &expression.ColumnValue{ColIndex: 0, RetType: types.Integer},
		LeftSchema:   leftSchema, RightSchema: rightSchema,
		LeftColCount: 2, RightColCount: 2,
	}
	left := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: leftSchema, TableOID: leftMeta.OID})
	right := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: rightSchema, TableOID: rightMeta.OID})
	join := NewHashJoinExecutor(h.context(), joinPlan, left, right)

	values := collect(t, join)
	require.Len(t, values, 1)
	assert.Equal(t, int32(2), values[0].ToInteger())
}

func TestAggregationCountSumMinMax(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)

	for _, row := range [][]types.Value{
		{types.NewInteger(1), types.NewInteger(10)},
		{types.NewInteger(1), types.NewInteger(20)},
		{types.NewInteger(2), types.NewInteger(5)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: tableMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}

	outSchema := schema.NewSchema([]*schema.Column{
		schema.NewColumn("group", types.Integer),
		schema.NewColumn("count", types.Integer),
		schema.NewColumn("sum", types.Integer),
		schema.NewColumn("min", types.Integer),
		schema.NewColumn("max", types.Integer),
	})
	aggPlan := &plans.AggregationPlan{
		OutputSchema: outSchema,
		OutputExprs: []expression.Expression{
			&expression.AggregateValue{IsGroupByTerm: true, TermIndex: 0},
			&expression.AggregateValue{TermIndex: 0},
			&expression.AggregateValue{TermIndex: 1},
			&expression.AggregateValue{TermIndex: 2},
			&expression.AggregateValue{TermIndex: 3},
		},
		GroupBys:       []expression.Expression{&expression.ColumnValue{ColIndex: 0, RetType: types.Integer}},
		Aggregates: []expression.Expression{
			&expression.ColumnValue{ColIndex: 1, RetType: types.Integer},
			&expression.ColumnValue{ColIndex: 1, RetType: types.Integer},
			&expression.ColumnValue{ColIndex: 1, RetType: types.Integer},
			&expression.ColumnValue{ColIndex: 1, RetType: types.Integer},
		},
		AggregateTypes: []plans.AggregationType{
			plans.CountAggregate, plans.SumAggregate, plans.MinAggregate, plans.MaxAggregate,
		},
	}
	scan := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: sch, TableOID: tableMeta.OID})
	agg := NewAggregationExecutor(h.context(), aggPlan, scan)
	require.NoError(t, agg.Init())

	results := make(map[int32][5]int32)
	for {
		tup, _, done, err := agg.Next()
		require.NoError(t, err)
		if done {
			break
		}
		group := tup.GetValue(outSchema, 0).ToInteger()
		results[group] = [5]int32{
			group,
			tup.GetValue(outSchema, 1).ToInteger(),
			tup.GetValue(outSchema, 2).ToInteger(),
			tup.GetValue(outSchema, 3).ToInteger(),
			tup.GetValue(outSchema, 4).ToInteger(),
		}
	}

	require.Contains(t, results, int32(1))
	assert.Equal(t, [5]int32{1, 2, 30, 10, 20}, results[1])
	require.Contains(t, results, int32(2))
	assert.Equal(t, [5]int32{2, 1, 5, 5, 5}, results[2])
}

func TestDistinctSuppressesDuplicates(t *testing.T) {
	h := newTestHarness()
	sch := twoColumnSchema()
	tableMeta := h.catalog.CreateTable("t1", sch)

	for _, row := range [][]types.Value{
		{types.NewInteger(1), types.NewInteger(10)},
		{types.NewInteger(1), types.NewInteger(10)},
		{types.NewInteger(2), types.NewInteger(20)},
	} {
		ins := NewInsertExecutor(h.context(), &plans.InsertPlan{TableOID: tableMeta.OID, Values: [][]types.Value{row}}, nil)
		require.NoError(t, ins.Init())
		_, _, _, err := ins.Next()
		require.NoError(t, err)
	}

	scan := NewSeqScanExecutor(h.context(), &plans.SeqScanPlan{OutputSchema: sch, TableOID: tableMeta.OID})
	distinct := NewDistinctExecutor(h.context(), &plans.DistinctPlan{OutputSchema: sch}, scan)

	values := collect(t, distinct)
	assert.Len(t, values, 2)
}
