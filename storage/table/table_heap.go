// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/access/table_heap.go, itself from https://github.com/brunocalza/go-bustub):
// the write-ahead-log plumbing the original threads through every call is
// dropped (spec.md §1), and undo is recorded as a closure on the
// transaction's write set instead of a generic (RID, WType, oldTuple)
// triple the transaction manager would need a catalog to interpret.

package table

import (
	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/storage/buffer"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/tuple"
	"github.com/dbcore/bustubgo/types"
)

// TableHeap is a table's on-disk representation: a singly-linked chain of
// TablePages starting at firstPageID, every access routed through the
// buffer pool (spec.md §3).
type TableHeap struct {
	bpm         *buffer.BufferPoolManager
	lockManager *concurrency.LockManager
	firstPageID types.PageID
	oid         uint32
}

// NewTableHeap allocates a fresh, empty table heap.
func NewTableHeap(bpm *buffer.BufferPoolManager, lockManager *concurrency.LockManager, oid uint32) *TableHeap {
	var firstPageID types.PageID
	p := bpm.NewPage(&firstPageID)
	firstPage := page.CastAsTablePage(p)
	firstPage.Page().WLatch()
	firstPage.Init(firstPageID, types.InvalidPageID)
	firstPage.Page().WUnlatch()
	bpm.UnpinPage(firstPageID, true)
	return &TableHeap{bpm: bpm, lockManager: lockManager, firstPageID: firstPageID, oid: oid}
}

// OpenTableHeap reopens a table heap whose first page already exists on
// disk.
func OpenTableHeap(bpm *buffer.BufferPoolManager, lockManager *concurrency.LockManager, firstPageID types.PageID, oid uint32) *TableHeap {
	return &TableHeap{bpm: bpm, lockManager: lockManager, firstPageID: firstPageID, oid: oid}
}

func (h *TableHeap) GetFirstPageId() types.PageID { return h.firstPageID }

// InsertTuple appends t to the first page with room, chaining a new page
// onto the heap if none of the existing pages fit it, and appends an undo
// closure that physically removes the tuple again.
func (h *TableHeap) InsertTuple(t *tuple.Tuple, txn *concurrency.Transaction) (page.RID, error) {
	current := page.CastAsTablePage(h.bpm.FetchPage(h.firstPageID))

	var slot uint32
	var err error
	for {
		current.Page().WLatch()
		slot, err = current.InsertTuple(t.Data())
		if err == nil {
			current.Page().WUnlatch()
			break
		}
		current.Page().WUnlatch()

		next := current.GetNextPageId()
		if next.IsValid() {
			h.bpm.UnpinPage(current.GetPageId(), false)
			current = page.CastAsTablePage(h.bpm.FetchPage(next))
			continue
		}

		var newPageID types.PageID
		newRaw := h.bpm.NewPage(&newPageID)
		newPage := page.CastAsTablePage(newRaw)
		newPage.Page().WLatch()
		newPage.Init(newPageID, current.GetPageId())
		newPage.Page().WUnlatch()

		current.Page().WLatch()
		current.SetNextPageId(newPageID)
		current.Page().WUnlatch()

		h.bpm.UnpinPage(current.GetPageId(), true)
		current = newPage
	}

	rid := page.NewRID(current.GetPageId(), slot)
	h.bpm.UnpinPage(current.GetPageId(), true)

	heap := h
	txn.AppendWriteRecord(concurrency.WriteRecord{
		RID:      rid,
		WType:    concurrency.WTypeInsert,
		TableOID: h.oid,
		Undo: func() {
			p := page.CastAsTablePage(heap.bpm.FetchPage(rid.GetPageId()))
			p.Page().WLatch()
			p.ApplyDelete(rid.GetSlotNum())
			p.Page().WUnlatch()
			heap.bpm.UnpinPage(rid.GetPageId(), true)
		},
	})
	return rid, nil
}

// MarkDelete tombstones the tuple at rid without reclaiming its space, so
// the delete can still be rolled back, and registers the rollback as the
// write record's undo.
func (h *TableHeap) MarkDelete(rid page.RID, txn *concurrency.Transaction) error {
	p := page.CastAsTablePage(h.bpm.FetchPage(rid.GetPageId()))
	p.Page().WLatch()
	err := p.MarkDelete(rid.GetSlotNum())
	p.Page().WUnlatch()
	h.bpm.UnpinPage(rid.GetPageId(), true)
	if err != nil {
		return err
	}

	heap := h
	txn.AppendWriteRecord(concurrency.WriteRecord{
		RID:      rid,
		WType:    concurrency.WTypeDelete,
		TableOID: h.oid,
		Undo: func() {
			p := page.CastAsTablePage(heap.bpm.FetchPage(rid.GetPageId()))
			p.Page().WLatch()
			p.RollbackDelete(rid.GetSlotNum())
			p.Page().WUnlatch()
			heap.bpm.UnpinPage(rid.GetPageId(), true)
		},
	})
	return nil
}

// ApplyDelete physically reclaims a mark-deleted tuple's space.
// TransactionManager.Commit does not call it: Commit only releases locks,
// so a mark-deleted tuple keeps its space until ApplyDelete is called.
func (h *TableHeap) ApplyDelete(rid page.RID) {
	p := page.CastAsTablePage(h.bpm.FetchPage(rid.GetPageId()))
	p.Page().WLatch()
	p.ApplyDelete(rid.GetSlotNum())
	p.Page().WUnlatch()
	h.bpm.UnpinPage(rid.GetPageId(), true)
}

// UpdateTuple replaces the tuple at rid in place when it fits, or falls
// back to delete-then-reinsert when it does not, returning the rid the
// tuple now lives at (unchanged unless it moved).
func (h *TableHeap) UpdateTuple(rid page.RID, newTuple *tuple.Tuple, txn *concurrency.Transaction) (page.RID, error) {
	p := page.CastAsTablePage(h.bpm.FetchPage(rid.GetPageId()))
	p.Page().WLatch()
	oldData, err := p.UpdateTuple(rid.GetSlotNum(), newTuple.Data())
	p.Page().WUnlatch()

	if err == nil {
		h.bpm.UnpinPage(rid.GetPageId(), true)
		heap := h
		old := oldData
		txn.AppendWriteRecord(concurrency.WriteRecord{
			RID:      rid,
			WType:    concurrency.WTypeUpdate,
			TableOID: h.oid,
			Undo: func() {
				p := page.CastAsTablePage(heap.bpm.FetchPage(rid.GetPageId()))
				p.Page().WLatch()
				p.UpdateTuple(rid.GetSlotNum(), old)
				p.Page().WUnlatch()
				heap.bpm.UnpinPage(rid.GetPageId(), true)
			},
		})
		return rid, nil
	}
	h.bpm.UnpinPage(rid.GetPageId(), false)

	if markErr := h.MarkDelete(rid, txn); markErr != nil {
		return page.RID{}, markErr
	}
	newRID, insErr := h.InsertTuple(newTuple, txn)
	if insErr != nil {
		return page.RID{}, insErr
	}
	return newRID, nil
}

// RollbackDelete undoes a MarkDelete that has not yet been applied.
func (h *TableHeap) RollbackDelete(rid page.RID) {
	p := page.CastAsTablePage(h.bpm.FetchPage(rid.GetPageId()))
	p.Page().WLatch()
	p.RollbackDelete(rid.GetSlotNum())
	p.Page().WUnlatch()
	h.bpm.UnpinPage(rid.GetPageId(), true)
}

// GetTuple reads the tuple at rid under a shared lock.
func (h *TableHeap) GetTuple(rid page.RID, txn *concurrency.Transaction) (*tuple.Tuple, error) {
	// spec.md §4.I: SeqScan only acquires S for non-READ_UNCOMMITTED
	// transactions; LockShared itself aborts on READ_UNCOMMITTED, so the
	// caller must skip the call rather than let it fail the scan.
	if txn.GetIsolationLevel() != concurrency.ReadUncommitted && !txn.IsSharedLocked(rid) && !txn.IsExclusiveLocked(rid) {
		if err := h.lockManager.LockShared(txn, rid); err != nil {
			return nil, err
		}
	}
	p := page.CastAsTablePage(h.bpm.FetchPage(rid.GetPageId()))
	p.Page().RLatch()
	data, err := p.GetTuple(rid.GetSlotNum())
	p.Page().RUnlatch()
	h.bpm.UnpinPage(rid.GetPageId(), false)
	if err != nil {
		return nil, err
	}
	return tuple.NewTupleFromBytes(data, rid), nil
}

// GetFirstTuple returns the first live tuple in the heap, or
// common.ErrPageNotFound if the table is empty.
func (h *TableHeap) GetFirstTuple(txn *concurrency.Transaction) (*tuple.Tuple, error) {
	pageID := h.firstPageID
	for pageID.IsValid() {
		p := page.CastAsTablePage(h.bpm.FetchPage(pageID))
		p.Page().RLatch()
		slot, ok := p.GetFirstTupleSlot()
		next := p.GetNextPageId()
		p.Page().RUnlatch()
		h.bpm.UnpinPage(pageID, false)
		if ok {
			return h.GetTuple(page.NewRID(pageID, slot), txn)
		}
		pageID = next
	}
	return nil, &common.Error{Code: common.ErrPageNotFound, Msg: "table is empty"}
}

// Iterator returns an iterator positioned at the heap's first tuple.
func (h *TableHeap) Iterator(txn *concurrency.Transaction) *TableIterator {
	return NewTableIterator(h, txn)
}

func (h *TableHeap) GetBufferPoolManager() *buffer.BufferPoolManager { return h.bpm }
