// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/access/table_heap_iterator.go, itself from
// https://github.com/brunocalza/go-bustub): the recursive latch-record
// bookkeeping the original adds for detecting self-deleted tuples mid-scan
// is dropped along with the WAL/lock-manager plumbing it existed to
// support; a SeqScan-driven iterator only ever needs forward movement
// under whatever isolation level the scanning transaction already holds.

package table

import (
	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/tuple"
)

// TableIterator walks every live tuple of a TableHeap in RID order.
type TableIterator struct {
	heap    *TableHeap
	txn     *concurrency.Transaction
	current *tuple.Tuple
}

func NewTableIterator(heap *TableHeap, txn *concurrency.Transaction) *TableIterator {
	current, err := heap.GetFirstTuple(txn)
	if err != nil {
		current = nil
	}
	return &TableIterator{heap: heap, txn: txn, current: current}
}

// Current returns the tuple the iterator currently points at, or nil once
// the scan is exhausted.
func (it *TableIterator) Current() *tuple.Tuple { return it.current }

// End reports whether the iterator has scanned past the last tuple.
func (it *TableIterator) End() bool { return it.current == nil }

// Next advances to the next live tuple, following the page chain when the
// current page has none left, and returns it (nil past the end).
func (it *TableIterator) Next() *tuple.Tuple {
	if it.current == nil {
		return nil
	}
	bpm := it.heap.GetBufferPoolManager()
	rid := it.current.GetRID()
	currentPage := page.CastAsTablePage(bpm.FetchPage(rid.GetPageId()))
	fromSlot := rid.GetSlotNum()
	samePage := true

	for {
		currentPage.Page().RLatch()
		var slot uint32
		var ok bool
		if samePage {
			slot, ok = currentPage.GetNextTupleSlot(fromSlot)
		} else {
			slot, ok = currentPage.GetFirstTupleSlot()
		}
		pageID := currentPage.GetPageId()
		nextPageID := currentPage.GetNextPageId()
		currentPage.Page().RUnlatch()

		if ok {
			bpm.UnpinPage(pageID, false)
			it.current, _ = it.heap.GetTuple(page.NewRID(pageID, slot), it.txn)
			return it.current
		}

		bpm.UnpinPage(pageID, false)
		if !nextPageID.IsValid() {
			it.current = nil
			return nil
		}
		currentPage = page.CastAsTablePage(bpm.FetchPage(nextPageID))
		samePage = false
	}
}
