// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/access/table_page.go, itself from https://github.com/brunocalza/go-bustub);
// there is license and copyright notice in licenses/samehadadb dir.
// The write-ahead-log hooks the original threads through every mutation
// are dropped: this project's recovery story stops at the buffer pool's
// flush hook (spec.md §1), so TablePage only manages the slotted layout.

package page

import (
	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

const deleteMask = uint32(1) << 31

const (
	sizeTablePageHeader = uint32(24)
	sizeSlotEntry        = uint32(8)
	offsetPrevPageID     = uint32(8)
	offsetNextPageID     = uint32(12)
	offsetFreeSpace      = uint32(16)
	offsetTupleCount     = uint32(20)
	offsetTupleOffset    = uint32(24)
	offsetTupleSize      = uint32(28)
)

// TablePage is the slotted page a TableHeap chains together to store a
// table's tuples (spec.md §1): a header, a slot directory that grows
// forward, and tuple bytes packed backward from the end of the page.
type TablePage struct {
	pg *Page
}

func CastAsTablePage(pg *Page) *TablePage { return &TablePage{pg: pg} }

func (tp *TablePage) Page() *Page { return tp.pg }

func (tp *TablePage) Init(pageID, prevPageID types.PageID) {
	tp.SetPageId(pageID)
	tp.SetPrevPageId(prevPageID)
	tp.SetNextPageId(types.InvalidPageID)
	tp.SetTupleCount(0)
	tp.SetFreeSpacePointer(common.PageSize)
}

func (tp *TablePage) GetPageId() types.PageID {
	return types.NewPageIDFromBytes(tp.pg.Data()[:])
}

func (tp *TablePage) SetPageId(id types.PageID) { tp.pg.Copy(0, id.Serialize()) }

func (tp *TablePage) GetPrevPageId() types.PageID {
	return types.NewPageIDFromBytes(tp.pg.Data()[offsetPrevPageID:])
}
func (tp *TablePage) SetPrevPageId(id types.PageID) { tp.pg.Copy(offsetPrevPageID, id.Serialize()) }

func (tp *TablePage) GetNextPageId() types.PageID {
	return types.NewPageIDFromBytes(tp.pg.Data()[offsetNextPageID:])
}
func (tp *TablePage) SetNextPageId(id types.PageID) { tp.pg.Copy(offsetNextPageID, id.Serialize()) }

func (tp *TablePage) GetFreeSpacePointer() uint32 {
	return uint32(types.NewUInt32FromBytes(tp.pg.Data()[offsetFreeSpace:]))
}
func (tp *TablePage) SetFreeSpacePointer(v uint32) {
	tp.pg.Copy(offsetFreeSpace, types.UInt32(v).Serialize())
}

func (tp *TablePage) GetTupleCount() uint32 {
	return uint32(types.NewUInt32FromBytes(tp.pg.Data()[offsetTupleCount:]))
}
func (tp *TablePage) SetTupleCount(v uint32) {
	tp.pg.Copy(offsetTupleCount, types.UInt32(v).Serialize())
}

func (tp *TablePage) GetTupleOffsetAtSlot(slot uint32) uint32 {
	return uint32(types.NewUInt32FromBytes(tp.pg.Data()[offsetTupleOffset+sizeSlotEntry*slot:]))
}
func (tp *TablePage) SetTupleOffsetAtSlot(slot uint32, offset uint32) {
	tp.pg.Copy(offsetTupleOffset+sizeSlotEntry*slot, types.UInt32(offset).Serialize())
}

func (tp *TablePage) GetTupleSize(slot uint32) uint32 {
	return uint32(types.NewUInt32FromBytes(tp.pg.Data()[offsetTupleSize+sizeSlotEntry*slot:]))
}
func (tp *TablePage) SetTupleSize(slot uint32, size uint32) {
	tp.pg.Copy(offsetTupleSize+sizeSlotEntry*slot, types.UInt32(size).Serialize())
}

func (tp *TablePage) freeSpaceRemaining() uint32 {
	return tp.GetFreeSpacePointer() - sizeTablePageHeader - sizeSlotEntry*tp.GetTupleCount()
}

// InsertTuple appends data into the first free slot, returning that
// slot. Fails if the page does not have room.
func (tp *TablePage) InsertTuple(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, &common.Error{Code: common.ErrInvalidPageID, Msg: "tuple cannot be empty"}
	}
	size := uint32(len(data))
	if tp.freeSpaceRemaining() < size+sizeSlotEntry {
		return 0, &common.Error{Code: common.ErrPageNotFound, Msg: "not enough space in page"}
	}

	var slot uint32
	for slot = 0; slot < tp.GetTupleCount(); slot++ {
		if tp.GetTupleSize(slot) == 0 {
			break
		}
	}
	if slot == tp.GetTupleCount() && size+sizeSlotEntry > tp.freeSpaceRemaining() {
		return 0, &common.Error{Code: common.ErrPageNotFound, Msg: "no free slot"}
	}

	fsp := tp.GetFreeSpacePointer() - size
	tp.pg.Copy(fsp, data)
	tp.SetTupleOffsetAtSlot(slot, fsp)
	tp.SetTupleSize(slot, size)
	tp.SetFreeSpacePointer(fsp)
	if slot == tp.GetTupleCount() {
		tp.SetTupleCount(tp.GetTupleCount() + 1)
	}
	return slot, nil
}

// GetTuple returns a slot's tuple bytes, or an error if the slot is out
// of range or the tuple was deleted.
func (tp *TablePage) GetTuple(slot uint32) ([]byte, error) {
	if slot >= tp.GetTupleCount() {
		return nil, &common.Error{Code: common.ErrPageNotFound, Msg: "slot out of range"}
	}
	size := tp.GetTupleSize(slot)
	if IsDeleted(size) {
		return nil, &common.Error{Code: common.ErrPageNotFound, Msg: "tuple was deleted"}
	}
	offset := tp.GetTupleOffsetAtSlot(slot)
	data := make([]byte, size)
	copy(data, tp.pg.Data()[offset:offset+size])
	return data, nil
}

// MarkDelete tombstones a slot without reclaiming its space, so the
// delete can still be rolled back.
func (tp *TablePage) MarkDelete(slot uint32) error {
	if slot >= tp.GetTupleCount() {
		return &common.Error{Code: common.ErrPageNotFound, Msg: "slot out of range"}
	}
	size := tp.GetTupleSize(slot)
	if IsDeleted(size) {
		return &common.Error{Code: common.ErrPageNotFound, Msg: "tuple already deleted"}
	}
	if size > 0 {
		tp.SetTupleSize(slot, SetDeletedFlag(size))
	}
	return nil
}

// RollbackDelete undoes a MarkDelete that has not yet been applied.
func (tp *TablePage) RollbackDelete(slot uint32) {
	size := tp.GetTupleSize(slot)
	if IsDeleted(size) {
		tp.SetTupleSize(slot, UnsetDeletedFlag(size))
	}
}

// ApplyDelete physically reclaims a marked-deleted slot's space,
// compacting the tuples that follow it, and returns the bytes that were
// there for undo purposes (also used to roll back an insert).
func (tp *TablePage) ApplyDelete(slot uint32) []byte {
	common.SH_Assert(slot < tp.GetTupleCount(), "cannot have more slots than tuples")
	offset := tp.GetTupleOffsetAtSlot(slot)
	size := tp.GetTupleSize(slot)
	if IsDeleted(size) {
		size = UnsetDeletedFlag(size)
	}

	deleted := make([]byte, size)
	copy(deleted, tp.pg.Data()[offset:offset+size])

	fsp := tp.GetFreeSpacePointer()
	copy(tp.pg.Data()[fsp+size:], tp.pg.Data()[fsp:offset])
	tp.SetFreeSpacePointer(fsp + size)
	tp.SetTupleSize(slot, 0)
	tp.SetTupleOffsetAtSlot(slot, 0)

	count := tp.GetTupleCount()
	for i := uint32(0); i < count; i++ {
		off := tp.GetTupleOffsetAtSlot(i)
		if tp.GetTupleSize(i) != 0 && off < offset {
			tp.SetTupleOffsetAtSlot(i, off+size)
		}
	}
	return deleted
}

// UpdateTuple replaces a slot's bytes in place. Returns the previous
// bytes for undo, or ErrPageNotFound if the new tuple does not fit and
// the caller must fall back to delete-then-reinsert.
func (tp *TablePage) UpdateTuple(slot uint32, newData []byte) ([]byte, error) {
	if slot >= tp.GetTupleCount() {
		return nil, &common.Error{Code: common.ErrPageNotFound, Msg: "slot out of range"}
	}
	oldSize := tp.GetTupleSize(slot)
	if IsDeleted(oldSize) {
		return nil, &common.Error{Code: common.ErrPageNotFound, Msg: "tuple was deleted"}
	}
	offset := tp.GetTupleOffsetAtSlot(slot)
	oldData := make([]byte, oldSize)
	copy(oldData, tp.pg.Data()[offset:offset+oldSize])

	newSize := uint32(len(newData))
	if tp.freeSpaceRemaining()+oldSize < newSize {
		return oldData, &common.Error{Code: common.ErrPageNotFound, Msg: "not enough space for update"}
	}

	fsp := tp.GetFreeSpacePointer()
	copy(tp.pg.Data()[fsp+oldSize-newSize:], tp.pg.Data()[fsp:offset])
	tp.SetFreeSpacePointer(fsp + oldSize - newSize)
	copy(tp.pg.Data()[offset+oldSize-newSize:], newData)
	tp.SetTupleSize(slot, newSize)

	count := tp.GetTupleCount()
	for i := uint32(0); i < count; i++ {
		off := tp.GetTupleOffsetAtSlot(i)
		if tp.GetTupleSize(i) > 0 && off < offset+oldSize {
			tp.SetTupleOffsetAtSlot(i, off+oldSize-newSize)
		}
	}
	return oldData, nil
}

// GetFirstTupleSlot returns the slot of the first live tuple, if any.
func (tp *TablePage) GetFirstTupleSlot() (uint32, bool) {
	count := tp.GetTupleCount()
	for i := uint32(0); i < count; i++ {
		if !IsDeleted(tp.GetTupleSize(i)) {
			return i, true
		}
	}
	return 0, false
}

// GetNextTupleSlot returns the slot of the first live tuple after slot.
func (tp *TablePage) GetNextTupleSlot(slot uint32) (uint32, bool) {
	count := tp.GetTupleCount()
	for i := slot + 1; i < count; i++ {
		if !IsDeleted(tp.GetTupleSize(i)) {
			return i, true
		}
	}
	return 0, false
}

func IsDeleted(size uint32) bool   { return size&deleteMask == deleteMask || size == 0 }
func SetDeletedFlag(size uint32) uint32   { return size | deleteMask }
func UnsetDeletedFlag(size uint32) uint32 { return size &^ deleteMask }
