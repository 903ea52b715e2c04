// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (lib/storage/page/page.go, itself from https://github.com/brunocalza/go-bustub)
// there is license and copyright notice in licenses/samehadadb dir

// Package page holds the fixed-size Page wrapper and the typed views over
// its bytes (hash directory/bucket pages, the table's slotted page). Field
// offsets are bit-exact per spec.md §6; no aliasing is allowed beyond a
// fetch/unpin pair (spec.md §9).
package page

import (
	"sync/atomic"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

const (
	SizePageHeader = 8
	OffsetLSN      = 4
)

// Page is the in-memory wrapper for a disk page: a fixed byte buffer plus
// the pin count, dirty bit, and latch the buffer pool needs.
type Page struct {
	id       types.PageID
	pinCount int32
	isDirty  bool
	data     *[common.PageSize]byte
	latch    common.ReaderWriterLatch
}

func New(id types.PageID, isDirty bool, data *[common.PageSize]byte) *Page {
	return &Page{id: id, pinCount: 1, isDirty: isDirty, data: data, latch: common.NewRWLatch()}
}

func NewEmpty(id types.PageID) *Page {
	return &Page{id: id, pinCount: 1, data: &[common.PageSize]byte{}, latch: common.NewRWLatch()}
}

func (p *Page) IncPinCount() { atomic.AddInt32(&p.pinCount, 1) }
func (p *Page) DecPinCount() { atomic.AddInt32(&p.pinCount, -1) }
func (p *Page) PinCount() int32 { return atomic.LoadInt32(&p.pinCount) }

func (p *Page) GetPageId() types.PageID { return p.id }
func (p *Page) SetPageId(id types.PageID) { p.id = id }

func (p *Page) Data() *[common.PageSize]byte { return p.data }

func (p *Page) SetIsDirty(isDirty bool) { p.isDirty = isDirty }
func (p *Page) IsDirty() bool           { return p.isDirty }

// Copy overwrites data starting at offset; used by the typed page views to
// write a field into the underlying buffer.
func (p *Page) Copy(offset uint32, data []byte) {
	copy(p.data[offset:], data)
}

// Reset zeroes the page's contents and resets bookkeeping, used by the
// buffer pool when a frame is returned to the free list.
func (p *Page) Reset() {
	for i := range p.data {
		p.data[i] = 0
	}
	p.id = types.InvalidPageID
	p.pinCount = 0
	p.isDirty = false
}

func (p *Page) GetLSN() types.LSN {
	return types.NewLSNFromBytes(p.data[OffsetLSN : OffsetLSN+4])
}

func (p *Page) SetLSN(lsn types.LSN) {
	p.Copy(OffsetLSN, lsn.Serialize())
}

func (p *Page) WLatch()   { p.latch.WLock() }
func (p *Page) WUnlatch() { p.latch.WUnlock() }
func (p *Page) RLatch()   { p.latch.RLock() }
func (p *Page) RUnlatch() { p.latch.RUnlock() }
