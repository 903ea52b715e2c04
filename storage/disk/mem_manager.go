package disk

import (
	"io"
	"sync"

	"github.com/dsnet/golib/memfile"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

// MemManager is a Manager backed by an in-memory file, used by package
// tests across the module instead of a real temp file (SPEC_FULL.md §10.4).
type MemManager struct {
	mu         sync.Mutex
	file       *memfile.File
	nextPageID types.PageID
	numWrites  uint64
	size       int64
}

func NewMemManager() *MemManager {
	return &MemManager{file: memfile.New(nil)}
}

func (d *MemManager) WritePage(pageID types.PageID, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	offset := int64(pageID) * common.PageSize
	n, err := d.file.WriteAt(data, offset)
	if err != nil {
		return err
	}
	if offset+int64(n) > d.size {
		d.size = offset + int64(n)
	}
	d.numWrites++
	return nil
}

func (d *MemManager) ReadPage(pageID types.PageID, out []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	offset := int64(pageID) * common.PageSize
	n, err := d.file.ReadAt(out, offset)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

func (d *MemManager) AllocatePage() types.PageID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextPageID
	d.nextPageID++
	return id
}

func (d *MemManager) DeallocatePage(pageID types.PageID) {}

func (d *MemManager) GetNumWrites() uint64 { return d.numWrites }
func (d *MemManager) Size() int64          { return d.size }
func (d *MemManager) ShutDown()            {}
