// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (itself derived from https://github.com/brunocalza/go-bustub)
// there is license and copyright notice in licenses/samehadadb dir

package disk

import (
	"errors"
	"io"
	"os"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

// FileManager is the on-disk Manager. Page 0 is reserved for header/metadata
// by convention (spec.md §6); every other page is anonymous.
type FileManager struct {
	db         *os.File
	fileName   string
	nextPageID types.PageID
	numWrites  uint64
	size       int64
}

func NewFileManager(dbFilename string) (*FileManager, error) {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := info.Size()
	nPages := fileSize / common.PageSize

	return &FileManager{
		db:         file,
		fileName:   dbFilename,
		nextPageID: types.PageID(nPages),
		size:       fileSize,
	}, nil
}

func (d *FileManager) WritePage(pageID types.PageID, data []byte) error {
	offset := int64(pageID) * common.PageSize
	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	n, err := d.db.Write(data)
	if err != nil {
		return err
	}
	if n != common.PageSize {
		return errors.New("disk: short write, bytes written not equal to page size")
	}
	if offset+int64(n) > d.size {
		d.size = offset + int64(n)
	}
	d.numWrites++
	return d.db.Sync()
}

func (d *FileManager) ReadPage(pageID types.PageID, out []byte) error {
	offset := int64(pageID) * common.PageSize
	info, err := d.db.Stat()
	if err != nil {
		return err
	}
	if offset >= info.Size() {
		// unwritten page: return a zeroed buffer, mirroring first-touch semantics.
		for i := range out {
			out[i] = 0
		}
		return nil
	}
	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	n, err := d.db.Read(out)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

func (d *FileManager) AllocatePage() types.PageID {
	id := d.nextPageID
	d.nextPageID++
	return id
}

// DeallocatePage is a bookkeeping hint only; the file manager does not
// reclaim disk space (spec.md §4.C).
func (d *FileManager) DeallocatePage(pageID types.PageID) {}

func (d *FileManager) GetNumWrites() uint64 { return d.numWrites }
func (d *FileManager) Size() int64          { return d.size }

func (d *FileManager) ShutDown() { d.db.Close() }

// RemoveDBFile deletes the backing file; only safe after ShutDown.
func (d *FileManager) RemoveDBFile() { os.Remove(d.fileName) }
