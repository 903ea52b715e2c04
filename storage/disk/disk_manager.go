// this code is adapted from https://github.com/ryogrid/SamehadaDB
// there is license and copyright notice in licenses/samehadadb dir

// Package disk is the external collaborator spec.md treats as out of scope:
// it can read and write fixed-size pages by id. The buffer pool is its only
// caller.
package disk

import "github.com/dbcore/bustubgo/types"

// Manager reads and writes fixed-size pages and allocates page ids. It is a
// narrow seam: no interpretation of page contents happens here.
type Manager interface {
	ReadPage(pageID types.PageID, out []byte) error
	WritePage(pageID types.PageID, data []byte) error
	AllocatePage() types.PageID
	DeallocatePage(pageID types.PageID)
	GetNumWrites() uint64
	Size() int64
	ShutDown()
}
