// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/page/rid.go, itself from https://github.com/brunocalza/go-bustub)
// there is license and copyright notice in licenses/samehadadb dir

package page

import "github.com/dbcore/bustubgo/types"

// RID is the record identifier (page_id, slot) spec.md §3 names. It is a
// value type so it can key maps directly (lock table, write sets).
type RID struct {
	pageID types.PageID
	slot   uint32
}

func NewRID(pageID types.PageID, slot uint32) RID {
	return RID{pageID: pageID, slot: slot}
}

func (r RID) GetPageId() types.PageID { return r.pageID }
func (r RID) GetSlotNum() uint32      { return r.slot }

func (r *RID) Set(pageID types.PageID, slot uint32) {
	r.pageID = pageID
	r.slot = slot
}
