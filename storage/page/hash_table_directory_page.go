// this code is grounded on the original CMU BusTub implementation
// (original_source/src/container/hash/extendible_hash_table.cpp and its
// header's HashTableDirectoryPage) and on the byte-offset accessor style of
// github.com/ryogrid/SamehadaDB's storage/access/table_page.go.

package page

import (
	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

const (
	dirOffsetPageID      = uint32(0)
	dirOffsetLSN         = uint32(4)
	dirOffsetGlobalDepth = uint32(8)
	dirOffsetLocalDepths = uint32(12)
	dirOffsetBucketIDs   = dirOffsetLocalDepths + common.MaxDirectorySize
)

// HashTableDirectoryPage is the bit-exact view over a page's bytes described
// in spec.md §6: page_id, lsn, global_depth, then the local_depth and
// bucket_page_id arrays, one entry per directory slot up to MaxDirectorySize.
type HashTableDirectoryPage struct {
	pg *Page
}

func CastAsHashTableDirectoryPage(pg *Page) *HashTableDirectoryPage {
	return &HashTableDirectoryPage{pg: pg}
}

// Page returns the underlying raw page, for latching and pin bookkeeping.
func (d *HashTableDirectoryPage) Page() *Page { return d.pg }

func (d *HashTableDirectoryPage) GetPageId() types.PageID {
	return types.NewPageIDFromBytes(d.pg.Data()[dirOffsetPageID:])
}

func (d *HashTableDirectoryPage) SetPageId(id types.PageID) {
	d.pg.Copy(dirOffsetPageID, id.Serialize())
}

func (d *HashTableDirectoryPage) GetGlobalDepth() uint32 {
	return uint32(types.NewUInt32FromBytes(d.pg.Data()[dirOffsetGlobalDepth:]))
}

func (d *HashTableDirectoryPage) SetGlobalDepth(depth uint32) {
	d.pg.Copy(dirOffsetGlobalDepth, types.UInt32(depth).Serialize())
}

// GetGlobalDepthMask returns (1<<global_depth)-1, the mask spec.md §4.E
// applies to a key's hash to compute its directory index.
func (d *HashTableDirectoryPage) GetGlobalDepthMask() uint32 {
	return (uint32(1) << d.GetGlobalDepth()) - 1
}

// Size returns 2^global_depth, the number of slots currently in use.
func (d *HashTableDirectoryPage) Size() uint32 {
	return uint32(1) << d.GetGlobalDepth()
}

func (d *HashTableDirectoryPage) IncrGlobalDepth() {
	common.SH_Assert(d.GetGlobalDepth() < common.MaxBucketDepth, "global depth already at MaxBucketDepth")
	oldSize := d.Size()
	d.SetGlobalDepth(d.GetGlobalDepth() + 1)
	// Doubling the directory: every new slot copies the bucket id and local
	// depth of its lower-half counterpart (spec.md §4.E split_insert).
	for i := uint32(0); i < oldSize; i++ {
		d.SetBucketPageId(i+oldSize, d.GetBucketPageId(i))
		d.SetLocalDepth(i+oldSize, d.GetLocalDepth(i))
	}
}

func (d *HashTableDirectoryPage) DecrGlobalDepth() {
	common.SH_Assert(d.GetGlobalDepth() > 0, "global depth already 0")
	d.SetGlobalDepth(d.GetGlobalDepth() - 1)
}

func (d *HashTableDirectoryPage) GetLocalDepth(idx uint32) uint32 {
	return uint32(d.pg.Data()[dirOffsetLocalDepths+idx])
}

func (d *HashTableDirectoryPage) SetLocalDepth(idx uint32, depth uint32) {
	d.pg.Data()[dirOffsetLocalDepths+idx] = byte(depth)
}

func (d *HashTableDirectoryPage) IncrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.GetLocalDepth(idx)+1)
}

func (d *HashTableDirectoryPage) DecrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.GetLocalDepth(idx)-1)
}

// GetLocalDepthMask returns (1<<local_depth(idx))-1.
func (d *HashTableDirectoryPage) GetLocalDepthMask(idx uint32) uint32 {
	return (uint32(1) << d.GetLocalDepth(idx)) - 1
}

func (d *HashTableDirectoryPage) GetBucketPageId(idx uint32) types.PageID {
	off := dirOffsetBucketIDs + idx*4
	return types.NewPageIDFromBytes(d.pg.Data()[off:])
}

func (d *HashTableDirectoryPage) SetBucketPageId(idx uint32, id types.PageID) {
	off := dirOffsetBucketIDs + idx*4
	d.pg.Copy(off, id.Serialize())
}

// GetSplitImageIndex returns the directory slot that is idx's split image
// at idx's own local depth: idx with the (local_depth-1)-th bit flipped.
func (d *HashTableDirectoryPage) GetSplitImageIndex(idx uint32) uint32 {
	localDepth := d.GetLocalDepth(idx)
	if localDepth == 0 {
		return idx
	}
	return idx ^ (uint32(1) << (localDepth - 1))
}

// CanShrink reports whether every in-use slot has local_depth strictly less
// than global_depth, i.e. the directory can lose its top bit.
func (d *HashTableDirectoryPage) CanShrink() bool {
	gd := d.GetGlobalDepth()
	if gd == 0 {
		return false
	}
	for i := uint32(0); i < d.Size(); i++ {
		if d.GetLocalDepth(i) == gd {
			return false
		}
	}
	return true
}

// VerifyIntegrity walks the directory and panics on the first invariant
// violation spec.md §8 item 5 and §3's directory invariants describe.
// Ported from the original's debug-only VerifyIntegrity, used by tests.
func (d *HashTableDirectoryPage) VerifyIntegrity() {
	curIdxToCount := make(map[types.PageID]uint32)
	curIdxToDepth := make(map[types.PageID]uint32)
	for curIdx := uint32(0); curIdx < d.Size(); curIdx++ {
		curBucketPageId := d.GetBucketPageId(curIdx)
		curLocalDepth := d.GetLocalDepth(curIdx)
		common.SH_Assert(curLocalDepth <= d.GetGlobalDepth(), "local depth must not exceed global depth")

		curIdxToCount[curBucketPageId]++
		if depth, ok := curIdxToDepth[curBucketPageId]; ok {
			common.SH_Assert(depth == curLocalDepth, "the same bucket must have a single local depth")
		} else {
			curIdxToDepth[curBucketPageId] = curLocalDepth
		}

		imageIdx := d.GetSplitImageIndex(curIdx)
		if imageIdx != curIdx {
			imageBucketPageId := d.GetBucketPageId(imageIdx)
			imageLocalDepth := d.GetLocalDepth(imageIdx)
			if curBucketPageId != imageBucketPageId {
				common.SH_Assert(curLocalDepth == imageLocalDepth, "pre-split images must share a local depth")
			}
		}
	}
	for bucketPageId, count := range curIdxToCount {
		depth := curIdxToDepth[bucketPageId]
		common.SH_Assert(count == uint32(1)<<(d.GetGlobalDepth()-depth),
			"slot fan-in for a bucket must equal 2^(global_depth-local_depth)")
	}
}
