// this code is grounded on the original CMU BusTub implementation at
// original_source/src/container/hash/extendible_hash_table.cpp (latch
// crabbing, split/merge algorithm); page layout and buffer pool wiring
// follow github.com/ryogrid/SamehadaDB's Go idiom for this project.

package hash

import (
	"go.uber.org/zap"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/storage/buffer"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/types"
	pair "github.com/notEpsilon/go-pair"
)

// DirectoryEntry is a directory slot's bucket page id paired with that
// bucket's local depth, the unit DumpDirectory snapshots.
type DirectoryEntry = pair.Pair[types.PageID, uint32]

// ExtendibleHashTable is a disk-backed, latch-crabbed extendible hash
// index (spec.md §4.E). Every page it touches is borrowed from the
// buffer pool for the duration of one operation; no frame pointer is
// retained across an unpin.
type ExtendibleHashTable struct {
	bpm             *buffer.BufferPoolManager
	directoryPageID types.PageID
	tableLatch      common.ReaderWriterLatch
	log             *zap.Logger
}

// NewExtendibleHashTable creates a directory page at global depth 0
// pointing at a single empty bucket.
func NewExtendibleHashTable(bpm *buffer.BufferPoolManager) *ExtendibleHashTable {
	var dirPageID types.PageID
	dirRaw := bpm.NewPage(&dirPageID)
	common.SH_Assert(dirRaw != nil, "could not allocate the hash table's directory page")
	dirPage := page.CastAsHashTableDirectoryPage(dirRaw)
	dirPage.SetPageId(dirPageID)
	dirPage.SetGlobalDepth(0)

	var bucketPageID types.PageID
	bucketRaw := bpm.NewPage(&bucketPageID)
	common.SH_Assert(bucketRaw != nil, "could not allocate the hash table's initial bucket page")
	dirPage.SetBucketPageId(0, bucketPageID)
	dirPage.SetLocalDepth(0, 0)

	bpm.UnpinPage(bucketPageID, true)
	bpm.UnpinPage(dirPageID, true)

	return &ExtendibleHashTable{
		bpm:             bpm,
		directoryPageID: dirPageID,
		tableLatch:      common.NewRWLatch(),
		log:             common.Log.Named("hash"),
	}
}

func (h *ExtendibleHashTable) fetchDirectory() *page.HashTableDirectoryPage {
	raw := h.bpm.FetchPage(h.directoryPageID)
	common.SH_Assert(raw != nil, "hash table directory page missing from disk")
	return page.CastAsHashTableDirectoryPage(raw)
}

func (h *ExtendibleHashTable) fetchBucket(pageID types.PageID) *page.HashTableBucketPage {
	raw := h.bpm.FetchPage(pageID)
	common.SH_Assert(raw != nil, "hash table bucket page missing from disk")
	return page.CastAsHashTableBucketPage(raw)
}

// keyIndex hashes key's fixed-width encoding, the representation the
// bucket layer stores, so split-time rehashing agrees with insert-time
// hashing regardless of the original value's type or width.
func (h *ExtendibleHashTable) keyIndex(key types.Value, dirPage *page.HashTableDirectoryPage) uint32 {
	encoded := page.EncodeHashKey(key)
	return GenHashMurMur(encoded[:]) & dirPage.GetGlobalDepthMask()
}

// GetValue returns every RID stored under key.
func (h *ExtendibleHashTable) GetValue(key types.Value) []page.RID {
	h.tableLatch.RLock()
	defer h.tableLatch.RUnlock()

	dirPage := h.fetchDirectory()
	bucketIdx := h.keyIndex(key, dirPage)
	bucketPageID := dirPage.GetBucketPageId(bucketIdx)
	bucketPage := h.fetchBucket(bucketPageID)

	bucketPage.Page().RLatch()
	result := bucketPage.GetValue(page.EncodeHashKey(key))
	bucketPage.Page().RUnlatch()

	h.bpm.UnpinPage(bucketPageID, false)
	h.bpm.UnpinPage(dirPage.GetPageId(), false)
	return result
}

// Insert adds (key, value), splitting buckets as needed. Returns false
// if (key, value) is already present or the table is at MaxBucketDepth.
func (h *ExtendibleHashTable) Insert(key types.Value, value page.RID) bool {
	h.tableLatch.RLock()
	dirPage := h.fetchDirectory()
	bucketIdx := h.keyIndex(key, dirPage)
	bucketPageID := dirPage.GetBucketPageId(bucketIdx)
	bucketPage := h.fetchBucket(bucketPageID)

	bucketPage.Page().WLatch()
	if bucketPage.IsFull() {
		bucketPage.Page().WUnlatch()
		h.bpm.UnpinPage(bucketPageID, false)
		h.bpm.UnpinPage(dirPage.GetPageId(), false)
		h.tableLatch.RUnlock()
		return h.splitInsert(key, value)
	}

	ok := bucketPage.Insert(page.EncodeHashKey(key), value)
	bucketPage.Page().WUnlatch()
	h.bpm.UnpinPage(bucketPageID, ok)
	h.bpm.UnpinPage(dirPage.GetPageId(), false)
	h.tableLatch.RUnlock()
	return ok
}

// splitInsert takes the table write latch and grows the directory and/or
// splits the target bucket until the insert fits, per the extendible
// hashing split algorithm.
func (h *ExtendibleHashTable) splitInsert(key types.Value, value page.RID) bool {
	h.tableLatch.WLock()
	defer h.tableLatch.WUnlock()

	dirPage := h.fetchDirectory()
	defer h.bpm.UnpinPage(dirPage.GetPageId(), true)

	for {
		bucketIdx := h.keyIndex(key, dirPage)
		bucketPageID := dirPage.GetBucketPageId(bucketIdx)
		bucketPage := h.fetchBucket(bucketPageID)
		bucketPage.Page().WLatch()

		if !bucketPage.IsFull() {
			ok := bucketPage.Insert(page.EncodeHashKey(key), value)
			bucketPage.Page().WUnlatch()
			h.bpm.UnpinPage(bucketPageID, ok)
			return ok
		}

		localDepth := dirPage.GetLocalDepth(bucketIdx)
		if localDepth >= common.MaxBucketDepth {
			bucketPage.Page().WUnlatch()
			h.bpm.UnpinPage(bucketPageID, false)
			h.log.Warn("bucket at max depth, insert rejected",
				zap.Int32("bucket_page_id", int32(bucketPageID)),
				zap.Uint32("local_depth", localDepth))
			return false
		}
		if localDepth == dirPage.GetGlobalDepth() {
			dirPage.IncrGlobalDepth()
			h.log.Debug("global depth grew", zap.Uint32("global_depth", dirPage.GetGlobalDepth()))
		}

		var newBucketPageID types.PageID
		newRaw := h.bpm.NewPage(&newBucketPageID)
		common.SH_Assert(newRaw != nil, "could not allocate a split bucket page")
		newBucketPage := page.CastAsHashTableBucketPage(newRaw)

		newLocalDepth := localDepth + 1
		size := dirPage.Size()
		for i := uint32(0); i < size; i++ {
			if dirPage.GetBucketPageId(i) != bucketPageID {
				continue
			}
			dirPage.SetLocalDepth(i, newLocalDepth)
			if i&(uint32(1)<<(newLocalDepth-1)) != 0 {
				dirPage.SetBucketPageId(i, newBucketPageID)
			}
		}

		pairs := bucketPage.GetArrayCopy()
		bucketPage.Reset()
		mask := dirPage.GetGlobalDepthMask()
		for _, pr := range pairs {
			idx := GenHashMurMur(pr.Key[:]) & mask
			if dirPage.GetBucketPageId(idx) == bucketPageID {
				bucketPage.Insert(pr.Key, pr.Value)
			} else {
				newBucketPage.Insert(pr.Key, pr.Value)
			}
		}

		bucketPage.Page().WUnlatch()
		h.bpm.UnpinPage(bucketPageID, true)
		h.bpm.UnpinPage(newBucketPageID, true)
		h.log.Debug("bucket split",
			zap.Int32("bucket_page_id", int32(bucketPageID)),
			zap.Int32("new_bucket_page_id", int32(newBucketPageID)),
			zap.Uint32("local_depth", newLocalDepth))
	}
}

// Remove deletes (key, value) and merges the bucket with its split image
// if it became empty.
func (h *ExtendibleHashTable) Remove(key types.Value, value page.RID) bool {
	h.tableLatch.RLock()
	dirPage := h.fetchDirectory()
	bucketIdx := h.keyIndex(key, dirPage)
	bucketPageID := dirPage.GetBucketPageId(bucketIdx)
	bucketPage := h.fetchBucket(bucketPageID)

	bucketPage.Page().WLatch()
	ok := bucketPage.Remove(page.EncodeHashKey(key), value)
	becameEmpty := ok && bucketPage.IsEmpty()
	bucketPage.Page().WUnlatch()

	h.bpm.UnpinPage(bucketPageID, ok)
	h.bpm.UnpinPage(dirPage.GetPageId(), false)
	h.tableLatch.RUnlock()

	for becameEmpty {
		becameEmpty = h.merge(key)
	}
	return ok
}

// merge attempts to fold an empty bucket into its split image, then
// shrinks the directory as far as the invariants allow. A no-op if the
// bucket was repopulated by a concurrent insert before the merge latch
// was acquired, or if its split image is at a different local depth.
// Returns true when the bucket it merged into is itself empty, so the
// caller can fold that one in turn.
func (h *ExtendibleHashTable) merge(key types.Value) bool {
	h.tableLatch.WLock()
	defer h.tableLatch.WUnlock()

	dirPage := h.fetchDirectory()
	defer h.bpm.UnpinPage(dirPage.GetPageId(), true)

	bucketIdx := h.keyIndex(key, dirPage)
	localDepth := dirPage.GetLocalDepth(bucketIdx)
	if localDepth == 0 {
		return false
	}
	bucketPageID := dirPage.GetBucketPageId(bucketIdx)
	bucketPage := h.fetchBucket(bucketPageID)
	if !bucketPage.IsEmpty() {
		h.bpm.UnpinPage(bucketPageID, false)
		return false
	}

	splitIdx := dirPage.GetSplitImageIndex(bucketIdx)
	splitBucketPageID := dirPage.GetBucketPageId(splitIdx)
	if dirPage.GetLocalDepth(splitIdx) != localDepth || splitBucketPageID == bucketPageID {
		h.bpm.UnpinPage(bucketPageID, false)
		return false
	}

	size := dirPage.Size()
	for i := uint32(0); i < size; i++ {
		if dirPage.GetBucketPageId(i) == bucketPageID || dirPage.GetBucketPageId(i) == splitBucketPageID {
			dirPage.SetBucketPageId(i, splitBucketPageID)
			dirPage.DecrLocalDepth(i)
		}
	}

	h.bpm.UnpinPage(bucketPageID, false)
	h.bpm.DeletePage(bucketPageID)
	h.log.Debug("bucket merged into split image",
		zap.Int32("bucket_page_id", int32(bucketPageID)),
		zap.Int32("split_bucket_page_id", int32(splitBucketPageID)))

	for dirPage.CanShrink() {
		dirPage.DecrGlobalDepth()
	}
	h.log.Debug("global depth after merge", zap.Uint32("global_depth", dirPage.GetGlobalDepth()))

	survivor := h.fetchBucket(splitBucketPageID)
	survivorEmpty := survivor.IsEmpty()
	h.bpm.UnpinPage(splitBucketPageID, false)
	return survivorEmpty
}

// GetDirectoryPageId exposes the directory page for debugging and tests.
func (h *ExtendibleHashTable) GetDirectoryPageId() types.PageID { return h.directoryPageID }

// VerifyIntegrity checks the directory's invariants; panics on violation.
func (h *ExtendibleHashTable) VerifyIntegrity() {
	h.tableLatch.RLock()
	defer h.tableLatch.RUnlock()
	dirPage := h.fetchDirectory()
	dirPage.VerifyIntegrity()
	h.bpm.UnpinPage(dirPage.GetPageId(), false)
}

// DumpDirectory snapshots every directory slot as a (bucket page id, local
// depth) DirectoryEntry, for debugging and tests; never consulted by the
// read/write path itself so a stale snapshot can never corrupt a lookup.
func (h *ExtendibleHashTable) DumpDirectory() []DirectoryEntry {
	h.tableLatch.RLock()
	defer h.tableLatch.RUnlock()
	dirPage := h.fetchDirectory()
	defer h.bpm.UnpinPage(dirPage.GetPageId(), false)

	size := dirPage.Size()
	entries := make([]DirectoryEntry, size)
	for i := uint32(0); i < size; i++ {
		entries[i] = *pair.New(dirPage.GetBucketPageId(i), dirPage.GetLocalDepth(i))
	}
	return entries
}
