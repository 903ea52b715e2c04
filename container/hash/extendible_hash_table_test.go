// this code is grounded on https://github.com/ryogrid/SamehadaDB
// (container/hash/hash_table_test.go), rebuilt against this project's
// Config-based buffer pool constructor, types.Value keys, and page.RID
// values instead of the teacher's bare ints, and directly against
// spec.md §8's S3 (split) and S4 (merge) scenarios.

package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbcore/bustubgo/storage/buffer"
	"github.com/dbcore/bustubgo/storage/disk"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/types"
)

func newTestTable(t *testing.T, poolSize uint32) *ExtendibleHashTable {
	t.Helper()
	dm := disk.NewMemManager()
	bpm := buffer.NewBufferPoolManager(buffer.Config{PoolSize: poolSize}, dm)
	return NewExtendibleHashTable(bpm)
}

func TestHashTableInsertGetRemove(t *testing.T) {
	ht := newTestTable(t, 50)

	for i := int32(0); i < 5; i++ {
		key := types.NewInteger(i)
		ok := ht.Insert(key, page.NewRID(types.PageID(i), 0))
		require.True(t, ok)
		res := ht.GetValue(key)
		require.Len(t, res, 1)
		assert.Equal(t, page.NewRID(types.PageID(i), 0), res[0])
	}

	// Duplicate (key, value) pairs are rejected; duplicate keys with
	// distinct values are accepted (spec.md §3).
	for i := int32(0); i < 5; i++ {
		key := types.NewInteger(i)
		dupSameValue := ht.Insert(key, page.NewRID(types.PageID(i), 0))
		assert.False(t, dupSameValue)
		distinctValue := ht.Insert(key, page.NewRID(types.PageID(i), 1))
		assert.True(t, distinctValue)
		assert.Len(t, ht.GetValue(key), 2)
	}

	missing := ht.GetValue(types.NewInteger(99))
	assert.Empty(t, missing)

	for i := int32(0); i < 5; i++ {
		key := types.NewInteger(i)
		require.True(t, ht.Remove(key, page.NewRID(types.PageID(i), 0)))
		require.True(t, ht.Remove(key, page.NewRID(types.PageID(i), 1)))
		assert.Empty(t, ht.GetValue(key))
	}

	ht.VerifyIntegrity()
}

func TestHashTableSplitGrowsGlobalDepth(t *testing.T) {
	// spec.md §8 S3: filling one bucket past capacity forces a split
	// that raises global_depth to 1; every previously-inserted key must
	// still resolve after the split.
	ht := newTestTable(t, 50)

	var inserted []int32
	for i := int32(0); i < 200; i++ {
		key := types.NewInteger(i)
		ok := ht.Insert(key, page.NewRID(types.PageID(i), 0))
		if !ok {
			break
		}
		inserted = append(inserted, i)
	}
	require.NotEmpty(t, inserted)
	require.Greater(t, len(ht.DumpDirectory()), 1, "directory should have grown past its initial single slot")

	for _, i := range inserted {
		res := ht.GetValue(types.NewInteger(i))
		require.Len(t, res, 1)
		assert.Equal(t, page.NewRID(types.PageID(i), 0), res[0])
	}
}

func TestHashTableRoundTripShrinksDirectory(t *testing.T) {
	// spec.md §8 item 7 / S4: insert N distinct keys, remove them all;
	// the directory shrinks back to global_depth == 0.
	ht := newTestTable(t, 50)

	const n = 300
	for i := int32(0); i < n; i++ {
		require.True(t, ht.Insert(types.NewInteger(i), page.NewRID(types.PageID(i), 0)))
	}
	require.Greater(t, len(ht.DumpDirectory()), 1, "directory should have grown before the removals")
	for i := int32(0); i < n; i++ {
		require.True(t, ht.Remove(types.NewInteger(i), page.NewRID(types.PageID(i), 0)))
	}

	dir := ht.DumpDirectory()
	assert.Len(t, dir, 1, "global_depth should have shrunk back to 0")
	ht.VerifyIntegrity()
}
