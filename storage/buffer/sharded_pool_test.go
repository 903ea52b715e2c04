// this code is grounded on the original CMU BusTub
// ParallelBufferPoolManager (original_source/src/buffer), testing that a
// ShardedPool routes pages to the instance matching pageID % num_instances
// and that each instance's own page ids stay congruent to its index.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbcore/bustubgo/storage/disk"
	"github.com/dbcore/bustubgo/types"
)

func TestShardedPoolRoutesByPageIDModulo(t *testing.T) {
	dm := disk.NewMemManager()
	sp := NewShardedPool(12, 3, dm)

	ids := make([]types.PageID, 6)
	for i := range ids {
		var id types.PageID
		pg := sp.NewPage(&id)
		require.NotNil(t, pg)
		ids[i] = id
	}

	for _, id := range ids {
		want := sp.instances[uint32(id)%3]
		assert.Same(t, want, sp.instanceFor(id))
		assert.Contains(t, want.pageTable, id, "page %d should have been allocated by instance %d", id, uint32(id)%3)

		pg := sp.FetchPage(id)
		require.NotNil(t, pg)
		sp.UnpinPage(id, false)
		sp.UnpinPage(id, false)
	}
}

func TestShardedPoolPoolSizeIsCombined(t *testing.T) {
	dm := disk.NewMemManager()
	sp := NewShardedPool(12, 3, dm)
	assert.EqualValues(t, 12, sp.PoolSize())
}

func TestShardedPoolDeleteAndFlush(t *testing.T) {
	dm := disk.NewMemManager()
	sp := NewShardedPool(9, 3, dm)

	var id types.PageID
	pg := sp.NewPage(&id)
	require.NotNil(t, pg)
	pg.Copy(0, []byte("x"))
	require.True(t, sp.UnpinPage(id, true))
	require.True(t, sp.FlushPage(id))
	require.True(t, sp.DeletePage(id))
}
