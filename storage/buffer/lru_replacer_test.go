// this code is grounded on https://github.com/ryogrid/SamehadaDB
// (storage/buffer/clock_replacer_test.go), rebuilt against strict LRU
// ordering instead of the teacher's clock policy, and directly against
// spec.md §8's S2 scenario (LRU order).

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUReplacerVictimOrder(t *testing.T) {
	r := NewLRUReplacer(7)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	r.Unpin(4)
	r.Unpin(5)
	r.Unpin(6)
	r.Unpin(1) // already tracked: first-unpin-wins, no reordering
	assert.EqualValues(t, 6, r.Size())

	id, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), id)
	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(2), id)
	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(3), id)

	// 3 was already victimized, so pinning it again is a no-op.
	r.Pin(3)
	r.Pin(4)
	assert.EqualValues(t, 2, r.Size())

	r.Unpin(4)

	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(5), id)
	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(6), id)
	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(4), id)

	_, ok = r.Victim()
	assert.False(t, ok)
}

func TestLRUReplacerPoolSize3(t *testing.T) {
	// spec.md §8 S2: pool size 3, unpin 1, 2, 3 then victim returns 1;
	// after victimizing 1, unpinning 1 again makes the next victim 2.
	r := NewLRUReplacer(3)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	id, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), id)

	r.Unpin(1)

	id, ok = r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(2), id)
}

func TestLRUReplacerCapacity(t *testing.T) {
	r := NewLRUReplacer(2)
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3) // over capacity: dropped, not tracked
	assert.EqualValues(t, 2, r.Size())

	id, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), id)
}

func TestLRUReplacerEmpty(t *testing.T) {
	r := NewLRUReplacer(4)
	_, ok := r.Victim()
	assert.False(t, ok)
}
