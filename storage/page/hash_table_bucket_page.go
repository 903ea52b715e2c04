// this code is grounded on github.com/ryogrid/SamehadaDB's
// storage/page/hash_table_block_page.go (occupied/readable bitmap layout)
// and on CMU BusTub's GenericKey<N> fixed-width key encoding used by
// original_source/src/container/hash/extendible_hash_table.cpp.

package page

import (
	"encoding/binary"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

const (
	bucketPairSize    = common.BucketKeySize + 8
	bucketBitmapBytes = (common.BucketArraySize-1)/8 + 1
	bucketArrayOffset = bucketBitmapBytes * 2
)

// HashKey is the fixed-width encoding a Value is reduced to for storage in
// a bucket slot, following CMU BusTub's GenericKey<N> approach: wide enough
// for every fixed-size type, truncating long varchars.
type HashKey [common.BucketKeySize]byte

func EncodeHashKey(v types.Value) HashKey {
	var k HashKey
	raw := v.Serialize()
	n := len(raw)
	if n > len(k) {
		n = len(k)
	}
	copy(k[:], raw[:n])
	return k
}

func encodeRID(rid RID) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(rid.GetPageId()))
	binary.LittleEndian.PutUint32(b[4:8], rid.GetSlotNum())
	return b
}

func decodeRID(b []byte) RID {
	pid := types.PageID(binary.LittleEndian.Uint32(b[0:4]))
	slot := binary.LittleEndian.Uint32(b[4:8])
	return NewRID(pid, slot)
}

// HashTableBucketPage is the bit-exact view spec.md §6 describes: an
// occupied bitmap, a readable bitmap, then BucketArraySize (key, value)
// slots packed contiguously.
type HashTableBucketPage struct {
	pg *Page
}

func CastAsHashTableBucketPage(pg *Page) *HashTableBucketPage {
	return &HashTableBucketPage{pg: pg}
}

// Page returns the underlying raw page, for latching and pin bookkeeping.
func (b *HashTableBucketPage) Page() *Page { return b.pg }

func (b *HashTableBucketPage) isOccupied(i uint32) bool {
	return b.pg.Data()[i/8]&(1<<(i%8)) != 0
}

func (b *HashTableBucketPage) setOccupied(i uint32) {
	b.pg.Data()[i/8] |= 1 << (i % 8)
}

func (b *HashTableBucketPage) isReadable(i uint32) bool {
	return b.pg.Data()[bucketBitmapBytes+i/8]&(1<<(i%8)) != 0
}

func (b *HashTableBucketPage) setReadable(i uint32) {
	b.pg.Data()[bucketBitmapBytes+i/8] |= 1 << (i % 8)
}

func (b *HashTableBucketPage) clearReadable(i uint32) {
	b.pg.Data()[bucketBitmapBytes+i/8] &^= 1 << (i % 8)
}

func (b *HashTableBucketPage) slotOffset(i uint32) uint32 {
	return uint32(bucketArrayOffset) + i*uint32(bucketPairSize)
}

func (b *HashTableBucketPage) keyAt(i uint32) HashKey {
	var k HashKey
	copy(k[:], b.pg.Data()[b.slotOffset(i):])
	return k
}

func (b *HashTableBucketPage) valueAt(i uint32) RID {
	off := b.slotOffset(i) + common.BucketKeySize
	return decodeRID(b.pg.Data()[off : off+8])
}

func (b *HashTableBucketPage) writeSlot(i uint32, key HashKey, value RID) {
	off := b.slotOffset(i)
	b.pg.Copy(off, key[:])
	ridBytes := encodeRID(value)
	b.pg.Copy(off+common.BucketKeySize, ridBytes[:])
}

// GetValue returns every value stored under key.
func (b *HashTableBucketPage) GetValue(key HashKey) []RID {
	var result []RID
	for i := uint32(0); i < common.BucketArraySize; i++ {
		if b.isReadable(i) && b.keyAt(i) == key {
			result = append(result, b.valueAt(i))
		}
	}
	return result
}

// Insert rejects a duplicate (key, value) pair; duplicate keys with
// distinct values are accepted (spec.md §3).
func (b *HashTableBucketPage) Insert(key HashKey, value RID) bool {
	firstFree := int64(-1)
	for i := uint32(0); i < common.BucketArraySize; i++ {
		if b.isReadable(i) {
			if b.keyAt(i) == key && b.valueAt(i) == value {
				return false
			}
			continue
		}
		if firstFree == -1 {
			firstFree = int64(i)
		}
	}
	if firstFree == -1 {
		return false
	}
	slot := uint32(firstFree)
	b.writeSlot(slot, key, value)
	b.setOccupied(slot)
	b.setReadable(slot)
	return true
}

// Remove deletes the (key, value) pair if present, returning whether it was
// found.
func (b *HashTableBucketPage) Remove(key HashKey, value RID) bool {
	for i := uint32(0); i < common.BucketArraySize; i++ {
		if b.isReadable(i) && b.keyAt(i) == key && b.valueAt(i) == value {
			b.clearReadable(i)
			return true
		}
	}
	return false
}

func (b *HashTableBucketPage) IsFull() bool {
	return b.NumReadable() == common.BucketArraySize
}

func (b *HashTableBucketPage) IsEmpty() bool {
	return b.NumReadable() == 0
}

func (b *HashTableBucketPage) NumReadable() uint32 {
	var n uint32
	for i := uint32(0); i < common.BucketArraySize; i++ {
		if b.isReadable(i) {
			n++
		}
	}
	return n
}

// GetArrayCopy returns every currently-readable (key, value) pair, used by
// split to redistribute a bucket's contents.
func (b *HashTableBucketPage) GetArrayCopy() []HashPair {
	pairs := make([]HashPair, 0, b.NumReadable())
	for i := uint32(0); i < common.BucketArraySize; i++ {
		if b.isReadable(i) {
			pairs = append(pairs, HashPair{Key: b.keyAt(i), Value: b.valueAt(i)})
		}
	}
	return pairs
}

// Reset clears both bitmaps, emptying the bucket without touching its
// backing page identity.
func (b *HashTableBucketPage) Reset() {
	data := b.pg.Data()
	for i := 0; i < bucketArrayOffset; i++ {
		data[i] = 0
	}
}

// HashPair is a (key, value) pair as returned by GetArrayCopy.
type HashPair struct {
	Key   HashKey
	Value RID
}
