// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (container/hash/hash_util.go); there is license and copyright notice in
// licenses/samehadadb dir

package hash

import (
	"github.com/spaolacci/murmur3"
)

// GenHashMurMur is the embedded 64-bit hash function spec.md §4.E refers to,
// truncated to its low 32 bits for use as a directory index.
func GenHashMurMur(key []byte) uint32 {
	return uint32(murmur3.Sum64(key))
}
