// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import (
	"time"
)

var CycleDetectionInterval time.Duration
var EnableLogging bool = false
var LogTimeout time.Duration
var EnableDebug bool = false

const (
	// InvalidPageID is the reserved sentinel for "no page".
	InvalidPageID = -1
	// InvalidTxnID is the reserved sentinel for "no transaction".
	InvalidTxnID = -1
	// InvalidLSN is the reserved sentinel for "no log record written yet".
	InvalidLSN = -1
	// HeaderPageID is the conventional id of the file's reserved header page.
	HeaderPageID = 0
	// PageSize is the fixed size, in bytes, of every page.
	PageSize = 4096
	// LogBufferPoolSize is the number of pages backing the log buffer.
	LogBufferPoolSize = 32
	LogBufferSize      = (LogBufferPoolSize + 1) * PageSize

	// MaxDirectorySize is the compile-time ceiling on the number of
	// directory slots a hash directory page can hold.
	MaxDirectorySize = 512
	// MaxBucketDepth is the ceiling on a bucket's local depth. A split
	// attempted on a bucket already at this depth fails.
	MaxBucketDepth = 9

	// BucketKeySize is the fixed width a hash index key is encoded to
	// inside a bucket page, following CMU BusTub's GenericKey<N> approach:
	// wide enough for every fixed-size Value type; varchar keys longer
	// than this are truncated.
	BucketKeySize = 24
	// ridSize is the encoded width of a page.RID value slot.
	ridSize = 8
	// BucketArraySize is the number of (key, value) slots a hash bucket
	// page holds, derived the same way the teacher derives BlockArraySize:
	// pairSize*n + 2*ceil(n/8) <= PageSize, approximated by charging each
	// pair pairSize bytes plus two bitmap bits, i.e. (4*pairSize+1)/4 bytes.
	BucketArraySize = (4 * PageSize) / (4*(BucketKeySize+ridSize) + 1)
)

type SlotOffset uintptr
