// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (lib/storage/access/transaction.go); there is license and copyright
// notice in licenses/samehadadb dir

package concurrency

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/types"
)

// TransactionState tracks a transaction's position in the 2PL protocol
// (spec.md §4.G): Growing while it may still acquire locks, Shrinking once
// it has released its first, then terminal at Committed or Aborted.
type TransactionState int

const (
	Growing TransactionState = iota
	Shrinking
	Committed
	Aborted
)

func (s TransactionState) String() string {
	switch s {
	case Growing:
		return "GROWING"
	case Shrinking:
		return "SHRINKING"
	case Committed:
		return "COMMITTED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsolationLevel selects which lock manager calls a transaction skips
// (spec.md §4.F): READ_UNCOMMITTED never acquires shared locks, the
// others differ only in when shared locks are released.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
)

// WType names the kind of modification a WriteRecord undoes on abort.
type WType int

const (
	WTypeInsert WType = iota
	WTypeUpdate
	WTypeDelete
)

// WriteRecord is one entry of a transaction's undo log. Undo is supplied
// by the table heap operation that appended the record; the transaction
// manager only sequences the rollback, it does not know how to perform
// one itself.
type WriteRecord struct {
	RID      page.RID
	WType    WType
	TableOID uint32
	Undo     func()
}

// IndexWriteRecord undoes a single hash index modification on abort.
type IndexWriteRecord struct {
	RID      page.RID
	WType    WType
	Key      types.Value
	IndexOID uint32
	Undo     func()
}

// Transaction is the per-transaction state the lock manager and
// executors consult: isolation level, held locks, and undo logs.
type Transaction struct {
	txnID            types.TxnID
	state            TransactionState
	isolationLevel   IsolationLevel
	sharedLockSet    mapset.Set[page.RID]
	exclusiveLockSet mapset.Set[page.RID]
	writeSet         []WriteRecord
	indexWriteSet    []IndexWriteRecord
	prevLSN          types.LSN
}

func NewTransaction(txnID types.TxnID, isolationLevel IsolationLevel) *Transaction {
	return &Transaction{
		txnID:            txnID,
		state:            Growing,
		isolationLevel:   isolationLevel,
		sharedLockSet:    mapset.NewSet[page.RID](),
		exclusiveLockSet: mapset.NewSet[page.RID](),
		prevLSN:          types.InvalidLSN,
	}
}

func (t *Transaction) GetTransactionId() types.TxnID      { return t.txnID }
func (t *Transaction) GetState() TransactionState         { return t.state }
func (t *Transaction) SetState(state TransactionState)    { t.state = state }
func (t *Transaction) GetIsolationLevel() IsolationLevel  { return t.isolationLevel }

func (t *Transaction) GetSharedLockSet() mapset.Set[page.RID]    { return t.sharedLockSet }
func (t *Transaction) GetExclusiveLockSet() mapset.Set[page.RID] { return t.exclusiveLockSet }

func (t *Transaction) IsSharedLocked(rid page.RID) bool {
	return t.sharedLockSet.Contains(rid)
}

func (t *Transaction) IsExclusiveLocked(rid page.RID) bool {
	return t.exclusiveLockSet.Contains(rid)
}

func (t *Transaction) AppendWriteRecord(rec WriteRecord) {
	t.writeSet = append(t.writeSet, rec)
}

func (t *Transaction) AppendIndexWriteRecord(rec IndexWriteRecord) {
	t.indexWriteSet = append(t.indexWriteSet, rec)
}

func (t *Transaction) GetWriteSet() []WriteRecord           { return t.writeSet }
func (t *Transaction) GetIndexWriteSet() []IndexWriteRecord { return t.indexWriteSet }

func (t *Transaction) GetPrevLSN() types.LSN   { return t.prevLSN }
func (t *Transaction) SetPrevLSN(lsn types.LSN) { t.prevLSN = lsn }
