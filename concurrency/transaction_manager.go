// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (lib/storage/access/transaction_manager.go), simplified to this
// project's scope: no write-ahead log, and undo is driven by closures
// the table heap attaches to each WriteRecord rather than a switch over
// write types, since there is no catalog-mediated index set to consult
// generically.

package concurrency

import (
	"sync"

	"github.com/dbcore/bustubgo/common"
	"github.com/dbcore/bustubgo/types"
)

// TransactionManager begins, commits, and aborts transactions, and owns
// the global transaction latch used to block all transactions during a
// checkpoint-like operation.
type TransactionManager struct {
	nextTxnID      types.TxnID
	lockManager    *LockManager
	globalTxnLatch common.ReaderWriterLatch
	mutex          sync.Mutex
	txnMap         map[types.TxnID]*Transaction
}

func NewTransactionManager(lockManager *LockManager) *TransactionManager {
	return &TransactionManager{
		lockManager:    lockManager,
		globalTxnLatch: common.NewRWLatch(),
		txnMap:         make(map[types.TxnID]*Transaction),
	}
}

func (tm *TransactionManager) Begin(isolationLevel IsolationLevel) *Transaction {
	tm.globalTxnLatch.RLock()

	tm.mutex.Lock()
	tm.nextTxnID++
	txn := NewTransaction(tm.nextTxnID, isolationLevel)
	tm.txnMap[txn.GetTransactionId()] = txn
	tm.mutex.Unlock()

	return txn
}

// Commit releases every lock txn holds without undoing any of its
// writes.
func (tm *TransactionManager) Commit(txn *Transaction) {
	txn.SetState(Committed)
	tm.mutex.Lock()
	tm.lockManager.ReleaseAllLocks(txn)
	tm.mutex.Unlock()
	tm.globalTxnLatch.RUnlock()
}

// Abort undoes every write in txn's undo log, most recent first, then
// releases its locks.
func (tm *TransactionManager) Abort(txn *Transaction) {
	writeSet := txn.GetWriteSet()
	for i := len(writeSet) - 1; i >= 0; i-- {
		if writeSet[i].Undo != nil {
			writeSet[i].Undo()
		}
	}
	indexSet := txn.GetIndexWriteSet()
	for i := len(indexSet) - 1; i >= 0; i-- {
		if indexSet[i].Undo != nil {
			indexSet[i].Undo()
		}
	}

	txn.SetState(Aborted)
	tm.mutex.Lock()
	tm.lockManager.ReleaseAllLocks(txn)
	tm.mutex.Unlock()
	tm.globalTxnLatch.RUnlock()
}

func (tm *TransactionManager) BlockAllTransactions() { tm.globalTxnLatch.WLock() }
func (tm *TransactionManager) ResumeTransactions()   { tm.globalTxnLatch.WUnlock() }

func (tm *TransactionManager) GetTransaction(txnID types.TxnID) *Transaction {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	return tm.txnMap[txnID]
}
