// Package autoimport provides support for importing transactions from
// bank files.
package autoimport

import (
  "fmt"
  "io"
  "time"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/autoimport/seqdb"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/finpatterns/fin/patterns/patternsdb"
  "github.com/keep94/finpatterns/fin/tenants"
)

// Loader wraps the Load method which reads a batch of transactions from a
// bank file. Banks provide transactions as CSV exports, MT940 files, and
// other formats. In a typical application, there will be one Loader
// instance for each type of file supported.
//
// In the Load method, tenantId and acct identify the tenant and bank
// account for which transactions are being loaded; r is where the file is
// read. Only transactions posted on or after startDate are read into the
// batch. Load returns the read transactions as a Batch instance.
type Loader interface {
  Load(
      tenantId int64,
      acct string,
      r io.Reader,
      startDate time.Time) (Batch, error)
}

// Batch represents a group of transactions read from a file using a
// Loader instance. Batch instances are immutable.
type Batch interface {
  // Transactions returns the transactions in the batch. The returned
  // transactions are copies that the caller can safely modify.
  Transactions() []*fin.Transaction

  // SkipProcessed returns a new Batch like this one that contains only
  // transactions whose bank sequence ids have not already been processed.
  // t is the database transaction; nil means run in a separate
  // transaction.
  SkipProcessed(t db.Transaction) (Batch, error)

  // MarkProcessed marks all the transactions in this Batch as processed.
  // t is the database transaction; nil means run in a separate
  // transaction.
  MarkProcessed(t db.Transaction) error

  // Len returns the number of transactions in this batch.
  Len() int
}

// NewBatch creates a Batch over transactions whose processed state lives
// in store. All transactions must carry the tenant, bank account, and
// bank sequence id they were loaded with.
func NewBatch(
    store seqdb.Store,
    tenantId int64,
    acct string,
    transactions []*fin.Transaction) Batch {
  return &seqBatch{
      store: store,
      tenantId: tenantId,
      acct: acct,
      transactions: transactions}
}

// SaveResult reports what SaveTransactions did.
type SaveResult struct {
  // SavedCount is the number of transactions written.
  SavedCount int

  // DuplicateCount is the number of transactions skipped because their
  // bank sequence ids were already processed.
  DuplicateCount int
}

// SaveTransactionsStore is what SaveTransactions needs from the
// persistence layer.
type SaveTransactionsStore interface {
  findb.AddTransactionsRunner
  findb.AccountOwnersRunner
  findb.TenantByIdRunner
}

// SaveTransactions persists batch for tenantId after validating that
// every bank account in the batch is owned by tenantId. Transactions
// whose bank sequence ids were already processed are skipped. The writes,
// the processed-id bookkeeping, and the pattern cache invalidation for
// tenantId all happen in a single database transaction: a failed save
// leaves both the store and the cache untouched. On ownership mismatch
// SaveTransactions returns a *tenants.MismatchError and saves nothing.
func SaveTransactions(
    doer db.Doer,
    store SaveTransactionsStore,
    cache patternsdb.Invalidater,
    tenantId int64,
    batch Batch) (result SaveResult, err error) {
  err = doer.Do(func(t db.Transaction) error {
    transactions := batch.Transactions()
    if err := tenants.Validate(t, store, tenantId, transactions); err != nil {
      return err
    }
    for _, trx := range transactions {
      if trx.Amount == 0 {
        return fmt.Errorf(
            "autoimport: Zero amount in transaction %s on %s",
            trx.SeqId, trx.Acct)
      }
    }
    unprocessed, err := batch.SkipProcessed(t)
    if err != nil {
      return err
    }
    result.DuplicateCount = batch.Len() - unprocessed.Len()
    if unprocessed.Len() == 0 {
      return nil
    }
    toSave := unprocessed.Transactions()
    if err := store.AddTransactions(t, toSave); err != nil {
      return err
    }
    if err := unprocessed.MarkProcessed(t); err != nil {
      return err
    }
    result.SavedCount = len(toSave)
    return cache.Invalidate(t, tenantId)
  })
  if err != nil {
    result = SaveResult{}
  }
  return
}

type seqBatch struct {
  store seqdb.Store
  tenantId int64
  acct string
  transactions []*fin.Transaction
}

func (s *seqBatch) Transactions() []*fin.Transaction {
  result := make([]*fin.Transaction, len(s.transactions))
  for i := range s.transactions {
    trx := *s.transactions[i]
    result[i] = &trx
  }
  return result
}

func (s *seqBatch) Len() int {
  return len(s.transactions)
}

func (s *seqBatch) SkipProcessed(t db.Transaction) (Batch, error) {
  existingSeqIds, err := s.store.Find(t, s.tenantId, s.acct, s.toSeqIdSet())
  if err != nil {
    return nil, err
  }
  if existingSeqIds == nil {
    return s, nil
  }
  result := make([]*fin.Transaction, len(s.transactions))
  idx := 0
  for _, trx := range s.transactions {
    if !existingSeqIds[trx.SeqId] {
      result[idx] = trx
      idx++
    }
  }
  return &seqBatch{
      store: s.store,
      tenantId: s.tenantId,
      acct: s.acct,
      transactions: result[:idx]}, nil
}

func (s *seqBatch) MarkProcessed(t db.Transaction) error {
  return s.store.Add(t, s.tenantId, s.acct, s.toSeqIdSet())
}

func (s *seqBatch) toSeqIdSet() seqdb.SeqIdSet {
  seqIdSet := make(seqdb.SeqIdSet, len(s.transactions))
  for _, trx := range s.transactions {
    seqIdSet[trx.SeqId] = true
  }
  return seqIdSet
}
