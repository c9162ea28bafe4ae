package autoimport_test

import (
  "testing"

  "github.com/keep94/appcommon/date_util"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/autoimport"
  seq_sqlite "github.com/keep94/finpatterns/fin/autoimport/seqdb/for_sqlite"
  "github.com/keep94/finpatterns/fin/consumers"
  "github.com/keep94/finpatterns/fin/findb/for_sqlite"
  "github.com/keep94/finpatterns/fin/findb/sqlite_setup"
  pat_sqlite "github.com/keep94/finpatterns/fin/patterns/patternsdb/for_sqlite"
  "github.com/keep94/finpatterns/fin/tenants"
  "github.com/keep94/gosqlite/sqlite"
  "github.com/stretchr/testify/assert"
)

func TestSaveTransactions(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)

  batch := env.newBatch(1, "NL01", newTransactions())
  result, err := autoimport.SaveTransactions(
      env.doer, env.store, env.cache, 1, batch)
  assert.Nil(err)
  assert.Equal(2, result.SavedCount)
  assert.Equal(0, result.DuplicateCount)

  buffer := consumers.NewTransactionBuffer(10)
  assert.Nil(env.store.Transactions(nil, 1, nil, buffer))
  assert.Len(buffer.Transactions(), 2)

  // Saving the same batch again writes nothing.
  batch = env.newBatch(1, "NL01", newTransactions())
  result, err = autoimport.SaveTransactions(
      env.doer, env.store, env.cache, 1, batch)
  assert.Nil(err)
  assert.Equal(0, result.SavedCount)
  assert.Equal(2, result.DuplicateCount)

  buffer = consumers.NewTransactionBuffer(10)
  assert.Nil(env.store.Transactions(nil, 1, nil, buffer))
  assert.Len(buffer.Transactions(), 2)
}

func TestSaveTransactionsWrongTenant(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)

  transactions := newTransactions()
  transactions[1].Acct = "NL02"
  batch := env.newBatch(1, "NL01", transactions)
  _, err := autoimport.SaveTransactions(
      env.doer, env.store, env.cache, 1, batch)
  mismatch, ok := err.(*tenants.MismatchError)
  if !ok {
    t.Fatalf("Expected MismatchError, got %v", err)
  }
  assert.Equal(int64(1), mismatch.TenantId)
  if assert.Len(mismatch.Offending, 1) {
    assert.Equal("NL02", mismatch.Offending[0].Acct)
    assert.Equal(int64(2), mismatch.Offending[0].TenantId)
    assert.Equal("zookeeper", mismatch.Offending[0].TenantName)
  }

  // Nothing was saved.
  buffer := consumers.NewTransactionBuffer(10)
  assert.Nil(env.store.Transactions(nil, 1, nil, buffer))
  assert.Len(buffer.Transactions(), 0)
}

func TestSaveTransactionsZeroAmount(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)

  transactions := newTransactions()
  transactions[0].Amount = 0
  batch := env.newBatch(1, "NL01", transactions)
  _, err := autoimport.SaveTransactions(
      env.doer, env.store, env.cache, 1, batch)
  assert.NotNil(err)

  // The whole batch is rejected, not just the zero amount row.
  buffer := consumers.NewTransactionBuffer(10)
  assert.Nil(env.store.Transactions(nil, 1, nil, buffer))
  assert.Len(buffer.Transactions(), 0)
}

type testEnv struct {
  dbase *sqlite_db.Db
  doer db.Doer
  store for_sqlite.Store
  cache *pat_sqlite.Cache
}

func newTestEnv(t *testing.T) *testEnv {
  conn, err := sqlite.Open(":memory:")
  if err != nil {
    t.Fatalf("Error opening database: %v", err)
  }
  dbase := sqlite_db.New(conn)
  err = dbase.Do(func(conn *sqlite.Conn) error {
    return sqlite_setup.SetUpTables(conn)
  })
  if err != nil {
    t.Fatalf("Error creating tables: %v", err)
  }
  env := &testEnv{
      dbase: dbase,
      doer: sqlite_db.NewDoer(dbase),
      store: for_sqlite.New(dbase),
      cache: pat_sqlite.NewCache(dbase)}
  acme := fin.Tenant{Name: "acme"}
  zookeeper := fin.Tenant{Name: "zookeeper"}
  err = env.doer.Do(func(dbt db.Transaction) error {
    if err := env.store.AddTenant(dbt, &acme); err != nil {
      return err
    }
    if err := env.store.AddTenant(dbt, &zookeeper); err != nil {
      return err
    }
    if err := env.store.AddAccount(dbt, &fin.Account{
        TenantId: acme.Id, Acct: "NL01", Name: "checking", Active: true}); err != nil {
      return err
    }
    return env.store.AddAccount(dbt, &fin.Account{
        TenantId: zookeeper.Id, Acct: "NL02", Name: "other", Active: true})
  })
  if err != nil {
    t.Fatalf("Error seeding database: %v", err)
  }
  return env
}

func (e *testEnv) newBatch(
    tenantId int64, acct string,
    transactions []*fin.Transaction) autoimport.Batch {
  return autoimport.NewBatch(
      seq_sqlite.New(e.dbase), tenantId, acct, transactions)
}

func (e *testEnv) close(t *testing.T) {
  if err := e.dbase.Close(); err != nil {
    t.Errorf("Error closing database: %v", err)
  }
}

func newTransactions() []*fin.Transaction {
  return []*fin.Transaction{
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S1",
          Date: date_util.YMD(2025, 3, 1),
          Desc: "AIRBNB PAYOUT REF123",
          Amount: 160000,
          Reference: "BK-2025-112",
          Debit: 1600,
          Credit: 8003},
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S2",
          Date: date_util.YMD(2025, 4, 15),
          Desc: "KPN factuur",
          Amount: -4720}}
}
