// Package fixture provides test suites to test implementations of the
// interfaces in the findb package.
package fixture

import (
  "reflect"
  "testing"

  "github.com/keep94/appcommon/date_util"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/consumers"
  "github.com/keep94/finpatterns/fin/findb"
)

// Fixture tests implementations of interfaces in the findb package.
// Each exported method is one test.
type Fixture struct {
  Doer db.Doer
}

type TransactionStore interface {
  findb.AddTransactionsRunner
  findb.TransactionByIdRunner
  findb.TransactionsRunner
}

type AccountStore interface {
  findb.AddAccountRunner
  findb.AccountOwnersRunner
  findb.AccountsRunner
}

type TenantStore interface {
  findb.AddTenantRunner
  findb.TenantByIdRunner
  findb.TenantsRunner
}

func (f Fixture) TransactionById(t *testing.T, store TransactionStore) {
  transactions := newTransactions()
  addTransactions(t, f.Doer, store, transactions)
  for i, expected := range transactions {
    if expected.Id == 0 {
      t.Errorf("Expected Id to be set on transaction %d", i)
    }
    var actual fin.Transaction
    if err := store.TransactionById(nil, expected.Id, &actual); err != nil {
      t.Fatalf("Got error reading database: %v", err)
    }
    if !reflect.DeepEqual(*expected, actual) {
      t.Errorf("Expected %v, got %v", *expected, actual)
    }
  }
  var transaction fin.Transaction
  if err := store.TransactionById(nil, 9999, &transaction); err != findb.NoSuchId {
    t.Errorf("Expected NoSuchId, got %v", err)
  }
}

func (f Fixture) Transactions(t *testing.T, store TransactionStore) {
  addTransactions(t, f.Doer, store, newTransactions())
  buffer := consumers.NewTransactionBuffer(10)
  if err := store.Transactions(nil, 1, nil, buffer); err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  fetched := buffer.Transactions()

  // Tenant 1 owns 3 of the 4 transactions; most recent first.
  if len(fetched) != 3 {
    t.Fatalf("Expected 3 transactions, got %d", len(fetched))
  }
  verifyDescs(
      t, fetched, "KPN factuur", "AIRBNB PAYOUT REF124", "AIRBNB PAYOUT REF123")
}

func (f Fixture) TransactionsDateRange(t *testing.T, store TransactionStore) {
  addTransactions(t, f.Doer, store, newTransactions())
  start := date_util.YMD(2025, 3, 15)
  end := date_util.YMD(2025, 4, 2)
  buffer := consumers.NewTransactionBuffer(10)
  options := findb.TransactionListOptions{Start: &start, End: &end}
  if err := store.Transactions(nil, 1, &options, buffer); err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  verifyDescs(t, buffer.Transactions(), "AIRBNB PAYOUT REF124")
}

func (f Fixture) TransactionsFullySpecified(
    t *testing.T, store TransactionStore) {
  addTransactions(t, f.Doer, store, newTransactions())
  buffer := consumers.NewTransactionBuffer(10)
  options := findb.TransactionListOptions{FullySpecified: true}
  if err := store.Transactions(nil, 1, &options, buffer); err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }

  // The KPN transaction has no reference.
  verifyDescs(
      t, buffer.Transactions(), "AIRBNB PAYOUT REF124", "AIRBNB PAYOUT REF123")
}

func (f Fixture) AccountOwners(t *testing.T, store AccountStore) {
  f.createAccounts(t, store)
  owners, err := store.AccountOwners(nil, []string{"NL01", "NL02", "NL99"})
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  expected := map[string]int64{"NL01": 1, "NL02": 2}
  if !reflect.DeepEqual(expected, owners) {
    t.Errorf("Expected %v, got %v", expected, owners)
  }
  owners, err = store.AccountOwners(nil, nil)
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  if len(owners) != 0 {
    t.Errorf("Expected no owners, got %v", owners)
  }
}

func (f Fixture) Accounts(t *testing.T, store AccountStore) {
  f.createAccounts(t, store)
  accounts, err := store.Accounts(nil, 1)
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  if len(accounts) != 2 {
    t.Fatalf("Expected 2 accounts, got %d", len(accounts))
  }
  if accounts[0].Acct != "NL01" || accounts[1].Acct != "NL03" {
    t.Errorf(
        "Expected NL01, NL03, got %s, %s", accounts[0].Acct, accounts[1].Acct)
  }
}

func (f Fixture) Tenants(t *testing.T, store TenantStore) {
  zookeeper := fin.Tenant{Name: "zookeeper"}
  acme := fin.Tenant{Name: "acme"}
  err := f.Doer.Do(func(dbt db.Transaction) error {
    if err := store.AddTenant(dbt, &zookeeper); err != nil {
      return err
    }
    return store.AddTenant(dbt, &acme)
  })
  if err != nil {
    t.Fatalf("Got error writing database: %v", err)
  }
  if zookeeper.Id == 0 || acme.Id == 0 {
    t.Error("Expected tenant Ids to be set.")
  }
  var tenant fin.Tenant
  if err := store.TenantById(nil, acme.Id, &tenant); err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  if tenant != acme {
    t.Errorf("Expected %v, got %v", acme, tenant)
  }
  if err := store.TenantById(nil, 9999, &tenant); err != findb.NoSuchId {
    t.Errorf("Expected NoSuchId, got %v", err)
  }
  tenants, err := store.Tenants(nil)
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  if len(tenants) != 2 {
    t.Fatalf("Expected 2 tenants, got %d", len(tenants))
  }
  if tenants[0].Name != "acme" || tenants[1].Name != "zookeeper" {
    t.Errorf("Expected tenants sorted by name, got %v", tenants)
  }
}

func (f Fixture) createAccounts(t *testing.T, store findb.AddAccountRunner) {
  accounts := []*fin.Account{
      {TenantId: 1, Acct: "NL01", Name: "business checking", Active: true},
      {TenantId: 2, Acct: "NL02", Name: "other checking", Active: true},
      {TenantId: 1, Acct: "NL03", Name: "business savings", Active: false}}
  err := f.Doer.Do(func(dbt db.Transaction) error {
    for _, account := range accounts {
      if err := store.AddAccount(dbt, account); err != nil {
        return err
      }
    }
    return nil
  })
  if err != nil {
    t.Fatalf("Got error writing database: %v", err)
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
          Date: date_util.YMD(2025, 4, 1),
          Desc: "AIRBNB PAYOUT REF124",
          Amount: 170000,
          Reference: "BK-2025-131",
          Debit: 1600,
          Credit: 8003},
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S3",
          Date: date_util.YMD(2025, 4, 15),
          Desc: "KPN factuur",
          Amount: -4720,
          Debit: 4720,
          Credit: 8004},
      {
          TenantId: 2,
          Acct: "NL02",
          SeqId: "S1",
          Date: date_util.YMD(2025, 4, 10),
          Desc: "SVB uitkering",
          Amount: 90000,
          Reference: "BK-2025-140",
          Debit: 1000,
          Credit: 4001}}
}

func addTransactions(
    t *testing.T,
    doer db.Doer,
    store findb.AddTransactionsRunner,
    transactions []*fin.Transaction) {
  err := doer.Do(func(dbt db.Transaction) error {
    return store.AddTransactions(dbt, transactions)
  })
  if err != nil {
    t.Fatalf("Got error writing database: %v", err)
  }
}

func verifyDescs(
    t *testing.T, transactions []fin.Transaction, descs ...string) {
  if len(transactions) != len(descs) {
    t.Fatalf("Expected %d transactions, got %d", len(descs), len(transactions))
  }
  for i := range descs {
    if transactions[i].Desc != descs[i] {
      t.Errorf("Expected %s, got %s", descs[i], transactions[i].Desc)
    }
  }
}
