package for_sqlite

import (
  "testing"

  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin/findb/fixture"
  "github.com/keep94/finpatterns/fin/findb/sqlite_setup"
  "github.com/keep94/gosqlite/sqlite"
)

func TestTransactionById(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).TransactionById(t, New(db))
}

func TestTransactions(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).Transactions(t, New(db))
}

func TestTransactionsDateRange(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).TransactionsDateRange(t, New(db))
}

func TestTransactionsFullySpecified(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).TransactionsFullySpecified(t, New(db))
}

func TestAccountOwners(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).AccountOwners(t, New(db))
}

func TestAccounts(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).Accounts(t, New(db))
}

func TestTenants(t *testing.T) {
  db := openDb(t)
  defer closeDb(t, db)
  newFixture(db).Tenants(t, New(db))
}

func newFixture(db *sqlite_db.Db) fixture.Fixture {
  return fixture.Fixture{Doer: sqlite_db.NewDoer(db)}
}

func closeDb(t *testing.T, db *sqlite_db.Db) {
  if err := db.Close(); err != nil {
    t.Errorf("Error closing database: %v", err)
  }
}

func openDb(t *testing.T) *sqlite_db.Db {
  conn, err := sqlite.Open(":memory:")
  if err != nil {
    t.Fatalf("Error opening database: %v", err)
  }
  db := sqlite_db.New(conn)
  err = db.Do(func(conn *sqlite.Conn) error {
    return sqlite_setup.SetUpTables(conn)
  })
  if err != nil {
    t.Fatalf("Error creating tables: %v", err)
  }
  return db
}
