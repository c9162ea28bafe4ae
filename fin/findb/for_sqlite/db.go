// Package for_sqlite stores types in fin package in a sqlite database.
package for_sqlite

import (
  "strings"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/gofunctional3/functional"
  "github.com/keep94/gosqlite/sqlite"
)

const (
    kSQLTransactionById = "select id, tenant_id, acct, seq_id, date, desc, amount, reference, debit, credit from transactions where id = ?"
    kSQLTransactionsPrefix = "select id, tenant_id, acct, seq_id, date, desc, amount, reference, debit, credit from transactions"
    kSQLTransactionOrderBy = " order by date desc, id desc"
    kSQLInsertTransaction = "insert into transactions (tenant_id, acct, seq_id, date, desc, amount, reference, debit, credit) values (?, ?, ?, ?, ?, ?, ?, ?, ?)"
    kSQLAccountsByTenant = "select id, tenant_id, acct, name, is_active from accounts where tenant_id = ? order by acct"
    kSQLInsertAccount = "insert into accounts (tenant_id, acct, name, is_active) values (?, ?, ?, ?)"
    kSQLTenantById = "select id, name from tenants where id = ?"
    kSQLTenants = "select id, name from tenants order by name"
    kSQLInsertTenant = "insert into tenants (name) values (?)"
)

func New(db *sqlite_db.Db) Store {
  return Store{db}
}

func ConnNew(conn *sqlite.Conn) Store {
  return Store{sqlite_db.NewSqliteDoer(conn)}
}

func ReadOnlyWrapper(store Store) ReadOnlyStore {
  return ReadOnlyStore{store: store}
}

func transactions(
    conn *sqlite.Conn,
    tenantId int64,
    options *findb.TransactionListOptions,
    consumer functional.Consumer) error {
  where_clauses := make([]string, 4)
  where_clauses[0] = "tenant_id = ?"
  where_clause_count := 1
  sql_params := make([]interface{}, 3)
  sql_params[0] = tenantId
  sql_param_count := 1
  if options != nil {
    if options.Start != nil {
      where_clauses[where_clause_count] = "date >= ?"
      where_clause_count++
      sql_params[sql_param_count] = sqlite_db.DateToString(*options.Start)
      sql_param_count++
    }
    if options.End != nil {
      where_clauses[where_clause_count] = "date < ?"
      where_clause_count++
      sql_params[sql_param_count] = sqlite_db.DateToString(*options.End)
      sql_param_count++
    }
    if options.FullySpecified {
      where_clauses[where_clause_count] =
          "reference != '' and debit != 0 and credit != 0"
      where_clause_count++
    }
  }
  sql := kSQLTransactionsPrefix + " where " +
      strings.Join(where_clauses[:where_clause_count], " and ") +
      kSQLTransactionOrderBy
  stmt, err := conn.Prepare(sql)
  if err != nil {
    return err
  }
  defer stmt.Finalize()
  if err = stmt.Exec(sql_params[:sql_param_count]...); err != nil {
    return err
  }
  return consumer.Consume(sqlite_db.ReadRows(&rawTransaction{}, stmt))
}

func addTransaction(
    stmt, lastRowIdStmt *sqlite.Stmt,
    r *rawTransaction,
    transaction *fin.Transaction) error {
  values, err := sqlite_db.InsertValues(r, transaction)
  if err != nil {
    return err
  }
  err = stmt.Exec(values...)
  if err != nil {
    return err
  }
  stmt.Next()
  transaction.Id, err = sqlite_db.LastRowIdFromStmt(lastRowIdStmt)
  return err
}

func addTransactions(
    conn *sqlite.Conn, transactions []*fin.Transaction) error {
  stmt, err := conn.Prepare(kSQLInsertTransaction)
  if err != nil {
    return err
  }
  defer stmt.Finalize()
  lastRowIdStmt, err := conn.Prepare(sqlite_db.LastRowIdSQL)
  if err != nil {
    return err
  }
  defer lastRowIdStmt.Finalize()
  row := &rawTransaction{}
  for _, transaction := range transactions {
    if err = addTransaction(stmt, lastRowIdStmt, row, transaction); err != nil {
      return err
    }
  }
  return nil
}

func accountOwners(
    conn *sqlite.Conn, accts []string) (map[string]int64, error) {
  if len(accts) == 0 {
    return make(map[string]int64), nil
  }
  sql := "select id, tenant_id, acct, name, is_active from accounts where acct in (" +
      strings.Repeat("?, ", len(accts) - 1) + "?)"
  stmt, err := conn.Prepare(sql)
  if err != nil {
    return nil, err
  }
  defer stmt.Finalize()
  sql_params := make([]interface{}, len(accts))
  for i := range accts {
    sql_params[i] = accts[i]
  }
  if err = stmt.Exec(sql_params...); err != nil {
    return nil, err
  }
  result := make(map[string]int64)
  s := sqlite_db.ReadRows(&rawAccount{}, stmt)
  var account fin.Account
  for err = s.Next(&account); err == nil; err = s.Next(&account) {
    result[account.Acct] = account.TenantId
  }
  if err != functional.Done {
    return nil, err
  }
  return result, nil
}

func accounts(
    conn *sqlite.Conn, tenantId int64) (accounts []*fin.Account, err error) {
  stmt, err := conn.Prepare(kSQLAccountsByTenant)
  if err != nil {
    return
  }
  defer stmt.Finalize()
  if err = stmt.Exec(tenantId); err != nil {
    return
  }
  s := sqlite_db.ReadRows(&rawAccount{}, stmt)
  for {
    p := &fin.Account{}
    err = s.Next(p)
    if err == functional.Done {
      err = nil
      return
    }
    if err != nil {
      return
    }
    accounts = append(accounts, p)
  }
}

func tenants(conn *sqlite.Conn) (tenants []*fin.Tenant, err error) {
  stmt, err := conn.Prepare(kSQLTenants)
  if err != nil {
    return
  }
  defer stmt.Finalize()
  if err = stmt.Exec(); err != nil {
    return
  }
  s := sqlite_db.ReadRows(&rawTenant{}, stmt)
  for {
    p := &fin.Tenant{}
    err = s.Next(p)
    if err == functional.Done {
      err = nil
      return
    }
    if err != nil {
      return
    }
    tenants = append(tenants, p)
  }
}

type rawTransaction struct {
  *fin.Transaction
  dateStr string
}

func (r *rawTransaction) Ptrs() []interface{} {
  return []interface{}{&r.Id, &r.TenantId, &r.Acct, &r.SeqId, &r.dateStr, &r.Desc, &r.Amount, &r.Reference, &r.Debit, &r.Credit}
}

func (r *rawTransaction) Values() []interface{} {
  return []interface{}{r.TenantId, r.Acct, r.SeqId, r.dateStr, r.Desc, r.Amount, r.Reference, r.Debit, r.Credit, r.Id}
}

func (r *rawTransaction) Pair(ptr interface{}) {
  r.Transaction = ptr.(*fin.Transaction)
}

func (r *rawTransaction) Unmarshall() error {
  var err error
  r.Transaction.Date, err = sqlite_db.StringToDate(r.dateStr)
  return err
}

func (r *rawTransaction) Marshall() error {
  r.dateStr = sqlite_db.DateToString(r.Date)
  return nil
}

type rawAccount struct {
  *fin.Account
}

func (r *rawAccount) Ptrs() []interface{} {
  return []interface{}{&r.Id, &r.TenantId, &r.Acct, &r.Name, &r.Active}
}

func (r *rawAccount) Values() []interface{} {
  return []interface{}{r.TenantId, r.Acct, r.Name, r.Active, r.Id}
}

func (r *rawAccount) Pair(ptr interface{}) {
  r.Account = ptr.(*fin.Account)
}

func (r *rawAccount) Unmarshall() error {
  return nil
}

func (r *rawAccount) Marshall() error {
  return nil
}

type rawTenant struct {
  *fin.Tenant
}

func (r *rawTenant) Ptrs() []interface{} {
  return []interface{}{&r.Id, &r.Name}
}

func (r *rawTenant) Values() []interface{} {
  return []interface{}{r.Name, r.Id}
}

func (r *rawTenant) Pair(ptr interface{}) {
  r.Tenant = ptr.(*fin.Tenant)
}

func (r *rawTenant) Unmarshall() error {
  return nil
}

func (r *rawTenant) Marshall() error {
  return nil
}

type Store struct {
  db sqlite_db.Doer
}

func (s Store) AddTransactions(
    t db.Transaction, transactions []*fin.Transaction) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return addTransactions(conn, transactions)
  })
}

func (s Store) TransactionById(
    t db.Transaction, id int64, transaction *fin.Transaction) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return sqlite_db.ReadSingle(
        conn,
        &rawTransaction{},
        findb.NoSuchId,
        transaction,
        kSQLTransactionById,
        id)
  })
}

func (s Store) Transactions(
    t db.Transaction, tenantId int64,
    options *findb.TransactionListOptions,
    consumer functional.Consumer) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return transactions(conn, tenantId, options, consumer)
  })
}

func (s Store) AccountOwners(
    t db.Transaction, accts []string) (owners map[string]int64, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    owners, err = accountOwners(conn, accts)
    return
  })
  return
}

func (s Store) Accounts(
    t db.Transaction, tenantId int64) (
    accountList []*fin.Account, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    accountList, err = accounts(conn, tenantId)
    return
  })
  return
}

func (s Store) AddAccount(t db.Transaction, account *fin.Account) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return sqlite_db.AddRow(
        conn, &rawAccount{}, account, &account.Id, kSQLInsertAccount)
  })
}

func (s Store) AddTenant(t db.Transaction, tenant *fin.Tenant) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return sqlite_db.AddRow(
        conn, &rawTenant{}, tenant, &tenant.Id, kSQLInsertTenant)
  })
}

func (s Store) TenantById(
    t db.Transaction, id int64, tenant *fin.Tenant) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return sqlite_db.ReadSingle(
        conn, &rawTenant{}, findb.NoSuchId, tenant, kSQLTenantById, id)
  })
}

func (s Store) Tenants(
    t db.Transaction) (tenantList []*fin.Tenant, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    tenantList, err = tenants(conn)
    return
  })
  return
}

type ReadOnlyStore struct {
  findb.NoPermissionStore
  store Store
}

func (s ReadOnlyStore) TransactionById(
    t db.Transaction, id int64, transaction *fin.Transaction) error {
  return s.store.TransactionById(t, id, transaction)
}

func (s ReadOnlyStore) Transactions(
    t db.Transaction, tenantId int64,
    options *findb.TransactionListOptions,
    consumer functional.Consumer) error {
  return s.store.Transactions(t, tenantId, options, consumer)
}

func (s ReadOnlyStore) AccountOwners(
    t db.Transaction, accts []string) (map[string]int64, error) {
  return s.store.AccountOwners(t, accts)
}

func (s ReadOnlyStore) Accounts(
    t db.Transaction, tenantId int64) (accounts []*fin.Account, err error) {
  return s.store.Accounts(t, tenantId)
}

func (s ReadOnlyStore) TenantById(
    t db.Transaction, id int64, tenant *fin.Tenant) error {
  return s.store.TenantById(t, id, tenant)
}

func (s ReadOnlyStore) Tenants(
    t db.Transaction) (tenants []*fin.Tenant, err error) {
  return s.store.Tenants(t)
}
