// Package findb contains the persistence layer for the fin package.
package findb

import (
  "errors"
  "time"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/gofunctional3/functional"
)

var (
  NoSuchId = errors.New("findb: No Such Id.")
  NoPermission = errors.New("findb: Insufficient permission.")
)

type AddTransactionsRunner interface {
  // AddTransactions adds new transactions assigning each one its Id.
  AddTransactions(t db.Transaction, transactions []*fin.Transaction) error
}

type TransactionByIdRunner interface {
  // TransactionById fetches a transaction by Id.
  TransactionById(
      t db.Transaction, id int64, transaction *fin.Transaction) error
}

type TransactionsRunner interface {
  // Transactions gets the transactions of a tenant from most to least
  // recent. options is additional options for getting transactions, may
  // be nil; consumer consumes the Stream of fetched transactions.
  Transactions(t db.Transaction, tenantId int64,
      options *TransactionListOptions, consumer functional.Consumer) error
}

type AccountOwnersRunner interface {
  // AccountOwners returns the owning tenant id of each registered bank
  // account in accts. Unregistered bank accounts are absent from the
  // returned map.
  AccountOwners(
      t db.Transaction, accts []string) (map[string]int64, error)
}

type AccountsRunner interface {
  // Accounts fetches the bank accounts of a tenant sorted by account
  // number.
  Accounts(t db.Transaction, tenantId int64) (accounts []*fin.Account, err error)
}

type AddAccountRunner interface {
  // AddAccount registers a new bank account.
  AddAccount(t db.Transaction, account *fin.Account) error
}

type AddTenantRunner interface {
  // AddTenant adds a new tenant.
  AddTenant(t db.Transaction, tenant *fin.Tenant) error
}

type TenantByIdRunner interface {
  // TenantById fetches a tenant by Id.
  TenantById(t db.Transaction, id int64, tenant *fin.Tenant) error
}

type TenantsRunner interface {
  // Tenants fetches all the tenants sorted by name.
  Tenants(t db.Transaction) (tenants []*fin.Tenant, err error)
}

// TransactionListOptions represents options to list transactions.
type TransactionListOptions struct {
  // If set, transactions listed are on or after this date.
  Start *time.Time
  // If set, transactions listed are before this date.
  End *time.Time
  // If true, list only transactions with reference, debit and credit all
  // present.
  FullySpecified bool
}

// NoPermissionStore always returns NoPermission.
type NoPermissionStore struct {
}

func (n NoPermissionStore) AddTransactions(
    t db.Transaction, transactions []*fin.Transaction) error {
  return NoPermission
}

func (n NoPermissionStore) TransactionById(
    t db.Transaction, id int64, transaction *fin.Transaction) error {
  return NoPermission
}

func (n NoPermissionStore) Transactions(t db.Transaction, tenantId int64,
    options *TransactionListOptions, consumer functional.Consumer) error {
  return NoPermission
}

func (n NoPermissionStore) AccountOwners(
    t db.Transaction, accts []string) (map[string]int64, error) {
  return nil, NoPermission
}

func (n NoPermissionStore) Accounts(
    t db.Transaction, tenantId int64) (accounts []*fin.Account, err error) {
  return nil, NoPermission
}

func (n NoPermissionStore) AddAccount(
    t db.Transaction, account *fin.Account) error {
  return NoPermission
}

func (n NoPermissionStore) AddTenant(
    t db.Transaction, tenant *fin.Tenant) error {
  return NoPermission
}

func (n NoPermissionStore) TenantById(
    t db.Transaction, id int64, tenant *fin.Tenant) error {
  return NoPermission
}

func (n NoPermissionStore) Tenants(
    t db.Transaction) (tenants []*fin.Tenant, err error) {
  return nil, NoPermission
}
