// Package sqlite_setup sets up a sqlite database for transaction pattern
// learning.
package sqlite_setup

import (
  "github.com/keep94/gosqlite/sqlite"
)

// SetUpTables creates all needed tables in database.
func SetUpTables(conn *sqlite.Conn) error {
  err := conn.Exec("create table if not exists tenants (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)")
  if err != nil {
    return err
  }
  err = conn.Exec("create table if not exists accounts (id INTEGER PRIMARY KEY AUTOINCREMENT, tenant_id INTEGER, acct TEXT, name TEXT, is_active INTEGER)")
  if err != nil {
    return err
  }
  err = conn.Exec("create unique index if not exists accounts_acct_idx on accounts (acct)")
  if err != nil {
    return err
  }
  err = conn.Exec("create table if not exists transactions (id INTEGER PRIMARY KEY AUTOINCREMENT, tenant_id INTEGER, acct TEXT, seq_id TEXT, date TEXT, desc TEXT, amount INTEGER, reference TEXT, debit INTEGER, credit INTEGER)")
  if err != nil {
    return err
  }
  err = conn.Exec("create index if not exists transactions_tenant_id_date_idx on transactions (tenant_id, date)")
  if err != nil {
    return err
  }
  err = conn.Exec("create table if not exists import_seq_ids (tenant_id INTEGER, acct TEXT, seq_id TEXT)")
  if err != nil {
    return err
  }
  err = conn.Exec("create unique index if not exists import_seq_ids_tenant_id_acct_seq_id_idx on import_seq_ids (tenant_id, acct, seq_id)")
  if err != nil {
    return err
  }
  err = conn.Exec("create table if not exists patterns (id INTEGER PRIMARY KEY AUTOINCREMENT, tenant_id INTEGER, acct TEXT, verb TEXT, verb_ref TEXT, compound INTEGER, reference TEXT, debit INTEGER, credit INTEGER, occurrences INTEGER, confidence REAL, last_seen TEXT, sample TEXT, created TEXT, updated TEXT)")
  if err != nil {
    return err
  }
  err = conn.Exec("create unique index if not exists patterns_tenant_id_acct_verb_idx on patterns (tenant_id, acct, verb)")
  if err != nil {
    return err
  }
  return nil
}
