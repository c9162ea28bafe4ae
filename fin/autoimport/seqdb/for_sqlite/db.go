// Package for_sqlite provides a sqlite implementation for storing
// processed bank sequence ids.
package for_sqlite

import (
  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin/autoimport/seqdb"
  "github.com/keep94/gosqlite/sqlite"
)

const (
    kSQLBySeqId = "select tenant_id from import_seq_ids where tenant_id = ? and acct = ? and seq_id = ?"
    kSQLInsertSeqId = "insert into import_seq_ids (tenant_id, acct, seq_id) values (?, ?, ?)"
)

// New creates sqlite implementation of seqdb.Store interface
func New(db *sqlite_db.Db) seqdb.Store {
  return sqliteStore{db}
}

func add(
    conn *sqlite.Conn,
    tenantId int64,
    acct string,
    seqIds seqdb.SeqIdSet) error {
  addStmt, err := conn.Prepare(kSQLInsertSeqId)
  if err != nil {
    return err
  }
  defer addStmt.Finalize()
  for seqId, ok := range seqIds {
    if ok {
      err := addStmt.Exec(tenantId, acct, seqId)
      if err != nil {
        return err
      }
      addStmt.Next()
    }
  }
  return nil
}

func find(
    conn *sqlite.Conn,
    tenantId int64,
    acct string,
    seqIds seqdb.SeqIdSet) (seqdb.SeqIdSet, error) {
  stmt, err := conn.Prepare(kSQLBySeqId)
  if err != nil {
    return nil, err
  }
  defer stmt.Finalize()
  var result seqdb.SeqIdSet
  for seqId, ok := range seqIds {
    if ok {
      err := stmt.Exec(tenantId, acct, seqId)
      if err != nil {
        return nil, err
      }
      if stmt.Next() {
        if result == nil {
          result = make(seqdb.SeqIdSet)
        }
        result[seqId] = true
      }
    }
  }
  return result, nil
}

type sqliteStore struct {
  db sqlite_db.Doer
}

func (s sqliteStore) Add(
    t db.Transaction, tenantId int64, acct string,
    seqIds seqdb.SeqIdSet) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return add(conn, tenantId, acct, seqIds)
  })
}

func (s sqliteStore) Find(
    t db.Transaction, tenantId int64, acct string,
    seqIds seqdb.SeqIdSet) (found seqdb.SeqIdSet, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    found, err = find(conn, tenantId, acct, seqIds)
    return
  })
  return
}
