// Package for_sqlite stores learned patterns in a sqlite database.
package for_sqlite

import (
  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/gofunctional3/functional"
  "github.com/keep94/gosqlite/sqlite"
)

const (
    kSQLPatternByKey = "select id, tenant_id, acct, verb, verb_ref, compound, reference, debit, credit, occurrences, confidence, last_seen, sample, created, updated from patterns where tenant_id = ? and acct = ? and verb = ?"
    kSQLPatternsByTenant = "select id, tenant_id, acct, verb, verb_ref, compound, reference, debit, credit, occurrences, confidence, last_seen, sample, created, updated from patterns where tenant_id = ? order by acct, verb"
    kSQLInsertPattern = "insert into patterns (tenant_id, acct, verb, verb_ref, compound, reference, debit, credit, occurrences, confidence, last_seen, sample, created, updated) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
    kSQLUpdatePattern = "update patterns set tenant_id = ?, acct = ?, verb = ?, verb_ref = ?, compound = ?, reference = ?, debit = ?, credit = ?, occurrences = ?, confidence = ?, last_seen = ?, sample = ?, created = ?, updated = ? where id = ?"
    kSQLRemovePattern = "delete from patterns where tenant_id = ? and acct = ? and verb = ?"
)

func New(db *sqlite_db.Db) Store {
  return Store{db}
}

func ConnNew(conn *sqlite.Conn) Store {
  return Store{sqlite_db.NewSqliteDoer(conn)}
}

func patternsByTenant(
    conn *sqlite.Conn, tenantId int64) (
    patternList []*fin.Pattern, err error) {
  stmt, err := conn.Prepare(kSQLPatternsByTenant)
  if err != nil {
    return
  }
  defer stmt.Finalize()
  if err = stmt.Exec(tenantId); err != nil {
    return
  }
  s := sqlite_db.ReadRows(&rawPattern{}, stmt)
  for {
    p := &fin.Pattern{}
    err = s.Next(p)
    if err == functional.Done {
      err = nil
      return
    }
    if err != nil {
      return
    }
    patternList = append(patternList, p)
  }
}

func upsertPattern(
    conn *sqlite.Conn, pattern *fin.Pattern) (
    created, updated bool, err error) {
  var existing fin.Pattern
  err = sqlite_db.ReadSingle(
      conn,
      &rawPattern{},
      findb.NoSuchId,
      &existing,
      kSQLPatternByKey,
      pattern.TenantId,
      pattern.Acct,
      pattern.Verb)
  if err == findb.NoSuchId {
    err = sqlite_db.AddRow(
        conn, &rawPattern{}, pattern, &pattern.Id, kSQLInsertPattern)
    created = err == nil
    return
  }
  if err != nil {
    return
  }
  pattern.Id = existing.Id
  pattern.Created = existing.Created
  if pattern.EqualData(&existing) {
    pattern.Updated = existing.Updated
    return
  }
  err = sqlite_db.UpdateRow(conn, &rawPattern{}, pattern, kSQLUpdatePattern)
  updated = err == nil
  return
}

type rawPattern struct {
  *fin.Pattern
  lastSeenStr string
  createdStr string
  updatedStr string
}

func (r *rawPattern) Ptrs() []interface{} {
  return []interface{}{&r.Id, &r.TenantId, &r.Acct, &r.Verb, &r.VerbRef, &r.Compound, &r.Reference, &r.Debit, &r.Credit, &r.Occurrences, &r.Confidence, &r.lastSeenStr, &r.Sample, &r.createdStr, &r.updatedStr}
}

func (r *rawPattern) Values() []interface{} {
  return []interface{}{r.TenantId, r.Acct, r.Verb, r.VerbRef, r.Compound, r.Reference, r.Debit, r.Credit, r.Occurrences, r.Confidence, r.lastSeenStr, r.Sample, r.createdStr, r.updatedStr, r.Id}
}

func (r *rawPattern) Pair(ptr interface{}) {
  r.Pattern = ptr.(*fin.Pattern)
}

func (r *rawPattern) Unmarshall() error {
  var err error
  if r.Pattern.LastSeen, err = sqlite_db.StringToDate(r.lastSeenStr); err != nil {
    return err
  }
  if r.Pattern.Created, err = sqlite_db.StringToDate(r.createdStr); err != nil {
    return err
  }
  r.Pattern.Updated, err = sqlite_db.StringToDate(r.updatedStr)
  return err
}

func (r *rawPattern) Marshall() error {
  r.lastSeenStr = sqlite_db.DateToString(r.LastSeen)
  r.createdStr = sqlite_db.DateToString(r.Created)
  r.updatedStr = sqlite_db.DateToString(r.Updated)
  return nil
}

type Store struct {
  db sqlite_db.Doer
}

func (s Store) Patterns(
    t db.Transaction, tenantId int64) (
    patternList []*fin.Pattern, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    patternList, err = patternsByTenant(conn, tenantId)
    return
  })
  return
}

func (s Store) UpsertPattern(
    t db.Transaction, pattern *fin.Pattern) (
    created, updated bool, err error) {
  err = sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) (err error) {
    created, updated, err = upsertPattern(conn, pattern)
    return
  })
  return
}

func (s Store) RemovePattern(
    t db.Transaction, tenantId int64, acct, verb string) error {
  return sqlite_db.ToDoer(s.db, t).Do(func(conn *sqlite.Conn) error {
    return conn.Exec(kSQLRemovePattern, tenantId, acct, verb)
  })
}
