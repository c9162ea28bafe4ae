// Package patternsdb contains the persistence layer for the patterns
// package.
package patternsdb

import (
  "errors"
  "time"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/patterns"
)

var (
  NoPermission = errors.New("patternsdb: Insufficient permission.")
)

type Getter interface {
  // Get retrieves the PatternSet of a tenant reading from the database
  // only if this cache has no valid entry for the tenant.
  Get(t db.Transaction, tenantId int64) (ps patterns.PatternSet, err error)
}

type Invalidater interface {
  // Invalidate invalidates the cached PatternSet of a tenant forcing the
  // next call to Get for that tenant to read from the database. Other
  // tenants' cached PatternSets stay valid.
  Invalidate(t db.Transaction, tenantId int64) error
}

type PatternsRunner interface {
  // Patterns fetches the stored patterns of a tenant sorted by bank
  // account and verb.
  Patterns(t db.Transaction, tenantId int64) (
      patternList []*fin.Pattern, err error)
}

type PatternUpserter interface {
  // UpsertPattern writes pattern keyed by (tenant, bank account, verb).
  // A pattern with a new key is inserted; an existing key is updated in
  // place preserving its Id and Created time. If the stored pattern
  // already carries the same data no write happens at all. UpsertPattern
  // sets pattern.Id and pattern.Created to the stored values.
  UpsertPattern(t db.Transaction, pattern *fin.Pattern) (
      created, updated bool, err error)
}

type RemovePatternRunner interface {
  // RemovePattern removes the pattern of a tenant by bank account and
  // verb.
  RemovePattern(t db.Transaction, tenantId int64, acct, verb string) error
}

// Stats summarizes the stored patterns of one tenant.
type Stats struct {
  PatternCount int
  LastLearned time.Time
  Patterns []*fin.Pattern
}

// PatternStats reports on the stored patterns of tenantId.
func PatternStats(
    t db.Transaction, store PatternsRunner, tenantId int64) (
    stats Stats, err error) {
  patternList, err := store.Patterns(t, tenantId)
  if err != nil {
    return
  }
  stats.PatternCount = len(patternList)
  stats.Patterns = patternList
  for _, p := range patternList {
    if p.Updated.After(stats.LastLearned) {
      stats.LastLearned = p.Updated
    }
  }
  return
}

// ApplyPatterns enriches each transaction in place with the learned
// patterns of tenantId. The returned results parallel transactions.
func ApplyPatterns(
    t db.Transaction,
    cache Getter,
    tenantId int64,
    transactions []*fin.Transaction) ([]patterns.Result, error) {
  ps, err := cache.Get(t, tenantId)
  if err != nil {
    return nil, err
  }
  results := make([]patterns.Result, len(transactions))
  for i, trx := range transactions {
    results[i] = ps.Apply(trx)
  }
  return results, nil
}

// NoPermissionStore always returns NoPermission.
type NoPermissionStore struct {
}

func (n NoPermissionStore) Patterns(
    t db.Transaction, tenantId int64) (
    patternList []*fin.Pattern, err error) {
  return nil, NoPermission
}

func (n NoPermissionStore) UpsertPattern(
    t db.Transaction, pattern *fin.Pattern) (
    created, updated bool, err error) {
  err = NoPermission
  return
}

func (n NoPermissionStore) RemovePattern(
    t db.Transaction, tenantId int64, acct, verb string) error {
  return NoPermission
}

// NoPermissionCache always returns NoPermission.
type NoPermissionCache struct {
}

func (n NoPermissionCache) Get(
    t db.Transaction, tenantId int64) (ps patterns.PatternSet, err error) {
  err = NoPermission
  return
}

func (n NoPermissionCache) Invalidate(
    t db.Transaction, tenantId int64) error {
  return NoPermission
}
