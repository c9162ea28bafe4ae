// Package fixture provides test suites to test implementations of the
// interfaces in the patternsdb package.
package fixture

import (
  "reflect"
  "testing"

  "github.com/keep94/appcommon/date_util"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/patterns/patternsdb"
)

// Fixture tests implementations of interfaces in the patternsdb package.
// Each exported method is one test.
type Fixture struct {
  Doer db.Doer
}

type Store interface {
  patternsdb.PatternsRunner
  patternsdb.PatternUpserter
  patternsdb.RemovePatternRunner
}

func (f Fixture) UpsertPattern(t *testing.T, store Store) {
  pattern := newPattern()
  created, updated := f.upsert(t, store, pattern)
  if !created || updated {
    t.Errorf("Expected create, got created=%v updated=%v", created, updated)
  }
  if pattern.Id == 0 {
    t.Error("Expected Id to be set.")
  }
  stored := f.patterns(t, store, 1)
  if len(stored) != 1 {
    t.Fatalf("Expected 1 pattern, got %d", len(stored))
  }
  if !reflect.DeepEqual(pattern, stored[0]) {
    t.Errorf("Expected %v, got %v", pattern, stored[0])
  }
}

func (f Fixture) UpsertPatternNoOp(t *testing.T, store Store) {
  pattern := newPattern()
  f.upsert(t, store, pattern)
  firstId := pattern.Id
  firstCreated := pattern.Created
  firstUpdated := pattern.Updated

  // Byte-identical data written on a later day changes nothing.
  again := newPattern()
  again.Updated = date_util.YMD(2025, 5, 9)
  created, updated := f.upsert(t, store, again)
  if created || updated {
    t.Errorf("Expected no-op, got created=%v updated=%v", created, updated)
  }
  if again.Id != firstId {
    t.Errorf("Expected Id %d, got %d", firstId, again.Id)
  }
  if again.Created != firstCreated || again.Updated != firstUpdated {
    t.Error("Expected stored timestamps to be preserved.")
  }
}

func (f Fixture) UpsertPatternUpdate(t *testing.T, store Store) {
  pattern := newPattern()
  f.upsert(t, store, pattern)
  changed := newPattern()
  changed.Credit = 8004
  changed.Occurrences = 20
  changed.Updated = date_util.YMD(2025, 5, 9)
  created, updated := f.upsert(t, store, changed)
  if created || !updated {
    t.Errorf("Expected update, got created=%v updated=%v", created, updated)
  }
  if changed.Id != pattern.Id {
    t.Errorf("Expected Id %d, got %d", pattern.Id, changed.Id)
  }
  if changed.Created != pattern.Created {
    t.Error("Expected Created to be preserved on update.")
  }
  stored := f.patterns(t, store, 1)
  if len(stored) != 1 {
    t.Fatalf("Expected 1 pattern, got %d", len(stored))
  }
  if stored[0].Credit != 8004 || stored[0].Occurrences != 20 {
    t.Errorf("Update not stored: %v", stored[0])
  }
  if stored[0].Updated != date_util.YMD(2025, 5, 9) {
    t.Errorf("Expected new Updated time, got %v", stored[0].Updated)
  }
}

func (f Fixture) Patterns(t *testing.T, store Store) {
  first := newPattern()
  second := newPattern()
  second.Verb = "KPN"
  second.Compound = false
  second.VerbRef = ""
  third := newPattern()
  third.TenantId = 2
  for _, p := range []*fin.Pattern{second, first, third} {
    f.upsert(t, store, p)
  }
  stored := f.patterns(t, store, 1)
  if len(stored) != 2 {
    t.Fatalf("Expected 2 patterns, got %d", len(stored))
  }

  // Sorted by bank account and verb.
  if stored[0].Verb != "AIRBNB" || stored[1].Verb != "KPN" {
    t.Errorf("Expected AIRBNB, KPN, got %s, %s",
        stored[0].Verb, stored[1].Verb)
  }
}

func (f Fixture) RemovePattern(t *testing.T, store Store) {
  pattern := newPattern()
  f.upsert(t, store, pattern)
  err := f.Doer.Do(func(dbt db.Transaction) error {
    return store.RemovePattern(dbt, 1, "NL01", "AIRBNB")
  })
  if err != nil {
    t.Fatalf("Got error writing database: %v", err)
  }
  if stored := f.patterns(t, store, 1); len(stored) != 0 {
    t.Errorf("Expected no patterns, got %v", stored)
  }
}

func (f Fixture) PatternStats(t *testing.T, store Store) {
  first := newPattern()
  second := newPattern()
  second.Verb = "KPN"
  second.Updated = date_util.YMD(2025, 5, 20)
  f.upsert(t, store, first)
  f.upsert(t, store, second)
  stats, err := patternsdb.PatternStats(nil, store, 1)
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  if stats.PatternCount != 2 {
    t.Errorf("Expected 2 patterns, got %d", stats.PatternCount)
  }
  if stats.LastLearned != date_util.YMD(2025, 5, 20) {
    t.Errorf("Expected last learned 2025-05-20, got %v", stats.LastLearned)
  }
}

func (f Fixture) upsert(
    t *testing.T, store Store, pattern *fin.Pattern) (
    created, updated bool) {
  err := f.Doer.Do(func(dbt db.Transaction) (err error) {
    created, updated, err = store.UpsertPattern(dbt, pattern)
    return
  })
  if err != nil {
    t.Fatalf("Got error writing database: %v", err)
  }
  return
}

func (f Fixture) patterns(
    t *testing.T, store Store, tenantId int64) []*fin.Pattern {
  stored, err := store.Patterns(nil, tenantId)
  if err != nil {
    t.Fatalf("Got error reading database: %v", err)
  }
  return stored
}

func newPattern() *fin.Pattern {
  return &fin.Pattern{
      TenantId: 1,
      Acct: "NL01",
      Verb: "AIRBNB",
      VerbRef: "REF123",
      Compound: true,
      Reference: "BK-2025-112",
      Debit: 1600,
      Credit: 8003,
      Occurrences: 19,
      Confidence: 0.95,
      LastSeen: date_util.YMD(2025, 4, 1),
      Sample: "AIRBNB PAYOUT REF123",
      Created: date_util.YMD(2025, 5, 2),
      Updated: date_util.YMD(2025, 5, 2)}
}
