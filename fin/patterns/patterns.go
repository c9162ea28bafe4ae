// Package patterns learns associations between transaction description
// verbs and the bookkeeping values historically used with them, and
// applies learned associations to new transactions.
package patterns

import (
  "sort"
  "time"

  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/verbs"
)

// Occurrence is one historical observation for a pattern key.
type Occurrence struct {
  Date time.Time
  // Seq breaks ties between occurrences on the same date. Later inserted
  // rows have higher Seq.
  Seq int64
  Reference string
  Debit int64
  Credit int64
  // Weight is 1 for a real transaction. Seeded priors from incremental
  // learning carry the stored occurrence count as weight.
  Weight int
}

// Consensus is what a Consolidator distills from the occurrences of one
// pattern key.
type Consensus struct {
  Reference string
  Debit int64
  Credit int64
  Confidence float64
}

// Consolidator resolves disagreeing historical values for one pattern key
// and scores the result. Implementations must be deterministic:
// consolidating the same occurrences twice yields the same Consensus.
type Consolidator interface {
  Consolidate(occurrences []Occurrence) Consensus
}

// MostRecent is the default Consolidator. The values of the most recent
// occurrence win; ties on date go to the higher Seq. Confidence grows with
// total occurrence weight n as n/(n+1) and is multiplied by the average
// fraction of weight agreeing with the winning ledger values, debit and
// credit. References are unique per transaction, so they follow the most
// recent occurrence without counting as disagreement.
type MostRecent struct {
}

func (m MostRecent) Consolidate(occurrences []Occurrence) Consensus {
  latest := occurrences[0]
  var n int
  for _, occ := range occurrences {
    n += occ.Weight
    if occ.Date.After(latest.Date) ||
        (occ.Date.Equal(latest.Date) && occ.Seq > latest.Seq) {
      latest = occ
    }
  }
  var debitAgree, creditAgree int
  for _, occ := range occurrences {
    if occ.Debit == latest.Debit {
      debitAgree += occ.Weight
    }
    if occ.Credit == latest.Credit {
      creditAgree += occ.Weight
    }
  }
  agreement := float64(debitAgree + creditAgree) / float64(2 * n)
  return Consensus{
      Reference: latest.Reference,
      Debit: latest.Debit,
      Credit: latest.Credit,
      Confidence: agreement * float64(n) / float64(n + 1)}
}

// Builder accumulates fully specified transactions for one tenant and
// builds Pattern values grouped by (tenant, bank account, verb). Feed a
// Builder transactions in any order; consolidation does not depend on
// insertion order. Builder implements consumers.TransactionAggregator.
type Builder struct {
  tenantId int64
  extractor *verbs.Extractor
  consolidator Consolidator
  groups map[fin.PatternKey]*group
}

// NewBuilder creates a Builder for tenantId. consolidator may be nil in
// which case MostRecent is used.
func NewBuilder(tenantId int64, consolidator Consolidator) *Builder {
  if consolidator == nil {
    consolidator = MostRecent{}
  }
  return &Builder{
      tenantId: tenantId,
      consolidator: consolidator,
      groups: make(map[fin.PatternKey]*group)}
}

// Seed primes this builder with an already stored pattern for incremental
// learning. The stored pattern counts as a single prior occurrence at its
// last seen date carrying its occurrence count as weight. Include then
// skips transactions for that key that are not newer than the stored last
// seen date. Full, unseeded learning is the correctness baseline.
func (b *Builder) Seed(p *fin.Pattern) {
  if p.TenantId != b.tenantId {
    return
  }
  g := b.group(p.Key())
  g.seeded = true
  g.seedLastSeen = p.LastSeen
  g.lastSeen = p.LastSeen
  g.sample = p.Sample
  g.verbRef = p.VerbRef
  g.compound = p.Compound
  g.occurrences = append(g.occurrences, Occurrence{
      Date: p.LastSeen,
      Reference: p.Reference,
      Debit: p.Debit,
      Credit: p.Credit,
      Weight: p.Occurrences})
}

// Include trains this builder with a particular transaction. Transactions
// that are not fully specified, belong to another tenant, or have no
// extractable verb are ignored.
func (b *Builder) Include(trx *fin.Transaction) {
  if trx.TenantId != b.tenantId || !trx.FullySpecified() {
    return
  }
  verb, ok := b.extract(trx.Desc)
  if !ok {
    return
  }
  key := fin.PatternKey{
      TenantId: b.tenantId, Acct: trx.Acct, Verb: verb.Company}
  g := b.group(key)
  if g.seeded && !trx.Date.After(g.seedLastSeen) {
    return
  }
  g.occurrences = append(g.occurrences, Occurrence{
      Date: trx.Date,
      Seq: trx.Id,
      Reference: trx.Reference,
      Debit: trx.Debit,
      Credit: trx.Credit,
      Weight: 1})
  if !trx.Date.Before(g.lastSeen) {
    g.lastSeen = trx.Date
    g.sample = trx.Desc
    g.verbRef = verb.Ref
    g.compound = verb.Compound
  }
}

// Build returns one Pattern per observed key sorted by key. Build does not
// reset this builder; calling Build twice without intervening Include
// calls yields identical results.
func (b *Builder) Build() []*fin.Pattern {
  result := make([]*fin.Pattern, 0, len(b.groups))
  for key, g := range b.groups {
    consensus := b.consolidator.Consolidate(g.occurrences)
    var count int
    for _, occ := range g.occurrences {
      count += occ.Weight
    }
    result = append(result, &fin.Pattern{
        TenantId: key.TenantId,
        Acct: key.Acct,
        Verb: key.Verb,
        VerbRef: g.verbRef,
        Compound: g.compound,
        Reference: consensus.Reference,
        Debit: consensus.Debit,
        Credit: consensus.Credit,
        Occurrences: count,
        Confidence: consensus.Confidence,
        LastSeen: g.lastSeen,
        Sample: g.sample})
  }
  sort.Slice(result, func(i, j int) bool {
    return lessKey(result[i].Key(), result[j].Key())
  })
  return result
}

// Conflicts returns the keys whose occurrences disagree on a ledger
// field, debit or credit. Conflicts are informational; consolidation
// resolves them deterministically.
func (b *Builder) Conflicts() []fin.PatternKey {
  var result []fin.PatternKey
  for key, g := range b.groups {
    if g.conflicting() {
      result = append(result, key)
    }
  }
  sort.Slice(result, func(i, j int) bool {
    return lessKey(result[i], result[j])
  })
  return result
}

func (b *Builder) extract(desc string) (verbs.Verb, bool) {
  if b.extractor != nil {
    return b.extractor.Extract(desc)
  }
  return verbs.Extract(desc)
}

func (b *Builder) group(key fin.PatternKey) *group {
  g := b.groups[key]
  if g == nil {
    g = &group{}
    b.groups[key] = g
  }
  return g
}

type group struct {
  occurrences []Occurrence
  lastSeen time.Time
  sample string
  verbRef string
  compound bool
  seeded bool
  seedLastSeen time.Time
}

func (g *group) conflicting() bool {
  first := g.occurrences[0]
  for _, occ := range g.occurrences[1:] {
    if occ.Debit != first.Debit || occ.Credit != first.Credit {
      return true
    }
  }
  return false
}

func lessKey(lhs, rhs fin.PatternKey) bool {
  if lhs.TenantId != rhs.TenantId {
    return lhs.TenantId < rhs.TenantId
  }
  if lhs.Acct != rhs.Acct {
    return lhs.Acct < rhs.Acct
  }
  return lhs.Verb < rhs.Verb
}
