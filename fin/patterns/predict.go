package patterns

import (
  "time"

  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/verbs"
)

// PatternSet is an immutable snapshot of the learned patterns of one
// tenant. The zero value is an empty set that matches nothing. PatternSet
// instances can be shared freely among goroutines.
type PatternSet struct {
  m map[setKey]*fin.Pattern
  lastLearned time.Time
}

// NewPatternSet creates a PatternSet out of patterns. NewPatternSet copies
// each pattern so that caller may change patterns freely afterwards.
func NewPatternSet(patterns []*fin.Pattern) PatternSet {
  m := make(map[setKey]*fin.Pattern, len(patterns))
  var lastLearned time.Time
  for _, p := range patterns {
    pcopy := *p
    m[setKey{acct: p.Acct, verb: p.Verb}] = &pcopy
    if p.Updated.After(lastLearned) {
      lastLearned = p.Updated
    }
  }
  return PatternSet{m: m, lastLearned: lastLearned}
}

// Len returns the number of patterns in this set.
func (s PatternSet) Len() int {
  return len(s.m)
}

// LastLearned returns the most recent update time among the patterns in
// this set or the zero time if this set is empty.
func (s PatternSet) LastLearned() time.Time {
  return s.lastLearned
}

// Lookup returns the pattern for bank account acct and verb.
func (s PatternSet) Lookup(acct, verb string) (pattern fin.Pattern, ok bool) {
  p := s.m[setKey{acct: acct, verb: verb}]
  if p == nil {
    return
  }
  return *p, true
}

// Result is the outcome of applying patterns to a single transaction.
type Result struct {

  // Matched is true if a pattern matched the transaction.
  Matched bool

  // Verb is the verb extracted from the transaction description. Empty
  // if no verb could be extracted.
  Verb string

  // Confidence is the confidence of the matching pattern or 0.0 if no
  // pattern matched.
  Confidence float64
}

// Apply enriches trx in place with the matching pattern for its bank
// account and description verb. Apply fills in only the Reference, Debit
// and Credit fields that are missing; fields already present are never
// overwritten. Transactions with no extractable verb or no matching
// pattern are left untouched.
func (s PatternSet) Apply(trx *fin.Transaction) Result {
  verb, ok := verbs.Extract(trx.Desc)
  if !ok {
    return Result{}
  }
  pattern, ok := s.Lookup(trx.Acct, verb.Company)
  if !ok {
    return Result{Verb: verb.Company}
  }
  if trx.Reference == "" {
    trx.Reference = pattern.Reference
  }
  if trx.Debit == 0 {
    trx.Debit = pattern.Debit
  }
  if trx.Credit == 0 {
    trx.Credit = pattern.Credit
  }
  return Result{
      Matched: true, Verb: verb.Company, Confidence: pattern.Confidence}
}

type setKey struct {
  acct string
  verb string
}
