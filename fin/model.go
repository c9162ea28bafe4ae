// Package fin declares basic types for imported bank transactions and
// learned bookkeeping patterns.
package fin

import (
  "fmt"
  "math"
  "strconv"
  "time"
)

// Transaction represents one imported bank transaction in the common shape
// that all bank-format loaders produce. Amounts are in one cent increments
// and must be non-zero. Debit and Credit are ledger account codes; zero
// means unknown. SeqId is the stable per-row identifier from the bank
// export used for de-duplication.
type Transaction struct {
  // Unique Id
  Id int64
  TenantId int64
  // Acct is the bank account identifier e.g. "NL00BANK0001"
  Acct string
  SeqId string
  Date time.Time
  Desc string
  Amount int64
  Reference string
  Debit int64
  Credit int64
}

func (t *Transaction) String() string {
  return fmt.Sprintf("%v", *t)
}

// FullySpecified returns true if this transaction has a reference and both
// ledger sides. Only fully specified transactions take part in learning.
func (t *Transaction) FullySpecified() bool {
  return t.Reference != "" && t.Debit != 0 && t.Credit != 0
}

// WithAcct returns true if this transaction belongs to acct.
func (t *Transaction) WithAcct(acct string) bool {
  return t.Acct == acct
}

// Pattern represents a learned association between a transaction
// description verb and the bookkeeping values historically used with it.
// The natural key is (TenantId, Acct, Verb); learning never creates two
// rows for the same key.
type Pattern struct {
  // Unique Id
  Id int64
  TenantId int64
  Acct string
  Verb string
  // VerbRef is the secondary reference-like token for compound verbs.
  // Compound verbs key on Verb alone; VerbRef is informational.
  VerbRef string
  Compound bool
  Reference string
  Debit int64
  Credit int64
  Occurrences int
  // Confidence is in [0, 1].
  Confidence float64
  LastSeen time.Time
  // Sample is one representative description for this key.
  Sample string
  Created time.Time
  Updated time.Time
}

func (p *Pattern) String() string {
  return fmt.Sprintf("%v", *p)
}

// Key returns the natural key of this pattern.
func (p *Pattern) Key() PatternKey {
  return PatternKey{TenantId: p.TenantId, Acct: p.Acct, Verb: p.Verb}
}

// EqualData returns true if p and rhs agree on everything except Id,
// Created, and Updated. Upserts skip writing when EqualData holds so that
// repeated learning passes over unchanged history leave rows untouched.
func (p *Pattern) EqualData(rhs *Pattern) bool {
  return p.TenantId == rhs.TenantId &&
      p.Acct == rhs.Acct &&
      p.Verb == rhs.Verb &&
      p.VerbRef == rhs.VerbRef &&
      p.Compound == rhs.Compound &&
      p.Reference == rhs.Reference &&
      p.Debit == rhs.Debit &&
      p.Credit == rhs.Credit &&
      p.Occurrences == rhs.Occurrences &&
      p.Confidence == rhs.Confidence &&
      p.LastSeen.Equal(rhs.LastSeen) &&
      p.Sample == rhs.Sample
}

// PatternKey is the natural key of a Pattern.
type PatternKey struct {
  TenantId int64
  Acct string
  Verb string
}

func (k PatternKey) String() string {
  return fmt.Sprintf("%d:%s:%s", k.TenantId, k.Acct, k.Verb)
}

// Tenant represents an isolated administrative context. Accounts,
// transactions, and patterns belong to exactly one tenant.
type Tenant struct {
  // Unique Id
  Id int64
  Name string
}

func (t *Tenant) String() string {
  return fmt.Sprintf("%v", *t)
}

// Account represents a registered bank account and the tenant that owns it.
type Account struct {
  // Unique Id
  Id int64
  TenantId int64
  // Acct is the bank account identifier.
  Acct string
  Name string
  Active bool
}

func (a *Account) String() string {
  return fmt.Sprintf("%v", *a)
}

// FormatAmount returns amount in cents as a decimal string.
// 347 -> "3.47"
func FormatAmount(x int64) string {
  return fmt.Sprintf("%.2f", float64(x) / 100.0)
}

// ParseAmount is the inverse of FormatAmount.
// "3.47" -> 347
func ParseAmount(s string) (v int64, e error) {
  f, e := strconv.ParseFloat(s, 64)
  if e != nil {
    return
  }
  if f < 0.0 {
    v = -int64(math.Floor(-f * 100.0 + 0.5))
    return
  }
  v = int64(math.Floor(f * 100.0 + 0.5))
  return
}
