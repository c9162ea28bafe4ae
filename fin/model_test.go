package fin

import (
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
)

func TestFullySpecified(t *testing.T) {
  assert := assert.New(t)
  trx := Transaction{
      Desc: "AIRBNB PAYOUT", Amount: 12500,
      Reference: "R100", Debit: 1600, Credit: 8003}
  assert.True(trx.FullySpecified())
  trx.Reference = ""
  assert.False(trx.FullySpecified())
  trx.Reference = "R100"
  trx.Credit = 0
  assert.False(trx.FullySpecified())
  trx.Credit = 8003
  trx.Debit = 0
  assert.False(trx.FullySpecified())
}

func TestPatternKey(t *testing.T) {
  assert := assert.New(t)
  p := Pattern{TenantId: 7, Acct: "NL00BANK0001", Verb: "AIRBNB"}
  assert.Equal(
      PatternKey{TenantId: 7, Acct: "NL00BANK0001", Verb: "AIRBNB"}, p.Key())
  assert.Equal("7:NL00BANK0001:AIRBNB", p.Key().String())
}

func TestPatternEqualData(t *testing.T) {
  assert := assert.New(t)
  date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
  p := Pattern{
      TenantId: 1, Acct: "NL00BANK0001", Verb: "AIRBNB",
      Reference: "R100", Debit: 1600, Credit: 8003,
      Occurrences: 40, Confidence: 0.95, LastSeen: date,
      Sample: "AIRBNB PAYOUT REF123"}
  rhs := p
  rhs.Id = 42
  rhs.Created = date
  rhs.Updated = date
  assert.True(p.EqualData(&rhs))
  rhs.Credit = 8004
  assert.False(p.EqualData(&rhs))
  rhs.Credit = 8003
  rhs.Occurrences = 41
  assert.False(p.EqualData(&rhs))
}

func TestFormatAmount(t *testing.T) {
  assert := assert.New(t)
  assert.Equal("3.47", FormatAmount(347))
  assert.Equal("-3.47", FormatAmount(-347))
  assert.Equal("0.05", FormatAmount(5))
}

func TestParseAmount(t *testing.T) {
  assert := assert.New(t)
  v, err := ParseAmount("3.47")
  assert.Nil(err)
  assert.Equal(int64(347), v)
  v, err = ParseAmount("-3.47")
  assert.Nil(err)
  assert.Equal(int64(-347), v)
  _, err = ParseAmount("abc")
  assert.NotNil(err)
}
