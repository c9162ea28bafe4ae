package tenants

import (
  "testing"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/stretchr/testify/assert"
)

type fakeRegistry struct {
  findb.NoPermissionStore
  owners map[string]int64
  tenants map[int64]string
}

func (f *fakeRegistry) AccountOwners(
    t db.Transaction, accts []string) (map[string]int64, error) {
  result := make(map[string]int64)
  for _, acct := range accts {
    if owner, ok := f.owners[acct]; ok {
      result[acct] = owner
    }
  }
  return result, nil
}

func (f *fakeRegistry) TenantById(
    t db.Transaction, id int64, tenant *fin.Tenant) error {
  name, ok := f.tenants[id]
  if !ok {
    return findb.NoSuchId
  }
  tenant.Id = id
  tenant.Name = name
  return nil
}

func newRegistry() *fakeRegistry {
  return &fakeRegistry{
      owners: map[string]int64{"NL01": 1, "NL02": 2},
      tenants: map[int64]string{1: "acme", 2: "zookeeper"}}
}

func TestValidateOk(t *testing.T) {
  transactions := []*fin.Transaction{
      {Acct: "NL01", Desc: "AIRBNB PAYOUT"},
      {Acct: "NL01", Desc: "KPN factuur"}}
  if err := Validate(nil, newRegistry(), 1, transactions); err != nil {
    t.Errorf("Expected no error, got %v", err)
  }
}

func TestValidateWrongTenant(t *testing.T) {
  assert := assert.New(t)
  transactions := []*fin.Transaction{
      {Acct: "NL01", Desc: "AIRBNB PAYOUT"},
      {Acct: "NL02", Desc: "SVB uitkering"}}
  err := Validate(nil, newRegistry(), 1, transactions)
  mismatch, ok := err.(*MismatchError)
  if !ok {
    t.Fatalf("Expected MismatchError, got %v", err)
  }
  assert.Equal(int64(1), mismatch.TenantId)
  assert.Equal(
      []AccountOwner{{Acct: "NL02", TenantId: 2, TenantName: "zookeeper"}},
      mismatch.Offending)
}

func TestValidateUnknownAccount(t *testing.T) {
  assert := assert.New(t)
  transactions := []*fin.Transaction{{Acct: "NL99", Desc: "AIRBNB PAYOUT"}}
  err := Validate(nil, newRegistry(), 1, transactions)
  mismatch, ok := err.(*MismatchError)
  if !ok {
    t.Fatalf("Expected MismatchError, got %v", err)
  }
  assert.Equal(
      []AccountOwner{{Acct: "NL99"}}, mismatch.Offending)
}

func TestValidateEmpty(t *testing.T) {
  if err := Validate(nil, newRegistry(), 1, nil); err != nil {
    t.Errorf("Expected no error, got %v", err)
  }
}
