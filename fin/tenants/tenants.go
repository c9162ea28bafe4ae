// Package tenants checks that transactions land under the tenant that
// owns their bank accounts.
package tenants

import (
  "fmt"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/findb"
)

// AccountOwner names the owning tenant of one bank account.
type AccountOwner struct {
  Acct string
  TenantId int64
  TenantName string
}

// MismatchError reports bank accounts owned by a tenant other than the
// one transactions were submitted for. Unregistered bank accounts are
// reported with tenant id 0 and no tenant name.
type MismatchError struct {
  TenantId int64
  Offending []AccountOwner
}

func (e *MismatchError) Error() string {
  return fmt.Sprintf(
      "tenants: %d accounts not owned by tenant %d",
      len(e.Offending), e.TenantId)
}

// Registry is what Validate needs to resolve bank account ownership.
type Registry interface {
  findb.AccountOwnersRunner
  findb.TenantByIdRunner
}

// Validate checks that every bank account among transactions is owned by
// tenantId. On mismatch, Validate returns a *MismatchError listing each
// offending bank account with its owning tenant so that callers can
// report the account the transactions belong under.
func Validate(
    t db.Transaction,
    registry Registry,
    tenantId int64,
    transactions []*fin.Transaction) error {
  acctSet := make(map[string]bool)
  var accts []string
  for _, trx := range transactions {
    if !acctSet[trx.Acct] {
      acctSet[trx.Acct] = true
      accts = append(accts, trx.Acct)
    }
  }
  owners, err := registry.AccountOwners(t, accts)
  if err != nil {
    return err
  }
  var offending []AccountOwner
  for _, acct := range accts {
    owner, ok := owners[acct]
    if ok && owner == tenantId {
      continue
    }
    ao := AccountOwner{Acct: acct, TenantId: owner}
    if ok {
      var tenant fin.Tenant
      if err := registry.TenantById(t, owner, &tenant); err == nil {
        ao.TenantName = tenant.Name
      } else if err != findb.NoSuchId {
        return err
      }
    }
    offending = append(offending, ao)
  }
  if offending != nil {
    return &MismatchError{TenantId: tenantId, Offending: offending}
  }
  return nil
}
