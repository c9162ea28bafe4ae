// Package seqdb provides the data structures for storing which bank
// sequence ids have been processed.
package seqdb

import (
  "errors"

  "github.com/keep94/appcommon/db"
)

var (
  NoPermission = errors.New("seqdb: Insufficient permission.")
)

// SeqIdSet represents a set of bank sequence ids.
type SeqIdSet map[string]bool

// Interface Store handles storage and retrieval of processed sequence ids.
// Sequence ids are scoped by tenant and bank account: the same sequence id
// on another tenant's account is a different sequence id.
type Store interface {
  // Add adds a set of sequence ids to the store for a particular tenant
  // and bank account.
  Add(t db.Transaction, tenantId int64, acct string, seqIds SeqIdSet) error

  // Find finds sequence ids for a particular tenant and bank account and
  // returns them. seqIds is the set of sequence ids to look for. The
  // returned set will always be a subset of the seqIds parameter or nil
  // if Find cannot find any of the sequence ids.
  Find(t db.Transaction, tenantId int64, acct string, seqIds SeqIdSet) (
      SeqIdSet, error)
}

// NoPermissionStore implements Store by always returning NoPermission
// error.
type NoPermissionStore struct {
}

func (n NoPermissionStore) Add(
    t db.Transaction, tenantId int64, acct string, seqIds SeqIdSet) error {
  return NoPermission
}

func (n NoPermissionStore) Find(
    t db.Transaction, tenantId int64, acct string, seqIds SeqIdSet) (
    found SeqIdSet, err error) {
  err = NoPermission
  return
}

type ReadOnlyStore struct {
  NoPermissionStore
  store Store
}

func ReadOnlyWrapper(s Store) ReadOnlyStore {
  return ReadOnlyStore{store: s}
}

func (s ReadOnlyStore) Find(
    t db.Transaction, tenantId int64, acct string, seqIds SeqIdSet) (
    found SeqIdSet, err error) {
  return s.store.Find(t, tenantId, acct, seqIds)
}
