// Package fixture provides test suites to test implementations of the
// seqdb.Store interface.
package fixture

import (
  "reflect"
  "testing"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin/autoimport/seqdb"
)

type Fixture struct {
  Store seqdb.Store
  Doer db.Doer
}

func (f *Fixture) Find(t *testing.T) {
  setOne := seqdb.SeqIdSet{"Seq1_1": true, "Seq1_2": true}
  setTwo := seqdb.SeqIdSet{"Seq2_1": true, "Seq2_2": true}
  err := f.Doer.Do(func(dbt db.Transaction) error {
    if err := f.Store.Add(dbt, 1, "NL01", setOne); err != nil {
      return err
    }
    return f.Store.Add(dbt, 2, "NL02", setTwo)
  })
  if err != nil {
    t.Errorf("Error adding seqIds: %v", err)
    return
  }
  set := seqdb.SeqIdSet{"Seq1_1": true, "Seq1_2": true, "Seq1_3": true}
  inSet, err := f.Store.Find(nil, 1, "NL01", set)
  if err != nil {
    t.Errorf("Error accessing database: %v", err)
    return
  }
  expected := seqdb.SeqIdSet{"Seq1_1": true, "Seq1_2": true}
  if !reflect.DeepEqual(inSet, expected) {
    t.Errorf("Expected %v, got %v", expected, inSet)
  }
  inSet, err = f.Store.Find(nil, 2, "NL02", set)
  if err != nil {
    t.Errorf("Error accessing database: %v", err)
    return
  }
  if inSet != nil {
    t.Error("Expected empty set.")
  }

  // Same sequence ids on the same account number under another tenant
  // are different sequence ids.
  inSet, err = f.Store.Find(nil, 2, "NL01", set)
  if err != nil {
    t.Errorf("Error accessing database: %v", err)
    return
  }
  if inSet != nil {
    t.Error("Expected empty set.")
  }
}
