// Package csvimp provides processing of csv bank exports.
package csvimp

import (
  gocsv "encoding/csv"
  "errors"
  "fmt"
  "hash/fnv"
  "io"
  "strconv"
  "time"

  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/autoimport"
  "github.com/keep94/finpatterns/fin/autoimport/seqdb"
)

// CsvLoader implements the autoimport.Loader interface for csv files.
type CsvLoader struct {
  // Store stores which bank sequence ids have already been processed.
  Store seqdb.Store
}

func (c CsvLoader) Load(
    tenantId int64,
    acct string,
    r io.Reader,
    startDate time.Time) (autoimport.Batch, error) {
  reader := gocsv.NewReader(r)
  line, err := reader.Read()
  if err != nil {
    return nil, err
  }
  parseit := fromHeader(line)
  if parseit == nil {
    return nil, errors.New("Unrecognized csv header")
  }
  var result []*fin.Transaction
  for line, err = reader.Read(); err == nil; line, err = reader.Read() {
    trx := &fin.Transaction{TenantId: tenantId, Acct: acct}
    var ok bool
    ok, err = parseit(line, trx)
    if err != nil {
      return nil, err
    }
    if !ok || trx.Date.Before(startDate) {
      continue
    }
    if trx.SeqId == "" {
      trx.SeqId, err = generateSeqId(line)
      if err != nil {
        return nil, err
      }
    }
    result = append(result, trx)
  }
  if err != io.EOF {
    return nil, err
  }
  return autoimport.NewBatch(c.Store, tenantId, acct, result), nil
}

func fromNativeHeader(line []string, trx *fin.Transaction) (
    ok bool, err error) {
  trx.Date, err = time.Parse("2006-01-02", line[0])
  if err != nil {
    return
  }
  trx.SeqId = line[1]
  trx.Desc = line[2]
  if trx.Amount, err = fin.ParseAmount(line[3]); err != nil {
    return
  }
  trx.Reference = line[4]
  if line[5] != "" {
    if trx.Debit, err = strconv.ParseInt(line[5], 10, 64); err != nil {
      return
    }
  }
  if line[6] != "" {
    if trx.Credit, err = strconv.ParseInt(line[6], 10, 64); err != nil {
      return
    }
  }
  ok = true
  return
}

func fromBankHeader(line []string, trx *fin.Transaction) (
    ok bool, err error) {
  trx.Date, err = time.Parse("02-01-2006", line[0])
  if err != nil {
    return
  }
  trx.Desc = line[2]
  if trx.Amount, err = fin.ParseAmount(line[3]); err != nil {
    return
  }
  ok = true
  return
}

func fromHeader(line []string) func([]string, *fin.Transaction) (bool, error) {
  if len(line) == 7 && line[0] == "Date" && line[1] == "SeqId" && line[2] == "Desc" && line[3] == "Amount" && line[4] == "Reference" && line[5] == "Debit" && line[6] == "Credit" {
    return fromNativeHeader
  }
  if len(line) == 4 && line[0] == "Datum" && line[1] == "Tegenrekening" && line[2] == "Omschrijving" && line[3] == "Bedrag" {
    return fromBankHeader
  }
  return nil
}

func generateSeqId(line []string) (string, error) {
  h := fnv.New64a()
  s := fmt.Sprintf("%v", line)
  _, err := h.Write(([]byte)(s))
  if err != nil {
    return "", err
  }
  return strconv.FormatUint(h.Sum64(), 10), nil
}
