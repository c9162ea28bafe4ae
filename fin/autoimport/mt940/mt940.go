// Package mt940 provides processing of SWIFT MT940 statement files.
package mt940

import (
  "errors"
  "io"
  "regexp"
  "strings"
  "time"

  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/autoimport"
  "github.com/keep94/finpatterns/fin/autoimport/seqdb"
  "github.com/keep94/gofunctional3/functional"
)

const (
  kTrxTag = ":61:"
  kInfoTag = ":86:"
)

var (
  kStatementLinePattern = regexp.MustCompile(
      `^:61:(\d{6})(\d{4})?(R?[DC])(\d+,\d{0,2})`)
)

// MT940Loader implements the autoimport.Loader interface for MT940 files.
type MT940Loader struct {
  // Store stores which bank sequence ids have already been processed.
  Store seqdb.Store
}

func (m MT940Loader) Load(
    tenantId int64,
    acct string,
    r io.Reader,
    startDate time.Time) (autoimport.Batch, error) {
  fileStream := functional.ReadLines(r)
  var line string
  var err error
  var result []*fin.Transaction
  var current *fin.Transaction
  var desc []string
  inInfo := false
  flush := func() {
    if current == nil {
      return
    }
    current.Desc = strings.Join(desc, " ")
    if !current.Date.Before(startDate) {
      result = append(result, current)
    }
    current = nil
    desc = nil
  }
  for err = fileStream.Next(&line); err == nil; err = fileStream.Next(&line) {
    line = strings.TrimSpace(line)
    if strings.HasPrefix(line, kTrxTag) {
      flush()
      inInfo = false
      if current, err = parseStatementLine(line); err != nil {
        return nil, err
      }
    } else if strings.HasPrefix(line, kInfoTag) {
      if current != nil {
        desc = append(desc, strings.TrimSpace(line[len(kInfoTag):]))
        inInfo = true
      }
    } else if strings.HasPrefix(line, ":") {
      inInfo = false
    } else if inInfo && current != nil && line != "" {
      desc = append(desc, line)
    }
  }
  if err != functional.Done {
    return nil, err
  }
  flush()
  for _, trx := range result {
    trx.TenantId = tenantId
    trx.Acct = acct
  }
  return autoimport.NewBatch(m.Store, tenantId, acct, result), nil
}

func parseStatementLine(line string) (*fin.Transaction, error) {
  groups := kStatementLinePattern.FindStringSubmatch(line)
  if groups == nil {
    return nil, errors.New("Invalid statement line in mt940 file.")
  }
  var trx fin.Transaction
  var err error
  if trx.Date, err = time.Parse("060102", groups[1]); err != nil {
    return nil, err
  }
  amt, err := fin.ParseAmount(strings.Replace(groups[4], ",", ".", 1))
  if err != nil {
    return nil, err
  }
  if strings.HasSuffix(groups[3], "D") {
    amt = -amt
  }
  trx.Amount = amt
  ref := line[len(kStatementLinePattern.FindString(line)):]

  // Skip over the 4 character transaction type code e.g NTRF.
  if len(ref) >= 4 && (ref[0] == 'N' || ref[0] == 'S') {
    ref = ref[4:]
  }
  if idx := strings.Index(ref, "//"); idx >= 0 {
    trx.SeqId = strings.TrimSpace(ref[idx+2:])
  } else {
    trx.SeqId = strings.TrimSpace(ref)
  }
  if trx.SeqId == "" {
    return nil, errors.New("Missing reference in mt940 statement line.")
  }
  return &trx, nil
}
