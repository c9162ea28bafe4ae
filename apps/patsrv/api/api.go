// Package api provides the JSON handlers for the patsrv webapp.
package api

import (
  "encoding/json"
  "net/http"
  "path/filepath"
  "sort"
  "strings"
  "time"

  "github.com/gorilla/sessions"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/apps/patsrv/common"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/autoimport"
  "github.com/keep94/finpatterns/fin/consumers"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/finpatterns/fin/learn"
  "github.com/keep94/finpatterns/fin/patterns/patternsdb"
  "github.com/keep94/finpatterns/fin/tenants"
  "github.com/keep94/finpatterns/fin/verbs"
  "github.com/keep94/goconsume"
)

const (
  kDateFormat = "2006-01-02"

  // How many recent transactions the stats handler samples when counting
  // verb popularity.
  kVerbSampleSize = 1000
)

// TenantHandler makes a tenant the active tenant of the session.
type TenantHandler struct {
  SessionStore sessions.Store
  Store findb.TenantByIdRunner
}

func (h *TenantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  if r.Method != http.MethodPost {
    httpError(w, http.StatusMethodNotAllowed, "POST required.")
    return
  }
  var request struct {
    TenantId int64 `json:"tenantId"`
  }
  if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
    httpError(w, http.StatusBadRequest, "Malformed request body.")
    return
  }
  var tenant fin.Tenant
  err := h.Store.TenantById(nil, request.TenantId, &tenant)
  if err == findb.NoSuchId {
    httpError(w, http.StatusNotFound, "No such tenant.")
    return
  }
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading database.")
    return
  }
  session, err := common.NewTenantSession(h.SessionStore, r)
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading session.")
    return
  }
  session.SetTenantId(tenant.Id)
  if err := session.Save(r, w); err != nil {
    httpError(w, http.StatusInternalServerError, "Error saving session.")
    return
  }
  writeJson(w, tenantJson{Id: tenant.Id, Name: tenant.Name})
}

// TenantsHandler lists the tenants.
type TenantsHandler struct {
  Store findb.TenantsRunner
}

func (h *TenantsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  tenantList, err := h.Store.Tenants(nil)
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading database.")
    return
  }
  result := make([]tenantJson, len(tenantList))
  for i, tenant := range tenantList {
    result[i] = tenantJson{Id: tenant.Id, Name: tenant.Name}
  }
  writeJson(w, result)
}

// ApplyHandler enriches submitted transactions with learned patterns.
type ApplyHandler struct {
  SessionStore sessions.Store
  Cache patternsdb.Getter
}

func (h *ApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  if r.Method != http.MethodPost {
    httpError(w, http.StatusMethodNotAllowed, "POST required.")
    return
  }
  tenantId, ok := activeTenant(h.SessionStore, r)
  if !ok {
    httpError(w, http.StatusUnauthorized, "No active tenant.")
    return
  }
  var request struct {
    Transactions []transactionJson `json:"transactions"`
  }
  if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
    httpError(w, http.StatusBadRequest, "Malformed request body.")
    return
  }
  transactions := make([]*fin.Transaction, len(request.Transactions))
  for i := range request.Transactions {
    trx, err := request.Transactions[i].asTransaction(tenantId)
    if err != nil {
      httpError(w, http.StatusBadRequest, err.Error())
      return
    }
    transactions[i] = trx
  }
  results, err := patternsdb.ApplyPatterns(nil, h.Cache, tenantId, transactions)
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading database.")
    return
  }
  response := struct {
    Transactions []transactionJson `json:"transactions"`
    Results []resultJson `json:"results"`
  }{
      Transactions: make([]transactionJson, len(transactions)),
      Results: make([]resultJson, len(results))}
  for i := range transactions {
    response.Transactions[i] = asTransactionJson(transactions[i])
    response.Results[i] = resultJson{
        Matched: results[i].Matched,
        Verb: results[i].Verb,
        Confidence: results[i].Confidence}
  }
  writeJson(w, response)
}

// ImportHandler saves an uploaded bank file for the active tenant.
type ImportHandler struct {
  SessionStore sessions.Store
  Doer db.Doer
  Store autoimport.SaveTransactionsStore
  Cache patternsdb.Invalidater
  Loaders map[string]autoimport.Loader
}

func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  if r.Method != http.MethodPost {
    httpError(w, http.StatusMethodNotAllowed, "POST required.")
    return
  }
  tenantId, ok := activeTenant(h.SessionStore, r)
  if !ok {
    httpError(w, http.StatusUnauthorized, "No active tenant.")
    return
  }
  file, handler, err := r.FormFile("file")
  if err != nil {
    httpError(w, http.StatusBadRequest, "Missing file.")
    return
  }
  defer file.Close()
  acct := r.FormValue("acct")
  if acct == "" {
    httpError(w, http.StatusBadRequest, "Missing acct.")
    return
  }
  var startDate time.Time
  if startStr := r.FormValue("startDate"); startStr != "" {
    if startDate, err = time.Parse(kDateFormat, startStr); err != nil {
      httpError(w, http.StatusBadRequest, "Malformed startDate.")
      return
    }
  }
  loader := h.Loaders[strings.ToLower(filepath.Ext(handler.Filename))]
  if loader == nil {
    httpError(w, http.StatusBadRequest, "Unsupported file type.")
    return
  }
  batch, err := loader.Load(tenantId, acct, file, startDate)
  if err != nil {
    httpError(w, http.StatusBadRequest, err.Error())
    return
  }
  result, err := autoimport.SaveTransactions(
      h.Doer, h.Store, h.Cache, tenantId, batch)
  if mismatch, ok := err.(*tenants.MismatchError); ok {
    writeMismatch(w, mismatch)
    return
  }
  if err != nil {
    httpError(w, http.StatusInternalServerError, err.Error())
    return
  }
  writeJson(w, struct {
    Saved int `json:"saved"`
    Duplicates int `json:"duplicates"`
  }{Saved: result.SavedCount, Duplicates: result.DuplicateCount})
}

// AnalyzeHandler runs learning for the active tenant.
type AnalyzeHandler struct {
  SessionStore sessions.Store
  Doer db.Doer
  Store learn.Store
  Cache patternsdb.Invalidater
  Learner *learn.Learner
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  if r.Method != http.MethodPost {
    httpError(w, http.StatusMethodNotAllowed, "POST required.")
    return
  }
  tenantId, ok := activeTenant(h.SessionStore, r)
  if !ok {
    httpError(w, http.StatusUnauthorized, "No active tenant.")
    return
  }
  var request struct {
    Incremental bool `json:"incremental"`
    WindowDays int `json:"windowDays"`
    MaxSeconds int `json:"maxSeconds"`
  }
  if r.ContentLength != 0 {
    if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
      httpError(w, http.StatusBadRequest, "Malformed request body.")
      return
    }
  }
  options := learn.Options{
      Incremental: request.Incremental,
      Window: time.Duration(request.WindowDays) * 24 * time.Hour,
      MaxDuration: time.Duration(request.MaxSeconds) * time.Second}
  summary, err := h.Learner.Learn(
      h.Doer, h.Store, h.Cache, tenantId, &options)
  if err == learn.ErrInProgress || err == learn.ErrTimeout {
    httpError(w, http.StatusServiceUnavailable, err.Error())
    return
  }
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error learning patterns.")
    return
  }
  writeJson(w, struct {
    PatternCount int `json:"patternCount"`
    Created int `json:"created"`
    Updated int `json:"updated"`
    Conflicts int `json:"conflicts"`
  }{
      PatternCount: summary.PatternCount,
      Created: summary.PatternsCreated,
      Updated: summary.PatternsUpdated,
      Conflicts: summary.Conflicts})
}

// StatsHandler reports on the stored patterns of the active tenant along
// with the recurring verbs in recent history that still lack a pattern.
type StatsHandler struct {
  SessionStore sessions.Store
  Store patternsdb.PatternsRunner
  Txns findb.TransactionsRunner
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
  tenantId, ok := activeTenant(h.SessionStore, r)
  if !ok {
    httpError(w, http.StatusUnauthorized, "No active tenant.")
    return
  }
  stats, err := patternsdb.PatternStats(nil, h.Store, tenantId)
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading database.")
    return
  }
  unlearned, err := unlearnedVerbs(h.Txns, tenantId, stats.Patterns)
  if err != nil {
    httpError(w, http.StatusInternalServerError, "Error reading database.")
    return
  }
  response := struct {
    PatternCount int `json:"patternCount"`
    LastLearned string `json:"lastLearned,omitempty"`
    Patterns []patternJson `json:"patterns"`
    UnlearnedVerbs []verbCountJson `json:"unlearnedVerbs"`
  }{PatternCount: stats.PatternCount, UnlearnedVerbs: unlearned}
  if !stats.LastLearned.IsZero() {
    response.LastLearned = stats.LastLearned.Format(kDateFormat)
  }
  response.Patterns = make([]patternJson, len(stats.Patterns))
  for i, p := range stats.Patterns {
    response.Patterns[i] = patternJson{
        Acct: p.Acct,
        Verb: p.Verb,
        VerbRef: p.VerbRef,
        Compound: p.Compound,
        Reference: p.Reference,
        Debit: p.Debit,
        Credit: p.Credit,
        Occurrences: p.Occurrences,
        Confidence: p.Confidence,
        LastSeen: p.LastSeen.Format(kDateFormat),
        Sample: p.Sample}
  }
  writeJson(w, response)
}

type tenantJson struct {
  Id int64 `json:"id"`
  Name string `json:"name"`
}

type transactionJson struct {
  Id int64 `json:"id,omitempty"`
  Acct string `json:"acct"`
  SeqId string `json:"seqId,omitempty"`
  Date string `json:"date"`
  Desc string `json:"desc"`
  Amount string `json:"amount"`
  Reference string `json:"reference,omitempty"`
  Debit int64 `json:"debit,omitempty"`
  Credit int64 `json:"credit,omitempty"`
}

func (t *transactionJson) asTransaction(tenantId int64) (
    *fin.Transaction, error) {
  result := fin.Transaction{
      Id: t.Id,
      TenantId: tenantId,
      Acct: t.Acct,
      SeqId: t.SeqId,
      Desc: t.Desc,
      Reference: t.Reference,
      Debit: t.Debit,
      Credit: t.Credit}
  var err error
  if t.Date != "" {
    if result.Date, err = time.Parse(kDateFormat, t.Date); err != nil {
      return nil, err
    }
  }
  if t.Amount != "" {
    if result.Amount, err = fin.ParseAmount(t.Amount); err != nil {
      return nil, err
    }
  }
  return &result, nil
}

func asTransactionJson(trx *fin.Transaction) transactionJson {
  result := transactionJson{
      Id: trx.Id,
      Acct: trx.Acct,
      SeqId: trx.SeqId,
      Desc: trx.Desc,
      Amount: fin.FormatAmount(trx.Amount),
      Reference: trx.Reference,
      Debit: trx.Debit,
      Credit: trx.Credit}
  if !trx.Date.IsZero() {
    result.Date = trx.Date.Format(kDateFormat)
  }
  return result
}

type resultJson struct {
  Matched bool `json:"matched"`
  Verb string `json:"verb,omitempty"`
  Confidence float64 `json:"confidence"`
}

type patternJson struct {
  Acct string `json:"acct"`
  Verb string `json:"verb"`
  VerbRef string `json:"verbRef,omitempty"`
  Compound bool `json:"compound"`
  Reference string `json:"reference"`
  Debit int64 `json:"debit"`
  Credit int64 `json:"credit"`
  Occurrences int `json:"occurrences"`
  Confidence float64 `json:"confidence"`
  LastSeen string `json:"lastSeen"`
  Sample string `json:"sample"`
}

type verbCountJson struct {
  Verb string `json:"verb"`
  Occurrences int `json:"occurrences"`
}

// unlearnedVerbs samples recent history for verbs that occur without a
// stored pattern, most popular first.
func unlearnedVerbs(
    store findb.TransactionsRunner,
    tenantId int64,
    patternList []*fin.Pattern) ([]verbCountJson, error) {
  var popularity fin.VerbPopularity
  popConsumer := fin.BuildVerbPopularity(kVerbSampleSize, &popularity)
  collector := &verbCollector{
      Consumer: popConsumer, seen: make(map[string]bool)}
  err := store.Transactions(
      nil, tenantId, nil, consumers.FromGoConsumer(collector))
  if err != nil {
    return nil, err
  }
  popConsumer.Finalize()
  learned := make(map[string]bool, len(patternList))
  for _, p := range patternList {
    learned[p.Verb] = true
  }
  result := make([]verbCountJson, 0, len(collector.verbs))
  for _, verb := range collector.verbs {
    if learned[verb] {
      continue
    }
    result = append(result, verbCountJson{
        Verb: verb, Occurrences: popularity.Popularity(verb)})
  }
  sort.Slice(result, func(i, j int) bool {
    if result[i].Occurrences != result[j].Occurrences {
      return result[i].Occurrences > result[j].Occurrences
    }
    return result[i].Verb < result[j].Verb
  })
  return result, nil
}

// verbCollector gathers the distinct verbs seen while the wrapped
// popularity consumer is still sampling.
type verbCollector struct {
  goconsume.Consumer
  seen map[string]bool
  verbs []string
}

func (v *verbCollector) Consume(ptr interface{}) {
  trx := ptr.(*fin.Transaction)
  if verb, ok := verbs.Extract(trx.Desc); ok && !v.seen[verb.Company] {
    v.seen[verb.Company] = true
    v.verbs = append(v.verbs, verb.Company)
  }
  v.Consumer.Consume(ptr)
}

func activeTenant(
    sessionStore sessions.Store, r *http.Request) (int64, bool) {
  session, err := common.NewTenantSession(sessionStore, r)
  if err != nil {
    return 0, false
  }
  return session.TenantId()
}

func writeJson(w http.ResponseWriter, v interface{}) {
  w.Header().Set("Content-Type", "application/json")
  encoder := json.NewEncoder(w)
  if err := encoder.Encode(v); err != nil {
    httpError(w, http.StatusInternalServerError, "Error writing response.")
  }
}

func writeMismatch(w http.ResponseWriter, mismatch *tenants.MismatchError) {
  w.Header().Set("Content-Type", "application/json")
  w.WriteHeader(http.StatusConflict)
  offending := make([]struct {
    Acct string `json:"acct"`
    TenantId int64 `json:"tenantId"`
    TenantName string `json:"tenantName,omitempty"`
  }, len(mismatch.Offending))
  for i, owner := range mismatch.Offending {
    offending[i].Acct = owner.Acct
    offending[i].TenantId = owner.TenantId
    offending[i].TenantName = owner.TenantName
  }
  json.NewEncoder(w).Encode(struct {
    Error string `json:"error"`
    Offending interface{} `json:"offending"`
  }{Error: mismatch.Error(), Offending: offending})
}

func httpError(w http.ResponseWriter, status int, message string) {
  w.Header().Set("Content-Type", "application/json")
  w.WriteHeader(status)
  json.NewEncoder(w).Encode(struct {
    Error string `json:"error"`
  }{Error: message})
}
