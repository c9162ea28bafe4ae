package api_test

import (
  "bytes"
  "encoding/json"
  "fmt"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/keep94/appcommon/date_util"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/apps/patsrv/api"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/findb/for_sqlite"
  "github.com/keep94/finpatterns/fin/findb/sqlite_setup"
  pat_sqlite "github.com/keep94/finpatterns/fin/patterns/patternsdb/for_sqlite"
  "github.com/keep94/gosqlite/sqlite"
  "github.com/keep94/ramstore"
  "github.com/stretchr/testify/assert"
)

func TestSelectTenant(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)

  handler := &api.TenantHandler{
      SessionStore: env.sessionStore, Store: env.store}
  recorder := httptest.NewRecorder()
  handler.ServeHTTP(recorder, jsonRequest(
      "POST", "/api/tenant", `{"tenantId": 1}`, nil))
  assert.Equal(http.StatusOK, recorder.Code)
  var tenant struct {
    Id int64 `json:"id"`
    Name string `json:"name"`
  }
  decodeBody(t, recorder, &tenant)
  assert.Equal(int64(1), tenant.Id)
  assert.Equal("acme", tenant.Name)

  recorder = httptest.NewRecorder()
  handler.ServeHTTP(recorder, jsonRequest(
      "POST", "/api/tenant", `{"tenantId": 99}`, nil))
  assert.Equal(http.StatusNotFound, recorder.Code)
}

func TestApplyNoActiveTenant(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)

  handler := &api.ApplyHandler{
      SessionStore: env.sessionStore, Cache: env.cache}
  recorder := httptest.NewRecorder()
  handler.ServeHTTP(recorder, jsonRequest(
      "POST", "/api/transactions/apply", `{"transactions": []}`, nil))
  assert.Equal(http.StatusUnauthorized, recorder.Code)
}

func TestApply(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)
  env.addPattern(t)
  cookies := env.selectTenant(t, 1)

  handler := &api.ApplyHandler{
      SessionStore: env.sessionStore, Cache: env.cache}
  recorder := httptest.NewRecorder()
  body := `{"transactions": [
      {"acct": "NL01", "date": "2025-05-02",
       "desc": "AIRBNB PAYOUT REF777", "amount": "1800.00"},
      {"acct": "NL01", "date": "2025-05-03",
       "desc": "SVB uitkering", "amount": "900.00"}]}`
  handler.ServeHTTP(recorder, jsonRequest(
      "POST", "/api/transactions/apply", body, cookies))
  assert.Equal(http.StatusOK, recorder.Code)
  var response struct {
    Transactions []struct {
      Reference string `json:"reference"`
      Debit int64 `json:"debit"`
      Credit int64 `json:"credit"`
    } `json:"transactions"`
    Results []struct {
      Matched bool `json:"matched"`
      Verb string `json:"verb"`
      Confidence float64 `json:"confidence"`
    } `json:"results"`
  }
  decodeBody(t, recorder, &response)
  if !assert.Len(response.Results, 2) {
    return
  }
  assert.True(response.Results[0].Matched)
  assert.Equal("AIRBNB", response.Results[0].Verb)
  assert.Equal("BK-2025-131", response.Transactions[0].Reference)
  assert.Equal(int64(1600), response.Transactions[0].Debit)
  assert.Equal(int64(8003), response.Transactions[0].Credit)
  assert.False(response.Results[1].Matched)
  assert.Equal("SVB", response.Results[1].Verb)
  assert.Equal("", response.Transactions[1].Reference)
}

func TestStats(t *testing.T) {
  assert := assert.New(t)
  env := newTestEnv(t)
  defer env.close(t)
  env.addPattern(t)
  env.addTransactions(t, []*fin.Transaction{
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S1",
          Date: date_util.YMD(2025, 4, 1),
          Desc: "AIRBNB PAYOUT REF124",
          Amount: 170000},
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S2",
          Date: date_util.YMD(2025, 3, 10),
          Desc: "KPN factuur",
          Amount: -4720},
      {
          TenantId: 1,
          Acct: "NL01",
          SeqId: "S3",
          Date: date_util.YMD(2025, 4, 10),
          Desc: "KPN factuur",
          Amount: -4720}})
  cookies := env.selectTenant(t, 1)

  handler := &api.StatsHandler{
      SessionStore: env.sessionStore,
      Store: env.patternStore,
      Txns: env.store}
  recorder := httptest.NewRecorder()
  handler.ServeHTTP(recorder, jsonRequest(
      "GET", "/api/patterns/stats", "", cookies))
  assert.Equal(http.StatusOK, recorder.Code)
  var response struct {
    PatternCount int `json:"patternCount"`
    Patterns []struct {
      Acct string `json:"acct"`
      Verb string `json:"verb"`
      Occurrences int `json:"occurrences"`
    } `json:"patterns"`
    UnlearnedVerbs []struct {
      Verb string `json:"verb"`
      Occurrences int `json:"occurrences"`
    } `json:"unlearnedVerbs"`
  }
  decodeBody(t, recorder, &response)
  assert.Equal(1, response.PatternCount)
  if assert.Len(response.Patterns, 1) {
    assert.Equal("NL01", response.Patterns[0].Acct)
    assert.Equal("AIRBNB", response.Patterns[0].Verb)
    assert.Equal(2, response.Patterns[0].Occurrences)
  }

  // AIRBNB already has a pattern; KPN is the recurring verb without one.
  if assert.Len(response.UnlearnedVerbs, 1) {
    assert.Equal("KPN", response.UnlearnedVerbs[0].Verb)
    assert.Equal(2, response.UnlearnedVerbs[0].Occurrences)
  }
}

type testEnv struct {
  dbase *sqlite_db.Db
  doer db.Doer
  store for_sqlite.Store
  patternStore pat_sqlite.Store
  cache *pat_sqlite.Cache
  sessionStore *ramstore.RAMStore
}

func newTestEnv(t *testing.T) *testEnv {
  conn, err := sqlite.Open(":memory:")
  if err != nil {
    t.Fatalf("Error opening database: %v", err)
  }
  dbase := sqlite_db.New(conn)
  err = dbase.Do(func(conn *sqlite.Conn) error {
    return sqlite_setup.SetUpTables(conn)
  })
  if err != nil {
    t.Fatalf("Error creating tables: %v", err)
  }
  env := &testEnv{
      dbase: dbase,
      doer: sqlite_db.NewDoer(dbase),
      store: for_sqlite.New(dbase),
      patternStore: pat_sqlite.New(dbase),
      cache: pat_sqlite.NewCache(dbase),
      sessionStore: ramstore.NewRAMStore(900)}
  acme := fin.Tenant{Name: "acme"}
  err = env.doer.Do(func(dbt db.Transaction) error {
    if err := env.store.AddTenant(dbt, &acme); err != nil {
      return err
    }
    return env.store.AddAccount(dbt, &fin.Account{
        TenantId: acme.Id, Acct: "NL01", Name: "checking", Active: true})
  })
  if err != nil {
    t.Fatalf("Error seeding database: %v", err)
  }
  return env
}

func (e *testEnv) addPattern(t *testing.T) {
  _, _, err := e.patternStore.UpsertPattern(nil, &fin.Pattern{
      TenantId: 1,
      Acct: "NL01",
      Verb: "AIRBNB",
      Reference: "BK-2025-131",
      Debit: 1600,
      Credit: 8003,
      Occurrences: 2,
      Confidence: 0.9,
      LastSeen: date_util.YMD(2025, 4, 1),
      Sample: "AIRBNB PAYOUT REF124",
      Created: date_util.YMD(2025, 5, 1),
      Updated: date_util.YMD(2025, 5, 1)})
  if err != nil {
    t.Fatalf("Error storing pattern: %v", err)
  }
}

func (e *testEnv) addTransactions(
    t *testing.T, transactions []*fin.Transaction) {
  err := e.doer.Do(func(dbt db.Transaction) error {
    return e.store.AddTransactions(dbt, transactions)
  })
  if err != nil {
    t.Fatalf("Error seeding database: %v", err)
  }
}

func (e *testEnv) selectTenant(
    t *testing.T, tenantId int64) []*http.Cookie {
  handler := &api.TenantHandler{
      SessionStore: e.sessionStore, Store: e.store}
  recorder := httptest.NewRecorder()
  handler.ServeHTTP(recorder, jsonRequest(
      "POST", "/api/tenant",
      fmt.Sprintf(`{"tenantId": %d}`, tenantId), nil))
  if recorder.Code != http.StatusOK {
    t.Fatalf("Error selecting tenant: status %d", recorder.Code)
  }
  return recorder.Result().Cookies()
}

func (e *testEnv) close(t *testing.T) {
  if err := e.dbase.Close(); err != nil {
    t.Errorf("Error closing database: %v", err)
  }
}

func jsonRequest(
    method, target, body string, cookies []*http.Cookie) *http.Request {
  request := httptest.NewRequest(
      method, target, bytes.NewBufferString(body))
  request.Header.Set("Content-Type", "application/json")
  for _, cookie := range cookies {
    request.AddCookie(cookie)
  }
  return request
}

func decodeBody(
    t *testing.T, recorder *httptest.ResponseRecorder, v interface{}) {
  if err := json.NewDecoder(recorder.Body).Decode(v); err != nil {
    t.Fatalf("Error decoding response: %v", err)
  }
}
