package main

import (
  "flag"
  "fmt"
  "io/ioutil"
  "net/http"

  "github.com/gorilla/context"
  "github.com/gorilla/sessions"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/appcommon/http_util"
  "github.com/keep94/appcommon/logging"
  "github.com/keep94/finpatterns/apps/patsrv/api"
  "github.com/keep94/finpatterns/fin/autoimport"
  "github.com/keep94/finpatterns/fin/autoimport/csvimp"
  "github.com/keep94/finpatterns/fin/autoimport/mt940"
  seq_sqlite "github.com/keep94/finpatterns/fin/autoimport/seqdb/for_sqlite"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/finpatterns/fin/findb/for_sqlite"
  "github.com/keep94/finpatterns/fin/findb/sqlite_setup"
  "github.com/keep94/finpatterns/fin/learn"
  pat_sqlite "github.com/keep94/finpatterns/fin/patterns/patternsdb/for_sqlite"
  "github.com/keep94/gosqlite/sqlite"
  "github.com/keep94/ramstore"
  "github.com/keep94/weblogs"
  "gopkg.in/yaml.v2"
)

const (
  kDefaultSessionTimeout = 900
)

var (
  fConfig string
  fDb string
  fPort string
  fTitle string
)

var (
  kDoer db.Doer
  kStore for_sqlite.Store
  kReadOnlyStore for_sqlite.ReadOnlyStore
  kCache *pat_sqlite.Cache
  kUploaders map[string]autoimport.Loader
  kLearnStore learnStore
  kLearner learn.Learner
  kSessionStore sessions.Store
)

type config struct {
  Port string `yaml:"port"`
  Db string `yaml:"db"`
  SessionTimeout int `yaml:"session_timeout"`
  Title string `yaml:"title"`
}

func main() {
  flag.Parse()
  conf := readConfig(fConfig)
  if conf.Db == "" {
    fmt.Println("Need to specify at least -db flag.")
    flag.Usage()
    return
  }
  setupDb(conf.Db)
  kSessionStore = ramstore.NewRAMStore(conf.SessionTimeout)

  http.HandleFunc("/", rootHandler)
  http.Handle(
      "/api/tenant",
      &api.TenantHandler{SessionStore: kSessionStore, Store: kReadOnlyStore})
  http.Handle(
      "/api/tenants", &api.TenantsHandler{Store: kReadOnlyStore})
  http.Handle(
      "/api/transactions/apply",
      &api.ApplyHandler{SessionStore: kSessionStore, Cache: kCache})
  http.Handle(
      "/api/import",
      &api.ImportHandler{
          SessionStore: kSessionStore,
          Doer: kDoer,
          Store: kStore,
          Cache: kCache,
          Loaders: kUploaders})
  http.Handle(
      "/api/analyze",
      &api.AnalyzeHandler{
          SessionStore: kSessionStore,
          Doer: kDoer,
          Store: kLearnStore,
          Cache: kCache,
          Learner: &kLearner})
  http.Handle(
      "/api/patterns/stats",
      &api.StatsHandler{
          SessionStore: kSessionStore,
          Store: kLearnStore,
          Txns: kReadOnlyStore})

  defaultHandler := context.ClearHandler(
      weblogs.HandlerWithOptions(
          http.DefaultServeMux,
          &weblogs.Options{Logger: logging.ApacheCommonLoggerWithLatency()}))
  if err := http.ListenAndServe(conf.Port, defaultHandler); err != nil {
    fmt.Println(err)
  }
}

type learnStore struct {
  findb.TransactionsRunner
  pat_sqlite.Store
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
  if r.URL.Path == "/" {
    http_util.Redirect(w, r, "/api/patterns/stats")
  } else {
    http_util.Error(w, http.StatusNotFound)
  }
}

func init() {
  flag.StringVar(&fConfig, "config", "", "Path to yaml configuration file")
  flag.StringVar(&fDb, "db", "", "Path to database file")
  flag.StringVar(&fPort, "http", ":8080", "Port to bind")
  flag.StringVar(&fTitle, "title", "Patterns", "Application title")
}

func readConfig(filepath string) config {
  conf := config{
      Port: fPort,
      Db: fDb,
      SessionTimeout: kDefaultSessionTimeout,
      Title: fTitle}
  if filepath == "" {
    return conf
  }
  contents, err := ioutil.ReadFile(filepath)
  if err != nil {
    panic(err.Error())
  }
  if err := yaml.Unmarshal(contents, &conf); err != nil {
    panic(err.Error())
  }
  return conf
}

func setupDb(filepath string) {
  conn, err := sqlite.Open(filepath)
  if err != nil {
    panic(err.Error())
  }
  dbase := sqlite_db.New(conn)
  err = dbase.Do(func(conn *sqlite.Conn) error {
    return sqlite_setup.SetUpTables(conn)
  })
  if err != nil {
    panic(err.Error())
  }
  seqdata := seq_sqlite.New(dbase)
  kDoer = sqlite_db.NewDoer(dbase)
  kStore = for_sqlite.New(dbase)
  kReadOnlyStore = for_sqlite.ReadOnlyWrapper(kStore)
  kCache = pat_sqlite.NewCache(dbase)
  kLearnStore = learnStore{
      TransactionsRunner: kStore, Store: pat_sqlite.New(dbase)}
  csvLoader := csvimp.CsvLoader{Store: seqdata}
  mt940Loader := mt940.MT940Loader{Store: seqdata}
  kUploaders = map[string]autoimport.Loader{
      ".csv": csvLoader,
      ".940": mt940Loader,
      ".mt940": mt940Loader,
      ".sta": mt940Loader}
}
