package for_sqlite

import (
  "sync"

  "github.com/keep94/appcommon/db"
  "github.com/keep94/appcommon/db/sqlite_db"
  "github.com/keep94/finpatterns/fin/patterns"
  "github.com/keep94/gosqlite/sqlite"
)

func NewCache(db *sqlite_db.Db) *Cache {
  return &Cache{db: db}
}

type patternSetCache struct {
  mutex sync.Mutex
  data map[int64]patterns.PatternSet
}

func (c *patternSetCache) DbGet(db *sqlite_db.Db, tenantId int64) (
    ps patterns.PatternSet, err error) {
  ps, ok := c.getFromCache(tenantId)
  if ok {
    return
  }
  err = db.Do(func(conn *sqlite.Conn) (err error) {
    ps, err = c.load(conn, tenantId)
    return
  })
  return
}

func (c *patternSetCache) Get(conn *sqlite.Conn, tenantId int64) (
    ps patterns.PatternSet, err error) {
  ps, ok := c.getFromCache(tenantId)
  if ok {
    return
  }
  return c.load(conn, tenantId)
}

func (c *patternSetCache) Invalidate(conn *sqlite.Conn, tenantId int64) error {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  delete(c.data, tenantId)
  return nil
}

func (c *patternSetCache) load(conn *sqlite.Conn, tenantId int64) (
    ps patterns.PatternSet, err error) {
  patternList, err := patternsByTenant(conn, tenantId)
  if err != nil {
    return
  }
  ps = patterns.NewPatternSet(patternList)
  c.save(tenantId, ps)
  return
}

func (c *patternSetCache) save(tenantId int64, ps patterns.PatternSet) {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  if c.data == nil {
    c.data = make(map[int64]patterns.PatternSet)
  }
  c.data[tenantId] = ps
}

func (c *patternSetCache) getFromCache(tenantId int64) (
    ps patterns.PatternSet, ok bool) {
  c.mutex.Lock()
  defer c.mutex.Unlock()
  ps, ok = c.data[tenantId]
  return
}

type Cache struct {
  db *sqlite_db.Db
  c patternSetCache
}

func (c *Cache) Get(t db.Transaction, tenantId int64) (
    ps patterns.PatternSet, err error) {
  if t != nil {
    err = sqlite_db.ToDoer(c.db, t).Do(func(conn *sqlite.Conn) (err error) {
      ps, err = c.c.Get(conn, tenantId)
      return
    })
    return
  }
  return c.c.DbGet(c.db, tenantId)
}

func (c *Cache) Invalidate(t db.Transaction, tenantId int64) error {
  return sqlite_db.ToDoer(c.db, t).Do(func(conn *sqlite.Conn) error {
    return c.c.Invalidate(conn, tenantId)
  })
}
