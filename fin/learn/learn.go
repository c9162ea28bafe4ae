// Package learn rebuilds stored patterns from transaction history.
package learn

import (
  "errors"
  "log"
  "sync"
  "time"

  "github.com/keep94/appcommon/date_util"
  "github.com/keep94/appcommon/db"
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/finpatterns/fin/consumers"
  "github.com/keep94/finpatterns/fin/findb"
  "github.com/keep94/finpatterns/fin/patterns"
  "github.com/keep94/finpatterns/fin/patterns/patternsdb"
  "github.com/keep94/goconsume"
)

const (
  kDefaultWindow = 2 * 365 * 24 * time.Hour
)

var (
  ErrInProgress = errors.New("learn: Learning already in progress for tenant.")
  ErrTimeout = errors.New("learn: Deadline exceeded.")
)

// Store is what Learn needs from the persistence layer.
type Store interface {
  findb.TransactionsRunner
  patternsdb.PatternsRunner
  patternsdb.PatternUpserter
}

// Options configures a single learning run. The zero value means a full
// rebuild over the default two year window with no deadline.
type Options struct {
  // Incremental seeds learning with the stored patterns so that only
  // history newer than each pattern's last seen date is folded in. Full
  // learning, the default, rebuilds every pattern from history alone and
  // is the correctness baseline; incremental runs approximate it.
  Incremental bool

  // Window bounds how far back learning reads history. Zero means the
  // default two year window.
  Window time.Duration

  // MaxDuration bounds how long a run may take. A run past its deadline
  // stops reading history and returns ErrTimeout without writing
  // anything. Zero means no deadline.
  MaxDuration time.Duration

  // Consolidator resolves conflicting history. nil means
  // patterns.MostRecent.
  Consolidator patterns.Consolidator

  // Clock is for testing. nil means the system clock.
  Clock date_util.Clock
}

// Summary reports what a learning run wrote.
type Summary struct {
  // PatternCount is the number of patterns the run produced.
  PatternCount int

  // PatternsCreated is how many of those were new.
  PatternsCreated int

  // PatternsUpdated is how many existing patterns changed. Patterns whose
  // data came out byte for byte identical count in neither figure.
  PatternsUpdated int

  // Conflicts is the number of pattern keys whose history disagreed on at
  // least one field.
  Conflicts int
}

// Learner runs learning for tenants. At most one run per tenant is in
// flight at a time; a second concurrent run for the same tenant returns
// ErrInProgress immediately. Runs for different tenants proceed
// independently. The zero value is ready to use.
type Learner struct {
  mutex sync.Mutex
  inFlight map[int64]bool
}

// Learn rebuilds the stored patterns of tenantId from its transaction
// history. Reading history, writing patterns, and invalidating the
// pattern cache for tenantId all happen in a single database
// transaction. Learning twice over the same history writes nothing the
// second time. options may be nil.
func (l *Learner) Learn(
    doer db.Doer,
    store Store,
    cache patternsdb.Invalidater,
    tenantId int64,
    options *Options) (summary Summary, err error) {
  if options == nil {
    options = &Options{}
  }
  if !l.start(tenantId) {
    return Summary{}, ErrInProgress
  }
  defer l.finish(tenantId)
  clock := options.Clock
  if clock == nil {
    clock = date_util.SystemClock{}
  }
  window := options.Window
  if window == 0 {
    window = kDefaultWindow
  }
  now := clock.Now()
  var deadline time.Time
  if options.MaxDuration > 0 {
    deadline = now.Add(options.MaxDuration)
  }
  err = doer.Do(func(t db.Transaction) error {
    builder := patterns.NewBuilder(tenantId, options.Consolidator)
    if options.Incremental {
      stored, err := store.Patterns(t, tenantId)
      if err != nil {
        return err
      }
      for _, p := range stored {
        builder.Seed(p)
      }
    }
    start := now.Add(-window)
    trxOptions := findb.TransactionListOptions{
        Start: &start, FullySpecified: true}
    bc := &builderConsumer{builder: builder}
    dc := &deadlineConsumer{
        Consumer: bc, clock: clock, deadline: deadline}
    err := store.Transactions(
        t, tenantId, &trxOptions, consumers.FromGoConsumer(dc))
    if err != nil {
      return err
    }
    if dc.expired {
      return ErrTimeout
    }
    built := builder.Build()
    summary.PatternCount = len(built)
    for _, key := range builder.Conflicts() {
      summary.Conflicts++
      log.Printf("learn: conflicting history for %s", key)
    }
    for _, p := range built {
      p.Created = now
      p.Updated = now
      created, updated, err := store.UpsertPattern(t, p)
      if err != nil {
        return err
      }
      if created {
        summary.PatternsCreated++
      }
      if updated {
        summary.PatternsUpdated++
      }
    }
    if summary.PatternsCreated > 0 || summary.PatternsUpdated > 0 {
      return cache.Invalidate(t, tenantId)
    }
    return nil
  })
  if err != nil {
    summary = Summary{}
  }
  return
}

func (l *Learner) start(tenantId int64) bool {
  l.mutex.Lock()
  defer l.mutex.Unlock()
  if l.inFlight[tenantId] {
    return false
  }
  if l.inFlight == nil {
    l.inFlight = make(map[int64]bool)
  }
  l.inFlight[tenantId] = true
  return true
}

func (l *Learner) finish(tenantId int64) {
  l.mutex.Lock()
  defer l.mutex.Unlock()
  delete(l.inFlight, tenantId)
}

type builderConsumer struct {
  builder *patterns.Builder
}

func (b *builderConsumer) CanConsume() bool {
  return true
}

func (b *builderConsumer) Consume(ptr interface{}) {
  b.builder.Include(ptr.(*fin.Transaction))
}

type deadlineConsumer struct {
  goconsume.Consumer
  clock date_util.Clock
  deadline time.Time
  expired bool
}

func (d *deadlineConsumer) CanConsume() bool {
  if !d.deadline.IsZero() && !d.clock.Now().Before(d.deadline) {
    d.expired = true
    return false
  }
  return d.Consumer.CanConsume()
}
