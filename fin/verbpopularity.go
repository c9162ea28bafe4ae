package fin

import (
  "github.com/keep94/finpatterns/fin/verbs"
  "github.com/keep94/goconsume"
)

// VerbPopularity tells how often each verb occurs in consumed history.
// Operators use it to spot recurring counterparties that still lack a
// learned pattern.
type VerbPopularity interface {

  // Popularity returns how many consumed transactions carried verb.
  // The higher the return value the more popular the verb.
  Popularity(verb string) int
}

// BuildVerbPopularity returns a consumer that consumes Transaction values
// to build a VerbPopularity instance. The returned consumer consumes at
// most maxTransactionsToRead values with an extractable verb and skips
// values with no usable verb token. Caller must call Finalize on returned
// consumer for the built VerbPopularity instance to be stored at
// verbPopularity.
func BuildVerbPopularity(
    maxTransactionsToRead int,
    verbPopularity *VerbPopularity) goconsume.ConsumeFinalizer {
  popularities := make(verbPopularityMap)
  consumer := goconsume.Slice(popularities, 0, maxTransactionsToRead)
  consumer = goconsume.Filter(consumer, hasVerb)
  return &verbPopularityConsumer{
    Consumer: consumer, popularities: popularities, result: verbPopularity}
}

type verbPopularityMap map[string]int

func (v verbPopularityMap) Popularity(verb string) int {
  return v[verb]
}

func (v verbPopularityMap) CanConsume() bool {
  return true
}

func (v verbPopularityMap) Consume(ptr interface{}) {
  trx := ptr.(*Transaction)
  if verb, ok := verbs.Extract(trx.Desc); ok {
    v[verb.Company]++
  }
}

func hasVerb(ptr interface{}) bool {
  trx := ptr.(*Transaction)
  _, ok := verbs.Extract(trx.Desc)
  return ok
}

type verbPopularityConsumer struct {
  goconsume.Consumer
  popularities verbPopularityMap
  result *VerbPopularity
  finalized bool
}

func (v *verbPopularityConsumer) Finalize() {
  if v.finalized {
    return
  }
  v.finalized = true
  v.Consumer = goconsume.Nil()
  *v.result = v.popularities
}
