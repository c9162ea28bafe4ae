// Package consumers contains useful consumers of fin.Transaction values.
package consumers

import (
  "github.com/keep94/finpatterns/fin"
  "github.com/keep94/goconsume"
  "github.com/keep94/gofunctional3/consume"
  "github.com/keep94/gofunctional3/functional"
)

// TransactionAggregator aggregates Transaction values.
type TransactionAggregator interface {
  Include(trx *fin.Transaction)
}

// FromTransactionAggregator converts a TransactionAggregator to a Consumer
// of fin.Transaction values.
func FromTransactionAggregator(
    aggregator TransactionAggregator) functional.Consumer {
  return trxAggregatorConsumer{aggregator: aggregator}
}

// FromGoConsumer converts a goconsume.Consumer of *fin.Transaction values
// to a Consumer of fin.Transaction values. The goconsume consumer sees a
// pointer that is only valid for the duration of its Consume call.
func FromGoConsumer(gc goconsume.Consumer) functional.Consumer {
  return goConsumerConsumer{gc: gc}
}

// Compose creates a new Consumer of fin.Transaction values out of each
// Consumer in consumers.
func Compose(consumers ...functional.Consumer) functional.Consumer {
  return functional.CompositeConsumer(&fin.Transaction{}, nil, consumers...)
}

// TransactionBuffer stores fin.Transaction instances fetched from database.
type TransactionBuffer struct {
  *consume.Buffer
}

// NewTransactionBuffer creates a TransactionBuffer that can store up to
// capacity fin.Transaction instances.
func NewTransactionBuffer(capacity int) TransactionBuffer {
  return TransactionBuffer{consume.NewBuffer(make([]fin.Transaction, capacity))}
}

// Transactions returns the transactions gathered from last database fetch.
// Returned array valid until next call to Consume.
func (t TransactionBuffer) Transactions() []fin.Transaction {
  return t.Values().([]fin.Transaction)
}

type trxAggregatorConsumer struct {
  aggregator TransactionAggregator
}

func (t trxAggregatorConsumer) Consume(s functional.Stream) (err error) {
  var trx fin.Transaction
  for err = s.Next(&trx); err == nil; err = s.Next(&trx) {
    t.aggregator.Include(&trx)
  }
  if err == functional.Done {
    err = nil
  }
  return
}

type goConsumerConsumer struct {
  gc goconsume.Consumer
}

func (g goConsumerConsumer) Consume(s functional.Stream) (err error) {
  var trx fin.Transaction
  for g.gc.CanConsume() {
    if err = s.Next(&trx); err != nil {
      break
    }
    g.gc.Consume(&trx)
  }
  if err == functional.Done {
    err = nil
  }
  return
}
