package fin

import (
  "testing"

  "github.com/stretchr/testify/assert"
)

func TestVerbPopularity(t *testing.T) {
  assert := assert.New(t)
  var popularities VerbPopularity
  consumer := BuildVerbPopularity(3, &popularities)
  var trx Transaction

  // No usable verb token doesn't count
  trx.Desc = "G-TSRA3I6SK2CWXW77AMV5QPJULEJMB4S5 0047114711"
  assert.True(consumer.CanConsume())
  consumer.Consume(&trx)

  trx.Desc = "AIRBNB PAYOUT REF123"
  assert.True(consumer.CanConsume())
  consumer.Consume(&trx)

  trx.Desc = "AIRBNB PAYOUT REF124"
  assert.True(consumer.CanConsume())
  consumer.Consume(&trx)

  trx.Desc = "SVB uitkering"
  assert.True(consumer.CanConsume())
  consumer.Consume(&trx)

  assert.False(consumer.CanConsume())

  assert.Nil(popularities)
  consumer.Finalize()
  assert.NotNil(popularities)
  assert.False(consumer.CanConsume())

  assert.Equal(2, popularities.Popularity("AIRBNB"))
  assert.Equal(1, popularities.Popularity("SVB"))
  assert.Equal(0, popularities.Popularity("KPN"))
}
