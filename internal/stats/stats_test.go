package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters_IncrementsAreIndependent(t *testing.T) {
	var c Counters

	c.IncRxGTP()
	c.IncRxGTP()
	c.IncTxGTP()
	c.IncRxEchoRequest()
	c.IncRxIPDropped()

	snap := c.Snapshot()
	assert.Equal(t, uint64(2), snap.RxGTP)
	assert.Equal(t, uint64(1), snap.TxGTP)
	assert.Equal(t, uint64(1), snap.RxEchoRequest)
	assert.Equal(t, uint64(1), snap.RxIPDropped)
	assert.Equal(t, uint64(0), snap.RxEchoResponse)
}

func TestCounters_ConcurrentIncrements(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup

	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.IncRxGTP()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(n), c.Snapshot().RxGTP)
}
