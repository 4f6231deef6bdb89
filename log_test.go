package blockart

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLoggerConcurrent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var hits atomic.Int64
	var last atomic.Value
	SetLogger(func(format string, v ...any) {
		hits.Add(1)
		last.Store(fmt.Sprintf(format, v...))
	})
	Logf("band %d", 3)
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, "band 3", last.Load())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() { Logf("writer %d", i) })
		wg.Go(func() {
			SetLogger(func(string, ...any) { hits.Add(1) })
		})
	}
	wg.Wait()

	SetLogger(nil)
	before := hits.Load()
	Logf("muted")
	assert.Equal(t, before, hits.Load())
}
