package exposure

import (
	"sync"
	"testing"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestLedger_Apply(t *testing.T) {
	l := NewLedger()

	assert.Equal(t, 10.0, l.Apply("tok", types.SideBuy, 10))
	assert.Equal(t, 15.5, l.Apply("tok", types.SideBuy, 5.5))
	assert.Equal(t, 5.5, l.Apply("tok", types.SideSell, 10))
	assert.Equal(t, 5.5, l.Get("tok"))
	assert.Equal(t, 0.0, l.Get("other"))
}

func TestLedger_NeverNegative(t *testing.T) {
	l := NewLedger()
	l.Apply("tok", types.SideBuy, 3)

	assert.Equal(t, 0.0, l.Apply("tok", types.SideSell, 8))
	assert.Equal(t, 0.0, l.Apply("fresh", types.SideSell, 1))

	for _, v := range l.Snapshot() {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestLedger_IgnoresNonPositiveFills(t *testing.T) {
	l := NewLedger()
	l.Apply("tok", types.SideBuy, 4)

	assert.Equal(t, 4.0, l.Apply("tok", types.SideBuy, 0))
	assert.Equal(t, 4.0, l.Apply("tok", types.SideSell, -2))
}

func TestLedger_SeedAndSnapshot(t *testing.T) {
	l := NewLedger()
	l.Seed("a", 12)
	l.Seed("b", -3)

	snap := l.Snapshot()
	assert.Equal(t, map[string]float64{"a": 12, "b": 0}, snap)

	snap["a"] = 99
	assert.Equal(t, 12.0, l.Get("a"), "snapshot is a copy")
}

func TestLedger_Concurrent(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Apply("tok", types.SideBuy, 1)
		}()
		go func() {
			defer wg.Done()
			_ = l.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50.0, l.Get("tok"))
}
