package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// A mixed workload of concurrent Set/Get/Peek/Remove/Tick/Maintain on random
// keys. Should pass under `-race` without detector reports.
func TestRace_Basic(t *testing.T) {
	c := New[string, []byte](Options[string, []byte]{
		Capacity: 8_192,
		Shards:   32,
		MaxAge:   4,
		Cost:     func(v []byte) int { return len(v) },
		MaxCost:  1 << 20,
	})
	t.Cleanup(func() { _ = c.Close() })

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch n := r.Intn(100); {
				case n < 5:
					c.Remove(k)
				case n < 7:
					c.Tick()
				case n < 9:
					c.Maintain()
				case n < 20:
					c.Set(k, make([]byte, 1+r.Intn(64)))
				case n < 25:
					c.Peek(k)
				default:
					c.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	st := c.Stats()
	if st.Len != c.Len() {
		t.Fatalf("Stats.Len = %d, Len = %d", st.Len, c.Len())
	}
	if st.Cost > 1<<20 {
		t.Fatalf("cost %d over budget", st.Cost)
	}
}

// One hundred goroutines call GetOrLoad on the same key concurrently.
// The Loader should run at most once (singleflight coalescing).
func TestRace_GetOrLoad(t *testing.T) {
	var calls int64

	c := New[string, string](Options[string, string]{
		Capacity: 1024,
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(2 * time.Millisecond) // simulate rasterization
			return "v:" + k, nil
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	const goroutines = 100
	key := "same-key"

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrLoad(context.Background(), key)
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if v != "v:"+key {
				t.Errorf("unexpected value: %q", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("loader should run at most once, got %d", got)
	}

	// Subsequent call should be a pure cache hit.
	if v, err := c.GetOrLoad(context.Background(), key); err != nil || v != "v:"+key {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}
