package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight[[]string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			games, err, _ := g.Do("schedule:nba", func() ([]string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return []string{"g1"}, nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if len(games) != 1 {
				t.Errorf("unexpected result %v", games)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ErrorAndZeroValue(t *testing.T) {
	var g SingleFlight[[]byte]
	boom := errors.New("boom")

	body, err, shared := g.Do("k", func() ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) || body != nil || shared {
		t.Fatalf("unexpected result: %v %v %v", body, err, shared)
	}

	g.Forget("k")
	body, err, _ = g.Do("k", func() ([]byte, error) { return []byte("ok"), nil })
	if err != nil || string(body) != "ok" {
		t.Fatalf("expected fresh call after error, got %q %v", body, err)
	}
}
