package utils

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%v) returned nil", debug)
		}
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("norm^2 = %f, want 1", sum)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("zero vector should be unchanged")
	}
}

func TestKeyedMutexExcludesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	const workers = 8
	const loops = 100
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < loops; j++ {
				unlock := km.Lock("shared")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()
	if counter != workers*loops {
		t.Errorf("counter = %d, want %d", counter, workers*loops)
	}
}

func TestKeyedMutexReleasesIdleEntries(t *testing.T) {
	km := NewKeyedMutex()
	for i := 0; i < 50; i++ {
		unlock := km.Lock(fmt.Sprintf("key-%d", i))
		unlock()
	}
	km.mu.Lock()
	n := len(km.locks)
	km.mu.Unlock()
	if n != 0 {
		t.Errorf("%d lock entries retained after release, want 0", n)
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string should be unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %q", Truncate("hello world", 5))
	}
	if Truncate("hello", 0) != "hello" {
		t.Error("maxLen 0 should be a no-op")
	}
}
