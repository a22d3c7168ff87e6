package helpers

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("post:1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 64 {
		t.Errorf("counter = %d, want 64", counter)
	}
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock("a")
	// Holding "a" must not block "b".
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestKeyedMutex_EntriesDropAfterLastUnlock(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock("ephemeral")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Errorf("lock map holds %d entries after unlock, want 0", len(km.locks))
	}
}

func TestKeyedMutex_ReuseAfterDrop(t *testing.T) {
	km := NewKeyedMutex()
	for i := 0; i < 3; i++ {
		unlock := km.Lock("k")
		unlock()
	}
}
