package pkg

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	locks := NewKeyedMutex()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock := locks.Lock("same-key")
			defer unlock()

			counter++
		}()
	}

	wg.Wait()
	assert.Equal(t, 100, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	locks := NewKeyedMutex()

	unlockA := locks.Lock("a")
	defer unlockA()

	// a held lock on one key must not block another key
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()

	<-done
}
