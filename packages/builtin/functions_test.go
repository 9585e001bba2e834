package builtin

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	s := RandomString(20)
	assert.Len(t, s, 20)
	for _, c := range s {
		assert.True(t, strings.ContainsRune(alphanumeric, c), "unexpected rune %q", c)
	}

	assert.Equal(t, "", RandomString(0))
	assert.Equal(t, "", RandomString(-1))
}

func TestRandomText(t *testing.T) {
	s := RandomText("Locust summary", 10)
	require.True(t, strings.HasPrefix(s, "Locust summary "))
	assert.Len(t, strings.TrimPrefix(s, "Locust summary "), 10)
}

func TestRandomInt(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := RandomInt(3, 5)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 5)
	}
	assert.Equal(t, 7, RandomInt(7, 7))
	assert.Equal(t, 7, RandomInt(7, 2))
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestRandomString_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := RandomString(20)
			mu.Lock()
			seen[s] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
