package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	assert.True(t, Any.Match(Idle))
	assert.True(t, Any.Match(State(42)), "wildcard matches any value")
	assert.True(t, Any.IsAny())
	assert.Equal(t, "*", Any.String())

	in := In(Idle)
	assert.True(t, in.Match(Idle))
	assert.False(t, in.Match(State(7)))
	assert.False(t, in.IsAny())

	var zero Filter
	assert.False(t, zero.Match(Idle))
	assert.False(t, In().Match(Idle))
}

func TestFilter_InCopiesArgs(t *testing.T) {
	states := []State{Idle}
	f := In(states...)
	states[0] = State(9)
	assert.True(t, f.Match(Idle))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.True(t, Idle.Valid())
	assert.False(t, State(9).Valid())
}

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Equal(t, Idle, s.Get(100))

	require.Error(t, s.Set(100, State(9)))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Set(100, Idle))
	assert.Equal(t, Idle, s.Get(100))
	assert.Equal(t, 0, s.Len(), "idle chats are not stored")

	s.Reset(100)
	assert.Equal(t, Idle, s.Get(100))
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.Set(id, Idle)
			_ = s.Get(id)
			s.Reset(id)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}
