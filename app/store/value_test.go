package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessorsPanicOnWrongVariant(t *testing.T) {
	var v Value = NewList("a")

	assert.Equal(t, KindList, v.Kind())
	assert.Equal(t, "list", v.Kind().String())
	assert.NotPanics(t, func() { AsList(v) })
	assert.Panics(t, func() { AsString(v) })
	assert.Panics(t, func() { AsSet(v) })
}

func TestListPushPop(t *testing.T) {
	l := NewList()
	l.PushBack("b", "c")
	l.PushFront("a", "z")

	assert.Equal(t, []string{"z", "a", "b", "c"}, l.Range(0, -1))
	assert.Equal(t, []string{"z", "a"}, l.PopFront(2))
	assert.Equal(t, []string{"c"}, l.PopBack(1))
	assert.Equal(t, []string{"b"}, l.PopBack(10))
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.PopFront(1))
}

func TestListRange(t *testing.T) {
	l := NewList("a", "b", "c", "d", "e")

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"all", 0, -1, []string{"a", "b", "c", "d", "e"}},
		{"head", 0, 1, []string{"a", "b"}},
		{"tail", -2, -1, []string{"d", "e"}},
		{"stop past end", 3, 100, []string{"d", "e"}},
		{"start before head", -100, 0, []string{"a"}},
		{"inverted", 3, 1, []string{}},
		{"start past end", 5, 10, []string{}},
		{"negative inverted", -1, -3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Range(tt.start, tt.stop))
		})
	}
}

func TestSetMembers(t *testing.T) {
	s := NewSet("b", "a")

	assert.Equal(t, int64(1), s.Add("a", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Members())
	assert.True(t, s.Contains("c"))
	assert.Equal(t, int64(2), s.Remove("a", "x", "c"))
	require.Equal(t, 1, s.Len())
	assert.False(t, s.Contains("a"))
}

func TestArenaGenerations(t *testing.T) {
	a := newArena()

	r1 := a.insert(NewString("one"))
	r2 := a.insert(NewString("two"))
	require.Equal(t, 2, a.len())

	require.True(t, a.remove(r1))
	assert.False(t, a.remove(r1), "double free is reported")
	_, ok := a.get(r1)
	assert.False(t, ok)

	// The freed slot is reused with a new generation.
	r3 := a.insert(NewString("three"))
	assert.Equal(t, r1.index, r3.index)
	assert.NotEqual(t, r1.generation, r3.generation)
	_, ok = a.get(r1)
	assert.False(t, ok, "stale ref must not see the new occupant")

	v, ok := a.get(r2)
	require.True(t, ok)
	assert.Equal(t, "two", AsString(v).Text)

	a.clear()
	assert.Equal(t, 0, a.len())
	assert.Panics(t, func() { a.mustGet(r2) })
}
