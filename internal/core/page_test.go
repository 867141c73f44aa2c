package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPageCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 8: 1, 9: 2, 16: 2, 17: 3}
	for n, want := range cases {
		assert.Equal(t, want, PageCount(n), "n=%d", n)
	}
}

func TestPaginate(t *testing.T) {
	t.Run("empty set yields empty first page", func(t *testing.T) {
		p := Paginate([]int{}, 3)
		assert.Equal(t, 1, p.Number)
		assert.Empty(t, p.Items)
		assert.Equal(t, 0, p.First)
		assert.Equal(t, 0, p.Last)
		assert.False(t, p.HasNext())
		assert.False(t, p.HasPrev())
	})

	t.Run("last partial page", func(t *testing.T) {
		p := Paginate(numbers(20), 3)
		assert.Equal(t, []int{17, 18, 19, 20}, p.Items)
		assert.Equal(t, 17, p.First)
		assert.Equal(t, 20, p.Last)
		assert.Equal(t, 3, p.Pages)
		assert.True(t, p.HasPrev())
		assert.False(t, p.HasNext())
	})

	t.Run("clamped above and below", func(t *testing.T) {
		assert.Equal(t, 3, Paginate(numbers(20), 99).Number)
		assert.Equal(t, 1, Paginate(numbers(20), -4).Number)
	})
}
