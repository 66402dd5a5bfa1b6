package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		items     int
		size      int
		wantSizes []int
	}{
		{name: "empty input yields no chunks", items: 0, size: 20000, wantSizes: nil},
		{name: "small input fits one chunk", items: 5, size: 20000, wantSizes: []int{5}},
		{name: "exact multiple splits evenly", items: 40000, size: 20000, wantSizes: []int{20000, 20000}},
		{name: "season reset churn splits with remainder", items: 45000, size: 20000, wantSizes: []int{20000, 20000, 5000}},
		{name: "boundary plus one", items: 20001, size: 20000, wantSizes: []int{20000, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.items)
			for i := range items {
				items[i] = i
			}

			chunks := chunk(items, tt.size)

			require.Len(t, chunks, len(tt.wantSizes))
			total := 0
			for i, c := range chunks {
				assert.Len(t, c, tt.wantSizes[i])
				total += len(c)
			}
			assert.Equal(t, tt.items, total)
		})
	}
}

func TestChunkPreservesOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	chunks := chunk(items, 2)

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"c", "d"}, chunks[1])
	assert.Equal(t, []string{"e"}, chunks[2])
}
