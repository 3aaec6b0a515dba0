package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeGrid tests the tile grid math for representative page counts.
func TestComputeGrid(t *testing.T) {
	tests := []struct {
		name     string
		maxPages int
	}{
		{name: "single page", maxPages: 1},
		{name: "short paper", maxPages: 6},
		{name: "long paper", maxPages: 42},
		{name: "zero pages treated as one", maxPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := ComputeGrid(3840, 2160, tt.maxPages)

			assert.Positive(t, grid.Columns)
			assert.Positive(t, grid.Rows)
			assert.Positive(t, grid.TileWidth)
			assert.Positive(t, grid.TileHeight)

			// Every page must have a tile.
			pages := max(tt.maxPages, 1)
			assert.GreaterOrEqual(t, grid.Columns*grid.Rows, pages)

			// Tiles must not overflow the frame.
			assert.LessOrEqual(t, grid.Columns*grid.TileWidth, 3840)
			assert.LessOrEqual(t, grid.Rows*grid.TileHeight, 2160)
		})
	}
}

// TestComputeGridMorePagesMoreTiles verifies grids grow with the page count.
func TestComputeGridMorePagesMoreTiles(t *testing.T) {
	small := ComputeGrid(3840, 2160, 2)
	large := ComputeGrid(3840, 2160, 40)

	assert.Greater(t, large.Columns*large.Rows, small.Columns*small.Rows)
	assert.Less(t, large.TileWidth, small.TileWidth)
}

// TestGridString tests the WxH form consumed by the layout tool.
func TestGridString(t *testing.T) {
	grid := Grid{Columns: 4, Rows: 3}
	assert.Equal(t, "4x3", grid.String())
}
