package core

import (
	"fmt"
	"math"
)

// a4Ratio is the width/height ratio of A4 paper.
const a4Ratio = 0.7070

// Grid describes the page-tile layout of one frame: every page of the
// largest revision fits into a columns x rows grid of tiles at (close to)
// the A4 aspect ratio, filling the target video dimensions.
type Grid struct {
	Columns    int
	Rows       int
	TileWidth  int
	TileHeight int
}

// String renders the grid in the WxH form the layout tool expects.
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Columns, g.Rows)
}

// ComputeGrid sizes the tile grid so maxPages A4 pages fill a totalWidth x
// totalHeight frame. Tile counts are ceiled to integers and the tile size
// recomputed from them, which slightly distorts the A4 ratio but avoids
// half-visible pages.
func ComputeGrid(totalWidth, totalHeight, maxPages int) Grid {
	if maxPages < 1 {
		maxPages = 1
	}

	tileHeight := math.Sqrt(float64(totalWidth) * float64(totalHeight) / (a4Ratio * float64(maxPages)))
	tileWidth := tileHeight * a4Ratio

	columns := int(math.Ceil(float64(totalWidth) / tileWidth))
	rows := int(math.Ceil(float64(totalHeight) / tileHeight))

	return Grid{
		Columns:    columns,
		Rows:       rows,
		TileWidth:  totalWidth / columns,
		TileHeight: totalHeight / rows,
	}
}
