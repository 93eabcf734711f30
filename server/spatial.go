package main

// SpatialCellSize is the uniform hash grid cell size (SPEC_FULL §4.3).
const SpatialCellSize = 50.0

// EntityRef identifies an entity in the grid via a tagged variant, per
// SPEC_FULL §9's dynamic-dispatch guidance ("encode entity kind as a
// tagged variant... the broad-phase candidate list carries the kind
// tag"). Idx indexes into the corresponding flat list on GameState.
type EntityRef struct {
	Kind byte // 't'=tank, 's'=shell, 'u'=upgrade, 'r'=tree
	Idx  int
}

const (
	KindTank    byte = 't'
	KindShell   byte = 's'
	KindUpgrade byte = 'u'
	KindTree    byte = 'r'
)

// SpatialGrid is a uniform hash grid for broad-phase collision queries.
// Unlike the teacher's fixed 4000x4000-assuming array, this grid is
// parameterized by world size at construction — the teacher's own
// spatial_test.go already expected a NewSpatialGrid(width, height)
// constructor that its shipped spatial.go never defined; this
// implementation supplies it so query behavior matches what the test
// pack exercises.
type SpatialGrid struct {
	cols, rows int
	cells      [][]EntityRef
}

// NewSpatialGrid builds a grid sized to cover [0,width] x [0,height].
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(width/SpatialCellSize) + 1
	rows := int(height/SpatialCellSize) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]EntityRef, cols*rows),
	}
}

// Clear resets all cells, keeping allocated capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellCoord(x, y float64) (int, int) {
	cx := int(x / SpatialCellSize)
	cy := int(y / SpatialCellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

func (g *SpatialGrid) cellIdx(x, y float64) int {
	cx, cy := g.cellCoord(x, y)
	return cy*g.cols + cx
}

// Insert adds an entity reference at a single point.
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	idx := g.cellIdx(x, y)
	g.cells[idx] = append(g.cells[idx], ref)
}

func (g *SpatialGrid) boxRange(x, y, radius float64) (minCX, maxCX, minCY, maxCY int) {
	minCX = int((x - radius) / SpatialCellSize)
	maxCX = int((x + radius) / SpatialCellSize)
	minCY = int((y - radius) / SpatialCellSize)
	maxCY = int((y + radius) / SpatialCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	return
}

// InsertCircle adds an entity reference to every cell overlapping its
// bounding box, so multi-cell entities are found from any touching cell.
func (g *SpatialGrid) InsertCircle(x, y, radius float64, ref EntityRef) {
	minCX, maxCX, minCY, maxCY := g.boxRange(x, y, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// Query returns the union of all cells overlapping the given circle.
func (g *SpatialGrid) Query(x, y, radius float64) []EntityRef {
	return g.QueryBuf(x, y, radius, nil)
}

// QueryBuf appends results to buf and returns the extended slice,
// avoiding a per-call allocation in the hot collision pass.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []EntityRef) []EntityRef {
	minCX, maxCX, minCY, maxCY := g.boxRange(x, y, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			buf = append(buf, g.cells[idx]...)
		}
	}
	return buf
}
