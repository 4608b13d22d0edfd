// Package grid tracks a 2D selection cursor over rows of varying width.
//
// Rows are laid out left to right, top to bottom. Each cell is bound to the
// logical ID of the thing rendered there, so Submit resolves to an ID
// instead of a widget. After every mutation the cursor is inside the grid,
// or at {0,0} when the grid is empty.
package grid

// Direction of a navigation input.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Cursor is a cell position.
type Cursor struct {
	Col int
	Row int
}

// Controller owns the cursor and the per-row widths for one rendered grid.
// It is not safe for concurrent use.
type Controller struct {
	cursor Cursor
	widths []int
	cells  map[Cursor]string
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{cells: make(map[Cursor]string)}
}

// Cursor returns the current position.
func (c *Controller) Cursor() Cursor { return c.cursor }

// Rows returns the number of rows.
func (c *Controller) Rows() int { return len(c.widths) }

// Width returns the width of row, or 0 when row does not exist.
func (c *Controller) Width(row int) int {
	if row < 0 || row >= len(c.widths) {
		return 0
	}
	return c.widths[row]
}

// Widths returns a copy of the row widths.
func (c *Controller) Widths() []int {
	out := make([]int, len(c.widths))
	copy(out, c.widths)
	return out
}

// Empty reports whether nothing has been placed.
func (c *Controller) Empty() bool { return len(c.widths) == 0 }

// Reset drops all rows and bindings and puts the cursor at the origin.
func (c *Controller) Reset() {
	c.widths = c.widths[:0]
	c.cells = make(map[Cursor]string)
	c.cursor = Cursor{}
}

// Place records a cell at (col, row) bound to id. A row index equal to the
// current row count starts a new row of width one; an existing row grows by
// one. Rows must be placed in order; a row index further ahead is folded
// onto the next new row.
func (c *Controller) Place(col, row int, id string) {
	if row < 0 {
		row = 0
	}
	switch {
	case row < len(c.widths):
		c.widths[row]++
	default:
		row = len(c.widths)
		c.widths = append(c.widths, 1)
	}
	if col < 0 || col >= c.widths[row] {
		col = c.widths[row] - 1
	}
	c.cells[Cursor{Col: col, Row: row}] = id
	c.Clamp()
}

// AppendRow adds a full row of cells below the existing ones.
func (c *Controller) AppendRow(ids ...string) {
	if len(ids) == 0 {
		return
	}
	row := len(c.widths)
	for col, id := range ids {
		c.Place(col, row, id)
	}
}

// LayoutFlat places ids into rows of at most columns cells. The last row
// may be narrower.
func (c *Controller) LayoutFlat(ids []string, columns int) {
	if columns <= 0 {
		columns = 1
	}
	base := len(c.widths)
	for i, id := range ids {
		c.Place(i%columns, base+i/columns, id)
	}
}

// Move shifts the cursor one cell in dir, clamping at the edges. It reports
// whether the cursor changed.
func (c *Controller) Move(dir Direction) bool {
	if len(c.widths) == 0 {
		return false
	}
	before := c.cursor
	switch dir {
	case DirLeft:
		c.cursor.Col--
	case DirRight:
		c.cursor.Col++
	case DirUp:
		c.cursor.Row--
	case DirDown:
		c.cursor.Row++
	}
	c.Clamp()
	return c.cursor != before
}

// Select moves the cursor to (col, row), clamped into the grid.
func (c *Controller) Select(col, row int) {
	c.cursor = Cursor{Col: col, Row: row}
	c.Clamp()
}

// SelectID moves the cursor onto the cell bound to id. It reports whether
// such a cell exists.
func (c *Controller) SelectID(id string) bool {
	for pos, bound := range c.cells {
		if bound == id {
			c.cursor = pos
			return true
		}
	}
	return false
}

// Clamp repairs the cursor after rows changed underneath it.
func (c *Controller) Clamp() {
	if len(c.widths) == 0 {
		c.cursor = Cursor{}
		return
	}
	c.cursor.Row = clamp(c.cursor.Row, 0, len(c.widths)-1)
	c.cursor.Col = clamp(c.cursor.Col, 0, c.widths[c.cursor.Row]-1)
}

// At returns the id bound at pos.
func (c *Controller) At(pos Cursor) (string, bool) {
	id, ok := c.cells[pos]
	return id, ok
}

// Submit returns the id bound under the cursor. It is a no-op on an empty
// grid.
func (c *Controller) Submit() (string, bool) {
	if len(c.widths) == 0 {
		return "", false
	}
	return c.At(c.cursor)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
