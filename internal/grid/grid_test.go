package grid_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/grid"
)

func layout(n, columns int) *grid.Controller {
	c := grid.New()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("L%d", i)
	}
	c.LayoutFlat(ids, columns)
	return c
}

func assertInside(t *testing.T, c *grid.Controller) {
	t.Helper()
	cur := c.Cursor()
	if c.Empty() {
		if cur != (grid.Cursor{}) {
			t.Fatalf("empty grid cursor = %+v, want origin", cur)
		}
		return
	}
	if cur.Row < 0 || cur.Row >= c.Rows() {
		t.Fatalf("row %d outside [0,%d)", cur.Row, c.Rows())
	}
	if cur.Col < 0 || cur.Col >= c.Width(cur.Row) {
		t.Fatalf("col %d outside [0,%d) on row %d", cur.Col, c.Width(cur.Row), cur.Row)
	}
}

func TestPlace_IncrementalWidths(t *testing.T) {
	c := grid.New()
	c.Place(0, 0, "a")
	c.Place(1, 0, "b")
	c.Place(2, 0, "c")
	c.Place(0, 1, "d")
	c.Place(1, 1, "e")

	got := c.Widths()
	if len(got) != 2 || got[0] != 3 || got[1] != 2 {
		t.Errorf("Widths() = %v, want [3 2]", got)
	}
}

func TestLayoutFlat_LastRowNarrower(t *testing.T) {
	c := layout(10, 4)
	got := c.Widths()
	want := []int{4, 4, 2}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Widths() = %v, want %v", got, want)
	}
	if id, _ := c.At(grid.Cursor{Col: 1, Row: 2}); id != "L9" {
		t.Errorf("At(1,2) = %q, want L9", id)
	}
}

func TestMove_ClampsAtEdges(t *testing.T) {
	c := layout(6, 3)

	if c.Move(grid.DirLeft) {
		t.Error("moving left from origin should not change the cursor")
	}
	if c.Move(grid.DirUp) {
		t.Error("moving up from origin should not change the cursor")
	}
	c.Move(grid.DirRight)
	c.Move(grid.DirRight)
	c.Move(grid.DirRight)
	if got := c.Cursor(); got != (grid.Cursor{Col: 2, Row: 0}) {
		t.Errorf("cursor = %+v, want {2 0}", got)
	}
}

func TestMove_ReclampsColumnOnNarrowerRow(t *testing.T) {
	c := grid.New()
	c.AppendRow("a", "b", "c", "d")
	c.AppendRow("prev", "next")

	c.Select(3, 0)
	c.Move(grid.DirDown)
	if got := c.Cursor(); got != (grid.Cursor{Col: 1, Row: 1}) {
		t.Errorf("cursor = %+v, want {1 1}", got)
	}
	if id, _ := c.Submit(); id != "next" {
		t.Errorf("Submit() = %q, want next", id)
	}
}

func TestCursorStaysInside_RandomMoves(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	dirs := []grid.Direction{grid.DirUp, grid.DirDown, grid.DirLeft, grid.DirRight}

	for trial := 0; trial < 50; trial++ {
		c := grid.New()
		rows := rng.IntN(6)
		for r := 0; r < rows; r++ {
			w := 1 + rng.IntN(5)
			for col := 0; col < w; col++ {
				c.Place(col, r, fmt.Sprintf("%d-%d", r, col))
			}
		}
		for i := 0; i < 200; i++ {
			c.Move(dirs[rng.IntN(len(dirs))])
			assertInside(t, c)
		}
	}
}

func TestClamp_AfterShrink(t *testing.T) {
	c := layout(12, 4)
	c.Select(3, 2)

	// refresh with fewer results
	c.Reset()
	c.Select(3, 2)
	if got := c.Cursor(); got != (grid.Cursor{}) {
		t.Errorf("empty grid cursor = %+v, want origin", got)
	}
	c.LayoutFlat([]string{"x", "y"}, 4)
	c.Select(3, 2)
	if got := c.Cursor(); got != (grid.Cursor{Col: 1, Row: 0}) {
		t.Errorf("cursor = %+v, want {1 0}", got)
	}
}

func TestSubmit_EmptyGrid(t *testing.T) {
	c := grid.New()
	if id, ok := c.Submit(); ok || id != "" {
		t.Errorf("Submit() on empty grid = (%q, %v)", id, ok)
	}
	if c.Move(grid.DirDown) {
		t.Error("Move on empty grid should be a no-op")
	}
}

func TestSelectID(t *testing.T) {
	c := layout(9, 3)
	if !c.SelectID("L7") {
		t.Fatal("SelectID(L7) = false")
	}
	if got := c.Cursor(); got != (grid.Cursor{Col: 1, Row: 2}) {
		t.Errorf("cursor = %+v, want {1 2}", got)
	}
	if c.SelectID("missing") {
		t.Error("SelectID(missing) = true")
	}
}
