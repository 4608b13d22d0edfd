package paging_test

import (
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/paging"
)

func TestPageCount_FloorDivision(t *testing.T) {
	for size := 1; size <= 13; size++ {
		for n := 0; n <= 60; n++ {
			if got, want := paging.PageCount(n, size), n/size; got != want {
				t.Errorf("PageCount(%d, %d) = %d, want %d", n, size, got, want)
			}
		}
	}
}

func TestQueuePageCount(t *testing.T) {
	for size := 1; size <= 13; size++ {
		for n := 1; n <= 60; n++ {
			if got, want := paging.QueuePageCount(n, size), (n-1)/size; got != want {
				t.Errorf("QueuePageCount(%d, %d) = %d, want %d", n, size, got, want)
			}
		}
	}
	if got := paging.QueuePageCount(0, 8); got != 0 {
		t.Errorf("QueuePageCount(0, 8) = %d, want 0", got)
	}
}

func TestFormulasDiffer(t *testing.T) {
	// 24 items at 12 per page: two full pages. The catalog formula reports 2,
	// the queue formula 1.
	if paging.PageCount(24, 12) != 2 {
		t.Error("PageCount(24, 12) should be 2")
	}
	if paging.QueuePageCount(24, 12) != 1 {
		t.Error("QueuePageCount(24, 12) should be 1")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ page, count, want int }{
		{-3, 4, 0},
		{0, 4, 0},
		{4, 4, 4}, // upper bound is inclusive
		{9, 4, 4},
		{2, 0, 0},
		{2, -1, 0},
	}
	for _, c := range cases {
		if got := paging.Clamp(c.page, c.count); got != c.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", c.page, c.count, got, c.want)
		}
	}
}

func TestWindowAndContains(t *testing.T) {
	start, end := paging.Window(2, 12)
	if start != 24 || end != 36 {
		t.Errorf("Window(2, 12) = [%d, %d)", start, end)
	}
	for flat := 0; flat < 60; flat++ {
		want := flat >= 24 && flat < 36
		if got := paging.Contains(2, 12, flat); got != want {
			t.Errorf("Contains(2, 12, %d) = %v", flat, got)
		}
	}
}

func TestSlice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}
	if got := paging.Slice(items, 1, 3); len(got) != 3 || got[0] != 3 {
		t.Errorf("page 1 = %v", got)
	}
	if got := paging.Slice(items, 2, 3); len(got) != 1 || got[0] != 6 {
		t.Errorf("page 2 = %v", got)
	}
	if got := paging.Slice(items, 3, 3); got != nil {
		t.Errorf("page past end = %v, want nil", got)
	}
	if got := paging.Slice(items, 0, 0); len(got) != 1 {
		t.Errorf("size 0 should behave as 1, got %v", got)
	}
}
