package planner

import "testing"

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 50, 0},
		{-3, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{125, 50, 3},
		{100, 50, 2},
		{7, 1, 7},
		{10, 0, 0},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.limit); got != c.want {
			t.Fatalf("PageCount(%d, %d) 期望 %d，实际 %d", c.total, c.limit, c.want, got)
		}
	}
}

func TestPages(t *testing.T) {
	got := Pages(3)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Pages(3) 期望 [1 2 3]，实际 %v", got)
	}
	if got := Pages(0); got == nil || len(got) != 0 {
		t.Fatalf("Pages(0) 期望空列表，实际 %#v", got)
	}
}
