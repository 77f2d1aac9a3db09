package model

import "testing"

func TestBoundingBoxIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b BoundingBox
		want BoundingBox
	}{
		{
			"overlapping",
			BoundingBox{0, 0, 100, 100},
			BoundingBox{50, 50, 150, 150},
			BoundingBox{50, 50, 100, 100},
		},
		{
			"contained",
			BoundingBox{0, 0, 200, 200},
			BoundingBox{50, 50, 60, 60},
			BoundingBox{50, 50, 60, 60},
		},
		{
			"disjoint",
			BoundingBox{0, 0, 10, 10},
			BoundingBox{20, 20, 30, 30},
			BoundingBox{},
		},
		{
			"adjacent_edges",
			BoundingBox{0, 0, 100, 100},
			BoundingBox{100, 0, 200, 100},
			BoundingBox{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	if (BoundingBox{0, 0, 100, 100}).Empty() {
		t.Error("non-degenerate box reported empty")
	}
	if !(BoundingBox{}).Empty() {
		t.Error("zero box should be empty")
	}
	if !(BoundingBox{50, 50, 50, 80}).Empty() {
		t.Error("zero-width box should be empty")
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	c := BoundingBox{10, 20, 110, 80}.Center()
	if c.X != 60 || c.Y != 50 {
		t.Errorf("expected (60,50), got (%d,%d)", c.X, c.Y)
	}
}

func TestBoundingBoxDimensions(t *testing.T) {
	b := BoundingBox{10, 20, 110, 80}
	if b.Width() != 100 {
		t.Errorf("expected width 100, got %d", b.Width())
	}
	if b.Height() != 60 {
		t.Errorf("expected height 60, got %d", b.Height())
	}
}
