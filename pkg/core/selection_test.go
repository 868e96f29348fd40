package core

import "testing"

func TestSelectionSaturates(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"last index stays", 3, +1, 3},
		{"first index stays", 0, -1, 0},
		{"step up", 1, +1, 2},
		{"step down", 2, -1, 1},
		{"large jump", 1, +10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection(tt.start)
			s.Step(tt.delta)
			if s.Index() != tt.want {
				t.Fatalf("index = %d, want %d", s.Index(), tt.want)
			}
		})
	}
}

func TestSelectionSetClamps(t *testing.T) {
	var s Selection
	for _, req := range []int{-5, -1, 0, 2, 4, 100} {
		s.Set(req)
		if s.Index() < 0 || s.Index() >= RodTypeCount {
			t.Fatalf("Set(%d) left index %d out of range", req, s.Index())
		}
	}
	if changed := s.Set(RodTypeCount - 1); changed {
		t.Fatal("Set to the same index should report no change")
	}
}

func TestInputCommandSnap(t *testing.T) {
	c := InputCommand{DZ: 0.0005, DRot: 0.0099}.Snap()
	if c.DZ != 0 || c.DRot != 0 {
		t.Fatalf("snap = %+v, want zero", c)
	}
	c = InputCommand{DZ: -0.002, DRot: -0.01}.Snap()
	if c.DZ != -0.002 || c.DRot != -0.01 {
		t.Fatalf("snap changed values above epsilon: %+v", c)
	}
	if !(InputCommand{DRot: 0.002}).ExceedsMoveThreshold() {
		t.Fatal("0.002 rotation should exceed move threshold")
	}
}
