package dsp

import (
	"math"
	"testing"
)

func TestBooleanTriggerFiresOncePerRisingEdge(t *testing.T) {
	var tr BooleanTrigger
	in := []float32{0, 1, 1, 1, 0, 0, 1, 0, 0.2, 0.7, 0, -1}
	want := []bool{false, true, false, false, false, false, true, false, true, false, false, true}
	for i, v := range in {
		if got := tr.Process(v); got != want[i] {
			t.Fatalf("frame %d: Process(%v) = %v, want %v", i, v, got, want[i])
		}
	}
}

func TestBooleanTriggerReset(t *testing.T) {
	var tr BooleanTrigger
	tr.Process(1)
	tr.Reset()
	if !tr.Process(1) {
		t.Fatalf("expected held button to fire again after reset")
	}
}

func TestSelectFirstTieBreak(t *testing.T) {
	triggers := make([]BooleanTrigger, 4)
	idx, ok := SelectFirst(triggers, []float32{0, 1, 0, 1})
	if !ok || idx != 1 {
		t.Fatalf("SelectFirst = %d,%v, want 1,true", idx, ok)
	}
	// Button 3 was clocked in the same frame, so holding it must not fire.
	idx, ok = SelectFirst(triggers, []float32{0, 0, 0, 1})
	if ok {
		t.Fatalf("held button fired late as %d", idx)
	}
	idx, ok = SelectFirst(triggers, []float32{0, 0, 1, 1})
	if !ok || idx != 2 {
		t.Fatalf("SelectFirst = %d,%v, want 2,true", idx, ok)
	}
}

func TestSelectFirstNoPress(t *testing.T) {
	triggers := make([]BooleanTrigger, 4)
	if _, ok := SelectFirst(triggers, nil); ok {
		t.Fatalf("expected no selection without values")
	}
}

func TestClamp(t *testing.T) {
	nan := float32(math.NaN())
	cases := []struct{ v, want float32 }{{-1, 0}, {0.5, 0.5}, {4, 3}, {nan, 0}}
	for _, c := range cases {
		if got := Clamp(c.v, 0, 3); got != c.want {
			t.Errorf("Clamp(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}
