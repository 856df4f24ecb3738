package tracking

import "testing"

func TestEveryNth(t *testing.T) {
	c := EveryNth(5)
	var detected []uint64
	for f := uint64(0); f < 16; f++ {
		if c.ShouldDetect(f) {
			detected = append(detected, f)
		}
	}

	want := []uint64{0, 5, 10, 15}
	if len(detected) != len(want) {
		t.Fatalf("Expected frames %v, got %v", want, detected)
	}
	for i := range want {
		if detected[i] != want[i] {
			t.Errorf("Expected frames %v, got %v", want, detected)
			break
		}
	}
}

func TestAlways(t *testing.T) {
	for f := uint64(0); f < 10; f++ {
		if !Always.ShouldDetect(f) {
			t.Errorf("Always skipped frame %d", f)
		}
	}
	if !EveryNth(0).ShouldDetect(3) {
		t.Error("EveryNth(0) should detect every frame")
	}
}

func TestCadenceFunc(t *testing.T) {
	odd := CadenceFunc(func(f uint64) bool { return f%2 == 1 })
	if odd.ShouldDetect(2) || !odd.ShouldDetect(3) {
		t.Error("CadenceFunc did not delegate")
	}
}
