package inference

import (
	"errors"
	"testing"
)

func TestElementCount(t *testing.T) {
	tests := []struct {
		shape []int64
		want  int64
	}{
		{[]int64{1, 3, 112, 112}, 37632},
		{[]int64{1, 136}, 136},
		{[]int64{}, 1},
	}

	for _, tt := range tests {
		if got := ElementCount(tt.shape); got != tt.want {
			t.Errorf("ElementCount(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestCreateTensor_ShapeMismatch(t *testing.T) {
	_, err := CreateTensor([]int64{1, 4}, []float32{1, 2, 3})
	if err == nil {
		t.Error("Expected error when data does not fill the shape")
	}
}

func TestNewSession_RequiresInitialize(t *testing.T) {
	if Initialized() {
		t.Skip("ONNX Runtime already initialized in this process")
	}
	_, err := NewSession("models/landmarks68.onnx", []string{"input"}, []string{"output"}, Options{})
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestShutdown_WithoutInitialize(t *testing.T) {
	if Initialized() {
		t.Skip("ONNX Runtime already initialized in this process")
	}
	if err := Shutdown(); err != nil {
		t.Errorf("Shutdown without Initialize should be a no-op, got %v", err)
	}
}
