package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},         // Scalar
		{Shape{5}, 5},        // 1D
		{Shape{3, 4}, 12},    // 2D
		{Shape{2, 3, 4}, 24}, // 3D
		{Shape{1, 1, 1}, 1},  // Ones
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	validShapes := []Shape{
		{1},
		{3, 4},
		{2, 3, 4},
	}

	for _, s := range validShapes {
		if err := s.Validate(); err != nil {
			t.Errorf("Shape%v.Validate() failed: %v", s, err)
		}
	}

	invalidShapes := []Shape{
		{0},
		{3, 0},
		{-1},
		{3, -4},
	}

	for _, s := range invalidShapes {
		if err := s.Validate(); err == nil {
			t.Errorf("Shape%v.Validate() should fail but didn't", s)
		}
	}
}

func TestShapeEqual(t *testing.T) {
	tests := []struct {
		a, b  Shape
		equal bool
	}{
		{Shape{3, 4}, Shape{3, 4}, true},
		{Shape{3, 4}, Shape{4, 3}, false},
		{Shape{3}, Shape{3, 1}, false},
		{Shape{}, Shape{}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.equal {
			t.Errorf("Shape%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestShapeClone(t *testing.T) {
	original := Shape{2, 3, 4}
	clone := original.Clone()

	if !clone.Equal(original) {
		t.Errorf("Clone = %v, want %v", clone, original)
	}

	// Modifying the clone must not affect the original
	clone[0] = 99
	if original[0] != 2 {
		t.Error("Clone should not share memory with original")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected []int
	}{
		{Shape{4}, []int{1}},
		{Shape{3, 4}, []int{4, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if len(got) != len(tt.expected) {
			t.Fatalf("Shape%v.ComputeStrides() length = %d, want %d", tt.shape, len(got), len(tt.expected))
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("Shape%v.ComputeStrides()[%d] = %d, want %d", tt.shape, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		expected  Shape
		shouldErr bool
	}{
		// Compatible shapes
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{3, 4}, Shape{3, 4}, Shape{3, 4}, false},
		{Shape{1}, Shape{3, 4}, Shape{3, 4}, false},
		{Shape{3, 4}, Shape{1}, Shape{3, 4}, false},

		// Incompatible shapes
		{Shape{3, 4}, Shape{3, 5}, nil, true},
		{Shape{2, 3}, Shape{3, 3}, nil, true},
	}

	for _, tt := range tests {
		got, _, err := BroadcastShapes(tt.a, tt.b)
		if tt.shouldErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v) should fail but didn't", tt.a, tt.b)
			}
		} else {
			if err != nil {
				t.Errorf("BroadcastShapes(%v, %v) failed: %v", tt.a, tt.b, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("BroadcastShapes(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		}
	}
}

func TestBroadcastShapesNeedsBroadcast(t *testing.T) {
	// Equal shapes need no broadcast
	_, needs, err := BroadcastShapes(Shape{3, 5}, Shape{3, 5})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if needs {
		t.Error("Equal shapes should not need broadcasting")
	}

	// Expanding a dimension needs broadcast
	_, needs, err = BroadcastShapes(Shape{3, 1}, Shape{3, 5})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !needs {
		t.Error("Shape{3, 1} vs Shape{3, 5} should need broadcasting")
	}
}
