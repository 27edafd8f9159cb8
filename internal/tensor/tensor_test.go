package tensor

import (
	"fmt"
	"math"
	"testing"
)

// Test helpers

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Int64, "int64"},
		{Uint8, "uint8"},
		{Bool, "bool"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("%s.String() = %q, want %q", tt.dtype, got, tt.str)
		}
	}
}

func TestInferDataType(t *testing.T) {
	if dt := inferDataType(float32(0)); dt != Float32 {
		t.Errorf("inferDataType(float32) = %v, want Float32", dt)
	}
	if dt := inferDataType(float64(0)); dt != Float64 {
		t.Errorf("inferDataType(float64) = %v, want Float64", dt)
	}
	if dt := inferDataType(int32(0)); dt != Int32 {
		t.Errorf("inferDataType(int32) = %v, want Int32", dt)
	}
	if dt := inferDataType(int64(0)); dt != Int64 {
		t.Errorf("inferDataType(int64) = %v, want Int64", dt)
	}
}

// Tensor Creation Tests

func TestZeros(t *testing.T) {
	backend := NewMockBackend()
	shape := Shape{3, 4}

	tensor := Zeros[float32](shape, backend)

	assertEqualShape(t, shape, tensor.Shape(), "Shape mismatch")

	data := tensor.Data()
	for i, v := range data {
		if v != 0 {
			t.Errorf("Zeros[%d] = %v, want 0", i, v)
		}
	}
}

func TestOnes(t *testing.T) {
	backend := NewMockBackend()
	shape := Shape{2, 3}

	tensor := Ones[float32](shape, backend)

	data := tensor.Data()
	for i, v := range data {
		if v != 1 {
			t.Errorf("Ones[%d] = %v, want 1", i, v)
		}
	}
}

func TestFull(t *testing.T) {
	backend := NewMockBackend()
	shape := Shape{2, 2}
	value := float32(3.14)

	tensor := Full(shape, value, backend)

	data := tensor.Data()
	for i, v := range data {
		assertEqualFloat32(t, value, v, fmt.Sprintf("Full[%d]", i))
	}
}

func TestRandn(t *testing.T) {
	backend := NewMockBackend()

	tensor := Randn[float32](Shape{100, 100}, backend)

	// Mean of 10000 standard normal samples should be close to 0
	sum := 0.0
	for _, v := range tensor.Data() {
		sum += float64(v)
	}
	mean := sum / float64(tensor.NumElements())
	if math.Abs(mean) > 0.1 {
		t.Errorf("Randn mean = %v, want close to 0", mean)
	}
}

func TestRand(t *testing.T) {
	backend := NewMockBackend()

	tensor := Rand[float32](Shape{50, 50}, backend)

	for i, v := range tensor.Data() {
		if v < 0 || v >= 1 {
			t.Errorf("Rand[%d] = %v, want in [0, 1)", i, v)
		}
	}
}

func TestArange(t *testing.T) {
	backend := NewMockBackend()

	tensor := Arange[int32](0, 10, backend)

	assertEqualShape(t, Shape{10}, tensor.Shape(), "Arange shape")

	data := tensor.Data()
	for i, v := range data {
		if v != int32(i) {
			t.Errorf("Arange[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestEye(t *testing.T) {
	backend := NewMockBackend()

	tensor := Eye[float32](3, backend)

	assertEqualShape(t, Shape{3, 3}, tensor.Shape(), "Eye shape")

	// Check diagonal
	for i := 0; i < 3; i++ {
		if tensor.At(i, i) != 1.0 {
			t.Errorf("Eye[%d, %d] = %v, want 1", i, i, tensor.At(i, i))
		}
	}

	// Check off-diagonal
	if tensor.At(0, 1) != 0 || tensor.At(1, 0) != 0 {
		t.Error("Eye off-diagonal should be zero")
	}
}

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()
	data := []float32{1, 2, 3, 4, 5, 6}
	shape := Shape{2, 3}

	tensor, err := FromSlice(data, shape, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	assertEqualShape(t, shape, tensor.Shape(), "FromSlice shape")

	got := tensor.Data()
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("FromSlice[%d] = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestFromSliceWrongLength(t *testing.T) {
	backend := NewMockBackend()

	_, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}, backend)
	if err == nil {
		t.Error("FromSlice with mismatched length should fail")
	}
}

// Tensor Access Tests

func TestTensorAt(t *testing.T) {
	backend := NewMockBackend()
	tensor, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)

	tests := []struct {
		indices  []int
		expected float32
	}{
		{[]int{0, 0}, 1},
		{[]int{0, 1}, 2},
		{[]int{0, 2}, 3},
		{[]int{1, 0}, 4},
		{[]int{1, 1}, 5},
		{[]int{1, 2}, 6},
	}

	for _, tt := range tests {
		got := tensor.At(tt.indices...)
		if got != tt.expected {
			t.Errorf("At%v = %v, want %v", tt.indices, got, tt.expected)
		}
	}
}

func TestTensorSet(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 2}, backend)

	tensor.Set(3.14, 1, 1)
	if got := tensor.At(1, 1); got != 3.14 {
		t.Errorf("After Set(3.14, 1, 1), At(1, 1) = %v, want 3.14", got)
	}
}

func TestTensorItem(t *testing.T) {
	backend := NewMockBackend()
	tensor := Full(Shape{1}, float32(42), backend)

	if got := tensor.Reshape().Item(); got != 42 {
		t.Errorf("Item() = %v, want 42", got)
	}
}

// Tensor Operations Tests (through MockBackend)

func TestTensorAdd(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	b, _ := FromSlice([]float32{5, 6, 7, 8}, Shape{2, 2}, backend)

	c := a.Add(b)

	expected := []float32{6, 8, 10, 12}
	got := c.Data()

	for i := range expected {
		assertEqualFloat32(t, expected[i], got[i], fmt.Sprintf("Add[%d]", i))
	}
}

func TestTensorSub(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{5, 6, 7, 8}, Shape{2, 2}, backend)
	b, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	c := a.Sub(b)

	expected := []float32{4, 4, 4, 4}
	got := c.Data()

	for i := range expected {
		assertEqualFloat32(t, expected[i], got[i], fmt.Sprintf("Sub[%d]", i))
	}
}

func TestTensorMatMul(t *testing.T) {
	backend := NewMockBackend()
	// [[1, 2],     [[5, 6],     [[19, 22],
	//  [3, 4]]  @   [7, 8]]  =   [43, 50]]
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	b, _ := FromSlice([]float32{5, 6, 7, 8}, Shape{2, 2}, backend)

	c := a.MatMul(b)

	expected := []float32{19, 22, 43, 50}
	got := c.Data()

	for i := range expected {
		assertEqualFloat32(t, expected[i], got[i], fmt.Sprintf("MatMul[%d]", i))
	}
}

func TestTensorReshape(t *testing.T) {
	backend := NewMockBackend()
	tensor := Arange[int32](0, 12, backend)

	reshaped := tensor.Reshape(3, 4)

	assertEqualShape(t, Shape{3, 4}, reshaped.Shape(), "Reshape shape")

	// Verify data is preserved
	if reshaped.At(0, 0) != 0 || reshaped.At(2, 3) != 11 {
		t.Error("Reshape should preserve data")
	}
}

func TestTensorTranspose(t *testing.T) {
	backend := NewMockBackend()
	// [[1, 2, 3],
	//  [4, 5, 6]]
	tensor, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)

	transposed := tensor.T()

	assertEqualShape(t, Shape{3, 2}, transposed.Shape(), "Transpose shape")

	// [[1, 4],
	//  [2, 5],
	//  [3, 6]]
	if transposed.At(0, 0) != 1 || transposed.At(0, 1) != 4 {
		t.Error("Transpose data incorrect")
	}
	if transposed.At(1, 0) != 2 || transposed.At(1, 1) != 5 {
		t.Error("Transpose data incorrect")
	}
	if transposed.At(2, 0) != 3 || transposed.At(2, 1) != 6 {
		t.Error("Transpose data incorrect")
	}
}

func TestTensorMulScalar(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	c := a.MulScalar(2.5)

	expected := []float32{2.5, 5, 7.5, 10}
	got := c.Data()
	for i := range expected {
		assertEqualFloat32(t, expected[i], got[i], fmt.Sprintf("MulScalar[%d]", i))
	}
}

func TestTensorSum(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	if got := a.Sum().Item(); got != 10 {
		t.Errorf("Sum() = %v, want 10", got)
	}
}

func TestTensorMean(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	if got := a.Mean().Item(); got != 2.5 {
		t.Errorf("Mean() = %v, want 2.5", got)
	}
}

// Broadcasting Tests

func TestBroadcastingAdd(t *testing.T) {
	backend := NewMockBackend()
	// (3, 1) + (3, 5) → (3, 5)
	a := Ones[float32](Shape{3, 1}, backend)
	b := Full(Shape{3, 5}, float32(2.0), backend)

	c := a.Add(b)

	assertEqualShape(t, Shape{3, 5}, c.Shape(), "Broadcasting shape")

	// All elements should be 3.0
	data := c.Data()
	for i, v := range data {
		assertEqualFloat32(t, 3.0, v, fmt.Sprintf("Broadcasting[%d]", i))
	}
}
