package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/arca-ml/arca/internal/tensor"
)

// Sqrt computes the element-wise square root.
// Panics on negative input rather than producing NaN.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "sqrt")

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			if v < 0 {
				panic(fmt.Sprintf("sqrt of negative value %v at index %d", v, i))
			}
			dst[i] = math32.Sqrt(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			if v < 0 {
				panic(fmt.Sprintf("sqrt of negative value %v at index %d", v, i))
			}
			dst[i] = math.Sqrt(v)
		}
	default:
		panic(fmt.Sprintf("sqrt not supported for dtype %s", x.DType()))
	}

	return result
}
