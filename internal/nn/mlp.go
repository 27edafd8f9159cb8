package nn

import (
	"fmt"

	"github.com/arca-ml/arca/internal/tensor"
)

// NewMLP builds a multi-layer perceptron as a Sequential container.
//
// layerSizes lists the width of every layer from input to output. Each
// consecutive pair becomes a Linear layer, with ReLU activations between
// hidden layers and no activation after the output layer:
//
//	// 100 inputs, two hidden layers of 256, one output
//	model := nn.NewMLP(backend, 100, 256, 256, 1)
//
// expands to Linear(100,256), ReLU, Linear(256,256), ReLU, Linear(256,1).
//
// Panics if fewer than two sizes are given or any size is not positive.
func NewMLP[B tensor.Backend](backend B, layerSizes ...int) *Sequential[B] {
	if len(layerSizes) < 2 {
		panic("NewMLP: need at least an input and an output size")
	}
	for _, size := range layerSizes {
		if size <= 0 {
			panic(fmt.Sprintf("NewMLP: layer sizes must be positive, got %v", layerSizes))
		}
	}

	model := NewSequential[B]()
	for i := 0; i < len(layerSizes)-1; i++ {
		model.Add(NewLinear(layerSizes[i], layerSizes[i+1], backend))
		if i < len(layerSizes)-2 {
			model.Add(NewReLU[B]())
		}
	}

	return model
}
