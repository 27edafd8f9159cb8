package optim

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/arca-ml/arca/internal/nn"
	"github.com/arca-ml/arca/internal/tensor"
)

// AdamConfig configures the Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Decay rates for the moment estimates (default: 0.9, 0.999)
	Eps   float32    // Numerical stability term (default: 1e-8)
}

// Adam implements the Adam optimizer (Kingma & Ba, 2014).
//
// Adam keeps exponential moving averages of the gradient (first moment)
// and the squared gradient (second moment) per parameter:
//
//	m = beta1 * m + (1 - beta1) * g
//	v = beta2 * v + (1 - beta2) * g^2
//	p = p - lr * mHat / (sqrt(vHat) + eps)
//
// where mHat and vHat are bias-corrected using the step count. The
// moments are serialized under "m.<index>" and "v.<index>" keys and the
// step count under "t", so bias correction stays consistent across a
// checkpoint round-trip.
type Adam[B tensor.Backend] struct {
	params  []*nn.Parameter[B]
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int64
	m       map[int]*tensor.RawTensor
	v       map[int]*tensor.RawTensor
	backend B
}

// NewAdam creates an Adam optimizer for the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	lr := config.LR
	if lr == 0 {
		lr = 0.001
	}

	beta1, beta2 := config.Betas[0], config.Betas[1]
	if beta1 == 0 && beta2 == 0 {
		beta1, beta2 = 0.9, 0.999
	}

	eps := config.Eps
	if eps == 0 {
		eps = 1e-8
	}

	return &Adam[B]{
		params:  params,
		lr:      lr,
		beta1:   beta1,
		beta2:   beta2,
		eps:     eps,
		m:       make(map[int]*tensor.RawTensor),
		v:       make(map[int]*tensor.RawTensor),
		backend: backend,
	}
}

// Step applies one Adam update to every parameter that has a gradient.
func (a *Adam[B]) Step() {
	a.t++

	biasCorrection1 := 1.0 - math32.Pow(a.beta1, float32(a.t))
	biasCorrection2 := 1.0 - math32.Pow(a.beta2, float32(a.t))

	for i, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.Raw().AsFloat32()

		m, ok := a.m[i]
		if !ok {
			m = zerosLike(param.Tensor().Raw())
			a.m[i] = m
		}
		v, ok := a.v[i]
		if !ok {
			v = zerosLike(param.Tensor().Raw())
			a.v[i] = v
		}
		mData := m.AsFloat32()
		vData := v.AsFloat32()

		for j := range paramData {
			g := gradData[j]
			mData[j] = a.beta1*mData[j] + (1-a.beta1)*g
			vData[j] = a.beta2*vData[j] + (1-a.beta2)*g*g

			mHat := mData[j] / biasCorrection1
			vHat := vData[j] / biasCorrection2

			paramData[j] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears the gradients of all managed parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 {
	return a.lr
}

// SetLR sets the learning rate, e.g. for learning rate schedules.
func (a *Adam[B]) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the number of steps taken so far.
func (a *Adam[B]) GetTimestep() int64 {
	return a.t
}

// Type returns "Adam".
func (a *Adam[B]) Type() string {
	return "Adam"
}

// Config returns the optimizer's hyperparameters.
func (a *Adam[B]) Config() map[string]any {
	return map[string]any{
		"learning_rate": a.lr,
		"beta1":         a.beta1,
		"beta2":         a.beta2,
		"eps":           a.eps,
	}
}

// StateDict returns the moment estimates and step count.
//
// First moments are keyed "m.<index>", second moments "v.<index>", and
// the step count rides along as a scalar int64 tensor under "t".
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)

	for i := range a.params {
		if m, ok := a.m[i]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m
		}
		if v, ok := a.v[i]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v
		}
	}

	if a.t > 0 {
		stateDict["t"] = timestepTensor(a.t)
	}
	return stateDict
}

// LoadStateDict restores moment estimates and the step count saved by
// StateDict.
//
// Moment keys must use indices in range with shapes matching the
// corresponding parameters, and unknown keys are rejected. Validation
// runs before any state is replaced.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	var t int64
	hasT := false
	loadedM := make(map[int]*tensor.RawTensor)
	loadedV := make(map[int]*tensor.RawTensor)

	for name, raw := range stateDict {
		if name == "t" {
			if raw.DType() != tensor.Int64 || raw.NumElements() != 1 {
				return fmt.Errorf("timestep must be a scalar int64, got %v with shape %v",
					raw.DType(), raw.Shape())
			}
			t = raw.AsInt64()[0]
			hasT = true
			continue
		}

		var target map[int]*tensor.RawTensor
		var index string
		if rest, ok := strings.CutPrefix(name, "m."); ok {
			target, index = loadedM, rest
		} else if rest, ok := strings.CutPrefix(name, "v."); ok {
			target, index = loadedV, rest
		} else {
			return fmt.Errorf("unexpected key %q in Adam state dict", name)
		}

		i, err := stateIndex(name, index, len(a.params))
		if err != nil {
			return err
		}
		if !raw.Shape().Equal(a.params[i].Tensor().Shape()) {
			return fmt.Errorf("%s shape mismatch: expected %v, got %v",
				name, a.params[i].Tensor().Shape(), raw.Shape())
		}

		moment := zerosLike(raw)
		if err := moment.CopyFrom(raw); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		target[i] = moment
	}

	for i, m := range loadedM {
		a.m[i] = m
	}
	for i, v := range loadedV {
		a.v[i] = v
	}
	if hasT {
		a.t = t
	}
	return nil
}

// timestepTensor wraps the step count in a scalar tensor so it can ride
// along with the moment estimates in a state dict.
func timestepTensor(t int64) *tensor.RawTensor {
	raw, err := tensor.NewRaw(tensor.Shape{}, tensor.Int64)
	if err != nil {
		panic(err)
	}
	raw.AsInt64()[0] = t
	return raw
}
