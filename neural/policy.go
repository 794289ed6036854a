// Package neural provides the fixed-topology feedforward policy that steers agents.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network dimensions. The topology is fixed: sensed state in, a move out.
const (
	NumInputs  = 3 // hunger, food direction x, food direction y
	NumHidden  = 4
	NumOutputs = 2 // dx, dy
)

// Default parameters matching the reference behavior.
const (
	DefaultInitRange        = 1.0
	DefaultDeadZone         = 0.1
	DefaultMutationRate     = 0.1
	DefaultMutationStrength = 0.5
)

// Policy is a 3-4-2 feedforward network.
// W1 maps inputs to hidden units (NumInputs x NumHidden), W2 maps hidden units
// to outputs (NumHidden x NumOutputs). There are no biases.
type Policy struct {
	W1 *mat.Dense
	W2 *mat.Dense

	// DeadZone is the quantization threshold: outputs within [-DeadZone, DeadZone] map to 0.
	DeadZone float64
}

// newEmpty allocates zeroed weight matrices.
func newEmpty() *Policy {
	return &Policy{
		W1:       mat.NewDense(NumInputs, NumHidden, nil),
		W2:       mat.NewDense(NumHidden, NumOutputs, nil),
		DeadZone: DefaultDeadZone,
	}
}

// NewPolicy creates a policy with weights drawn uniformly from [-1, 1].
func NewPolicy(rng *rand.Rand) *Policy {
	p := newEmpty()
	p.Randomize(rng, DefaultInitRange)
	return p
}

// NewPolicyWith creates a policy with weights drawn from [-initRange, initRange]
// and the given output dead zone.
func NewPolicyWith(rng *rand.Rand, initRange, deadZone float64) *Policy {
	p := newEmpty()
	p.DeadZone = deadZone
	p.Randomize(rng, initRange)
	return p
}

// NewPolicyFromWeights builds a policy from row-major weight slices.
func NewPolicyFromWeights(w1, w2 []float64) (*Policy, error) {
	if len(w1) != NumInputs*NumHidden {
		return nil, fmt.Errorf("w1: expected %d weights, got %d", NumInputs*NumHidden, len(w1))
	}
	if len(w2) != NumHidden*NumOutputs {
		return nil, fmt.Errorf("w2: expected %d weights, got %d", NumHidden*NumOutputs, len(w2))
	}
	p := newEmpty()
	p.W1 = mat.NewDense(NumInputs, NumHidden, append([]float64(nil), w1...))
	p.W2 = mat.NewDense(NumHidden, NumOutputs, append([]float64(nil), w2...))
	return p, nil
}

// Randomize fills both weight matrices with independent draws from [-r, r].
func (p *Policy) Randomize(rng *rand.Rand, r float64) {
	fill := func(m *mat.Dense) {
		rows, cols := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.Set(i, j, (rng.Float64()*2-1)*r)
			}
		}
	}
	fill(p.W1)
	fill(p.W2)
}

// Forward maps sensed state to a discrete move in {-1,0,1}².
// Hidden units use ReLU, outputs use tanh, then a dead-zone step.
func (p *Policy) Forward(hunger, foodDirX, foodDirY float64) (dx, dy int) {
	out := p.Outputs(hunger, foodDirX, foodDirY)
	return p.step(out[0]), p.step(out[1])
}

// Outputs returns the continuous tanh outputs before quantization.
func (p *Policy) Outputs(hunger, foodDirX, foodDirY float64) [NumOutputs]float64 {
	input := mat.NewVecDense(NumInputs, []float64{hunger, foodDirX, foodDirY})

	// hidden_j = ReLU(Σ_i input_i · W1[i,j])
	var hidden mat.VecDense
	hidden.MulVec(p.W1.T(), input)
	for j := 0; j < NumHidden; j++ {
		hidden.SetVec(j, relu(hidden.AtVec(j)))
	}

	// out_k = tanh(Σ_j hidden_j · W2[j,k])
	var sum mat.VecDense
	sum.MulVec(p.W2.T(), &hidden)

	var out [NumOutputs]float64
	for k := 0; k < NumOutputs; k++ {
		out[k] = math.Tanh(sum.AtVec(k))
	}
	return out
}

// step quantizes a value in [-1,1] to {-1,0,1}.
func (p *Policy) step(x float64) int {
	if x > p.DeadZone {
		return 1
	}
	if x < -p.DeadZone {
		return -1
	}
	return 0
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// CloneAndMutate returns an independent copy of the policy. Each weight is
// copied, then with probability rate perturbed by a uniform draw from
// [-strength, strength]. All randomness comes from rng.
func (p *Policy) CloneAndMutate(rng *rand.Rand, rate, strength float64) *Policy {
	clone := p.Clone()
	mutate := func(m *mat.Dense) {
		rows, cols := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if rng.Float64() < rate {
					m.Set(i, j, m.At(i, j)+(rng.Float64()*2-1)*strength)
				}
			}
		}
	}
	mutate(clone.W1)
	mutate(clone.W2)
	return clone
}

// Clone creates a deep copy of the network.
func (p *Policy) Clone() *Policy {
	return &Policy{
		W1:       mat.DenseCopyOf(p.W1),
		W2:       mat.DenseCopyOf(p.W2),
		DeadZone: p.DeadZone,
	}
}

// Weights holds flattened row-major weights for inspection and serialization.
type Weights struct {
	W1 []float64 `json:"w1"` // [NumInputs * NumHidden]
	W2 []float64 `json:"w2"` // [NumHidden * NumOutputs]
}

// MarshalWeights flattens the weight matrices.
func (p *Policy) MarshalWeights() Weights {
	return Weights{
		W1: flatten(p.W1),
		W2: flatten(p.W2),
	}
}

func flatten(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		out = append(out, mat.Row(nil, i, m)...)
	}
	return out
}

// Equal reports whether two policies have bit-identical weights.
func (p *Policy) Equal(other *Policy) bool {
	return mat.Equal(p.W1, other.W1) && mat.Equal(p.W2, other.W2)
}
