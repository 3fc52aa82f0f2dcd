// Package neuralnet is a small fully connected feed-forward network trained
// with plain stochastic gradient descent. It backs the neural network playground.
package neuralnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

var ErrSizeMismatch = errors.New("neuralnet: size mismatch")

// Sample is one training pair.
type Sample struct {
	Inputs  []float64 `json:"inputs"`
	Targets []float64 `json:"targets"`
}

type Options struct {
	Activation   Activation
	LearningRate float64
	// Seed makes weight initialisation and shuffling reproducible. 0 seeds from the clock.
	Seed int64
}

// Network is not safe for concurrent use; callers serialize Train and Predict.
type Network struct {
	layers       []int
	weights      [][][]float64 // weights[l][j][k]: neuron j of layer l to neuron k of layer l+1
	biases       [][]float64   // biases[l][k]: neuron k of layer l+1
	activation   Activation
	learningRate float64
	rng          *rand.Rand
}

// New builds a network with Xavier-uniform weights and small random biases.
// layers lists the neuron count of every layer, input first.
func New(layers []int, opts Options) (*Network, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("neuralnet: need at least an input and an output layer, got %d", len(layers))
	}
	for i, n := range layers {
		if n <= 0 {
			return nil, fmt.Errorf("neuralnet: layer %d has %d neurons", i, n)
		}
	}
	act, err := ParseActivation(string(opts.Activation))
	if err != nil {
		return nil, err
	}
	lr := opts.LearningRate
	if lr <= 0 {
		lr = 0.1
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	n := &Network{
		layers:       append([]int(nil), layers...),
		activation:   act,
		learningRate: lr,
		rng:          rand.New(rand.NewSource(seed)),
	}
	for l := 0; l < len(layers)-1; l++ {
		in, out := layers[l], layers[l+1]
		limit := math.Sqrt(6.0 / float64(in+out))
		w := make([][]float64, in)
		for j := range w {
			w[j] = make([]float64, out)
			for k := range w[j] {
				w[j][k] = (n.rng.Float64()*2 - 1) * limit
			}
		}
		b := make([]float64, out)
		for k := range b {
			b[k] = (n.rng.Float64()*2 - 1) * 0.1
		}
		n.weights = append(n.weights, w)
		n.biases = append(n.biases, b)
	}
	return n, nil
}

func (n *Network) Layers() []int {
	return append([]int(nil), n.layers...)
}

func (n *Network) Activation() Activation {
	return n.activation
}

func (n *Network) LearningRate() float64 {
	return n.learningRate
}

// Architecture renders the layer sizes as "2-4-1".
func (n *Network) Architecture() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, "-")
}

type pass struct {
	activations [][]float64 // activations[0] is the input
	sums        [][]float64 // sums[l] feeds activations[l+1]
}

func (n *Network) forward(inputs []float64) (pass, error) {
	if len(inputs) != n.layers[0] {
		return pass{}, fmt.Errorf("%w: input size %d does not match input layer size %d", ErrSizeMismatch, len(inputs), n.layers[0])
	}
	fn := activations[n.activation]
	p := pass{activations: [][]float64{append([]float64(nil), inputs...)}}
	current := p.activations[0]
	for l := 0; l < len(n.layers)-1; l++ {
		sum := make([]float64, n.layers[l+1])
		for j, a := range current {
			for k, w := range n.weights[l][j] {
				sum[k] += a * w
			}
		}
		next := make([]float64, len(sum))
		for k := range sum {
			sum[k] += n.biases[l][k]
			next[k] = fn.activate(sum[k])
		}
		p.sums = append(p.sums, sum)
		p.activations = append(p.activations, next)
		current = next
	}
	return p, nil
}

// Predict runs a forward pass.
func (n *Network) Predict(inputs []float64) ([]float64, error) {
	p, err := n.forward(inputs)
	if err != nil {
		return nil, err
	}
	return p.activations[len(p.activations)-1], nil
}

// Train runs one backpropagation step on a single example and returns its
// mean squared error before the update.
func (n *Network) Train(inputs, targets []float64) (float64, error) {
	outSize := n.layers[len(n.layers)-1]
	if len(targets) != outSize {
		return 0, fmt.Errorf("%w: target size %d does not match output layer size %d", ErrSizeMismatch, len(targets), outSize)
	}
	p, err := n.forward(inputs)
	if err != nil {
		return 0, err
	}
	fn := activations[n.activation]
	last := len(n.layers) - 2
	outputs := p.activations[last+1]

	var mse float64
	deltas := make([]float64, outSize)
	for k := range targets {
		e := targets[k] - outputs[k]
		mse += e * e
		deltas[k] = e * fn.derivative(p.sums[last][k])
	}
	mse /= float64(outSize)

	for l := last; l >= 0; l-- {
		// Deltas for layer l are computed from the weights before they are updated.
		var prev []float64
		if l > 0 {
			prev = make([]float64, n.layers[l])
			for j := range prev {
				var s float64
				for k, d := range deltas {
					s += d * n.weights[l][j][k]
				}
				prev[j] = s * fn.derivative(p.sums[l-1][j])
			}
		}
		for j, a := range p.activations[l] {
			for k, d := range deltas {
				n.weights[l][j][k] += n.learningRate * d * a
			}
		}
		for k, d := range deltas {
			n.biases[l][k] += n.learningRate * d
		}
		deltas = prev
	}
	return mse, nil
}

// TrainBatch trains for the given number of epochs and returns the mean error of
// each epoch. batchSize <= 0 (or >= len(dataset)) trains on the whole set per
// epoch; otherwise the epoch error is the mean of the mini-batch means.
func (n *Network) TrainBatch(dataset []Sample, epochs, batchSize int, shuffle bool) ([]float64, error) {
	if len(dataset) == 0 {
		return nil, errors.New("neuralnet: empty dataset")
	}
	if epochs <= 0 {
		epochs = 100
	}
	data := append([]Sample(nil), dataset...)
	errs := make([]float64, 0, epochs)

	for epoch := 0; epoch < epochs; epoch++ {
		if shuffle {
			n.rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })
		}
		var epochErr float64
		if batchSize <= 0 || batchSize >= len(data) {
			for _, s := range data {
				e, err := n.Train(s.Inputs, s.Targets)
				if err != nil {
					return errs, err
				}
				epochErr += e
			}
			epochErr /= float64(len(data))
		} else {
			batches := 0
			for i := 0; i < len(data); i += batchSize {
				end := i + batchSize
				if end > len(data) {
					end = len(data)
				}
				var batchErr float64
				for _, s := range data[i:end] {
					e, err := n.Train(s.Inputs, s.Targets)
					if err != nil {
						return errs, err
					}
					batchErr += e
				}
				epochErr += batchErr / float64(end-i)
				batches++
			}
			epochErr /= float64(batches)
		}
		errs = append(errs, epochErr)
	}
	return errs, nil
}

type snapshot struct {
	Layers       []int         `json:"layers"`
	Weights      [][][]float64 `json:"weights"`
	Biases       [][]float64   `json:"biases"`
	Activation   Activation    `json:"activation"`
	LearningRate float64       `json:"learningRate"`
}

func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		Layers:       n.layers,
		Weights:      n.weights,
		Biases:       n.biases,
		Activation:   n.activation,
		LearningRate: n.learningRate,
	})
}

// FromJSON restores a network saved with MarshalJSON, validating every dimension.
func FromJSON(data []byte) (*Network, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	n, err := New(s.Layers, Options{Activation: s.Activation, LearningRate: s.LearningRate})
	if err != nil {
		return nil, err
	}
	if len(s.Weights) != len(n.weights) || len(s.Biases) != len(n.biases) {
		return nil, fmt.Errorf("%w: expected %d weight layers", ErrSizeMismatch, len(n.weights))
	}
	for l := range n.weights {
		if len(s.Weights[l]) != n.layers[l] || len(s.Biases[l]) != n.layers[l+1] {
			return nil, fmt.Errorf("%w: layer %d", ErrSizeMismatch, l)
		}
		for j := range s.Weights[l] {
			if len(s.Weights[l][j]) != n.layers[l+1] {
				return nil, fmt.Errorf("%w: layer %d neuron %d", ErrSizeMismatch, l, j)
			}
		}
	}
	n.weights = s.Weights
	n.biases = s.Biases
	return n, nil
}

// XORDataset is the classic non-linearly-separable demo set.
func XORDataset() []Sample {
	return []Sample{
		{Inputs: []float64{0, 0}, Targets: []float64{0}},
		{Inputs: []float64{0, 1}, Targets: []float64{1}},
		{Inputs: []float64{1, 0}, Targets: []float64{1}},
		{Inputs: []float64{1, 1}, Targets: []float64{0}},
	}
}
