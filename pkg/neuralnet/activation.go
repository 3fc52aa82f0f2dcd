package neuralnet

import (
	"fmt"
	"math"
)

// Activation names a neuron activation function.
type Activation string

const (
	Sigmoid   Activation = "sigmoid"
	Tanh      Activation = "tanh"
	ReLU      Activation = "relu"
	LeakyReLU Activation = "leakyRelu"
)

const leakySlope = 0.01

type activationFunc struct {
	activate   func(float64) float64
	derivative func(float64) float64 // of the weighted sum z
}

var activations = map[Activation]activationFunc{
	Sigmoid: {
		activate: sigmoid,
		derivative: func(z float64) float64 {
			s := sigmoid(z)
			return s * (1 - s)
		},
	},
	Tanh: {
		activate: math.Tanh,
		derivative: func(z float64) float64 {
			t := math.Tanh(z)
			return 1 - t*t
		},
	},
	ReLU: {
		activate: func(z float64) float64 { return math.Max(0, z) },
		derivative: func(z float64) float64 {
			if z > 0 {
				return 1
			}
			return 0
		},
	},
	LeakyReLU: {
		activate: func(z float64) float64 {
			if z > 0 {
				return z
			}
			return leakySlope * z
		},
		derivative: func(z float64) float64 {
			if z > 0 {
				return 1
			}
			return leakySlope
		},
	},
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// ParseActivation validates an activation name; "" defaults to sigmoid.
func ParseActivation(name string) (Activation, error) {
	if name == "" {
		return Sigmoid, nil
	}
	a := Activation(name)
	if _, ok := activations[a]; !ok {
		return "", fmt.Errorf("unknown activation %q", name)
	}
	return a, nil
}
