package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a single-output-head multi-layer perceptron. The
// network runs a single sample at a time, which matches the strictly
// online learners that use it.
type MLP struct {
	g      *G.ExprGraph
	layers []*fcLayer

	input      *G.Node
	prediction *G.Node
	predVal    G.Value

	features int
	outputs  int

	learnables G.Nodes
}

// NewMLP returns a new MLP with the given hidden layer sizes and
// activations. The lengths of hiddenSizes, biases and activations must
// agree; an output layer of size outputs with a bias and no activation
// is appended automatically.
func NewMLP(features, outputs int, g *G.ExprGraph, hiddenSizes []int,
	biases []bool, init G.InitWFn, activations []*Activation) (NeuralNet,
	error) {
	if features <= 0 {
		return nil, fmt.Errorf("newmlp: invalid number of features %d",
			features)
	}
	if outputs <= 0 {
		return nil, fmt.Errorf("newmlp: invalid number of outputs %d", outputs)
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("newmlp: invalid number of biases\n\twant(%d)"+
			"\n\thave(%d)", len(hiddenSizes), len(biases))
	}
	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("newmlp: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(activations))
	}

	// Output layer
	hiddenSizes = append(hiddenSizes, outputs)
	biases = append(biases, true)
	activations = append(activations, Identity())

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(1, features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(hiddenSizes))
	in := features
	for i, out := range hiddenSizes {
		layers[i] = newFCLayer(g, in, out, biases[i], init, activations[i], i)
		in = out
	}

	net := &MLP{
		g:        g,
		layers:   layers,
		input:    input,
		features: features,
		outputs:  outputs,
	}

	pred, err := net.fwd(input)
	if err != nil {
		return nil, fmt.Errorf("newmlp: could not compute forward pass: %v",
			err)
	}
	net.prediction = pred
	G.Read(net.prediction, &net.predVal)

	return net, nil
}

// fwd adds the forward pass of the MLP to its graph
func (m *MLP) fwd(x *G.Node) (*G.Node, error) {
	for i, layer := range m.layers {
		var err error
		x, err = layer.fwd(x)
		if err != nil {
			return nil, fmt.Errorf("fwd: could not compute layer %d: %v", i,
				err)
		}
	}
	return x, nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph { return m.g }

// Input returns the input node of the MLP
func (m *MLP) Input() *G.Node { return m.input }

// SetInput sets the value of the input node for the next VM run
func (m *MLP) SetInput(input []float64) error {
	if len(input) != m.features {
		return fmt.Errorf("setinput: invalid number of features\n\twant(%d)"+
			"\n\thave(%d)", m.features, len(input))
	}
	backing := make([]float64, len(input))
	copy(backing, input)
	inputTensor := tensor.New(
		tensor.WithBacking(backing),
		tensor.WithShape(1, m.features),
	)
	return G.Let(m.input, inputTensor)
}

// Prediction returns the node holding the MLP's output
func (m *MLP) Prediction() *G.Node { return m.prediction }

// Output returns the value of the prediction node from the last VM run
func (m *MLP) Output() G.Value { return m.predVal }

// Learnables returns the nodes of learnable weights
func (m *MLP) Learnables() G.Nodes {
	if m.learnables == nil {
		for _, layer := range m.layers {
			m.learnables = append(m.learnables, layer.weights)
			if layer.bias != nil {
				m.learnables = append(m.learnables, layer.bias)
			}
		}
	}
	return m.learnables
}

// Model returns the learnables along with their gradients
func (m *MLP) Model() []G.ValueGrad {
	learnables := m.Learnables()
	model := make([]G.ValueGrad, len(learnables))
	for i, l := range learnables {
		model[i] = l
	}
	return model
}

// Set copies the weights of source into the receiver. The
// architectures must agree.
func (m *MLP) Set(source NeuralNet) error {
	srcLearnables := source.Learnables()
	learnables := m.Learnables()
	if len(srcLearnables) != len(learnables) {
		return fmt.Errorf("set: incompatible number of learnables"+
			"\n\twant(%d)\n\thave(%d)", len(learnables), len(srcLearnables))
	}
	for i, l := range learnables {
		src := srcLearnables[i].Value().(*tensor.Dense).Clone().(*tensor.Dense)
		if err := G.Let(l, src); err != nil {
			return fmt.Errorf("set: could not copy learnable %d: %v", i, err)
		}
	}
	return nil
}

// Features returns the input dimension of the MLP
func (m *MLP) Features() int { return m.features }

// Outputs returns the output dimension of the MLP
func (m *MLP) Outputs() int { return m.outputs }
