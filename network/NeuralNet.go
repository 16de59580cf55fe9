// Package network implements the feed forward neural networks used as
// function approximators. Networks expose their input node so that
// callers can differentiate the output with respect to the input as
// well as the weights.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a function approximator built on a Gorgonia
// computational graph
type NeuralNet interface {
	// Graph returns the computational graph of the NeuralNet
	Graph() *G.ExprGraph

	// Input returns the input node of the NeuralNet
	Input() *G.Node

	// SetInput sets the value of the input node for the next run of a
	// VM on the NeuralNet's graph
	SetInput(input []float64) error

	// Prediction returns the node holding the NeuralNet's output
	Prediction() *G.Node

	// Output returns the value of the prediction node computed by the
	// last run of a VM on the NeuralNet's graph
	Output() G.Value

	// Learnables returns the nodes of learnable weights
	Learnables() G.Nodes

	// Model returns the learnables along with their gradients
	Model() []G.ValueGrad

	// Set copies the weights of another NeuralNet of the same
	// architecture into the receiver
	Set(source NeuralNet) error

	// Features returns the input dimension of the NeuralNet
	Features() int

	// Outputs returns the output dimension of the NeuralNet
	Outputs() int
}
