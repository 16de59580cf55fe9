package hdp

import (
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/gohdp/network"
	"github.com/samuelfneumann/gohdp/solver"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLPCritic approximates J with a feed forward neural network. Two
// copies of the network live on separate graphs: an evaluation network
// whose graph also differentiates J with respect to the input, and a
// training network whose graph carries the squared TD loss. After each
// weight update the evaluation network is synchronized from the
// training network.
type MLPCritic struct {
	inputDim int

	evalNet network.NeuralNet
	evalVM  G.VM

	trainNet network.NeuralNet
	trainVM  G.VM
	target   *G.Node
	sol      *solver.Solver

	// Inputs of the latest and the preceding committed Eval
	curInput  []float64
	prevInput []float64

	lastJ     float64
	lastDeriv *mat.VecDense
}

// NewMLPCritic returns a critic backed by an MLP with the given hidden
// layers, trained by sol on a squared TD loss
func NewMLPCritic(inputDim int, hiddenSizes []int, biases []bool,
	init G.InitWFn, activations []*network.Activation,
	sol *solver.Solver) (*MLPCritic, error) {
	if sol == nil {
		return nil, fmt.Errorf("newmlpcritic: no solver")
	}

	gEval := G.NewGraph()
	evalNet, err := network.NewMLP(inputDim, 1, gEval, hiddenSizes, biases,
		init, activations)
	if err != nil {
		return nil, fmt.Errorf("newmlpcritic: could not create evaluation "+
			"network: %v", err)
	}

	// Differentiate J with respect to the input on the evaluation graph
	sum := G.Must(G.Sum(evalNet.Prediction()))
	if _, err := G.Grad(sum, evalNet.Input()); err != nil {
		return nil, fmt.Errorf("newmlpcritic: could not compute input "+
			"gradient: %v", err)
	}
	evalVM := G.NewTapeMachine(
		gEval,
		G.BindDualValues(append(evalNet.Learnables(), evalNet.Input())...),
	)

	gTrain := G.NewGraph()
	trainNet, err := network.NewMLP(inputDim, 1, gTrain, hiddenSizes, biases,
		init, activations)
	if err != nil {
		return nil, fmt.Errorf("newmlpcritic: could not create training "+
			"network: %v", err)
	}
	if err := trainNet.Set(evalNet); err != nil {
		return nil, fmt.Errorf("newmlpcritic: could not synchronize "+
			"networks: %v", err)
	}

	target := G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithShape(1, 1),
		G.WithName("target"),
		G.WithInit(G.Zeroes()),
	)
	diff := G.Must(G.Sub(trainNet.Prediction(), target))
	cost := G.Must(G.Mean(G.Must(G.Square(diff))))
	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newmlpcritic: could not compute loss "+
			"gradient: %v", err)
	}
	trainVM := G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	return &MLPCritic{
		inputDim: inputDim,
		evalNet:  evalNet,
		evalVM:   evalVM,
		trainNet: trainNet,
		trainVM:  trainVM,
		target:   target,
		sol:      sol,
	}, nil
}

// InputDim returns the expected input dimension
func (m *MLPCritic) InputDim() int { return m.inputDim }

// run performs one forward and backward pass of the evaluation network
// on input u, returning J(u) and ∂J/∂u
func (m *MLPCritic) run(u *mat.VecDense) (float64, *mat.VecDense, error) {
	if u.Len() != m.inputDim {
		return 0, nil, fmt.Errorf("run: invalid input dimension \n\twant(%d)"+
			"\n\thave(%d)", m.inputDim, u.Len())
	}

	if err := m.evalNet.SetInput(u.RawVector().Data); err != nil {
		return 0, nil, fmt.Errorf("run: could not set input: %v", err)
	}
	m.evalVM.Reset()
	if err := m.evalVM.RunAll(); err != nil {
		return 0, nil, fmt.Errorf("run: could not run evaluation: %v", err)
	}

	j := m.evalNet.Output().Data().([]float64)[0]

	grad, err := m.evalNet.Input().Grad()
	if err != nil {
		return 0, nil, fmt.Errorf("run: could not read input gradient: %v",
			err)
	}
	gradData := grad.Data().([]float64)
	deriv := mat.NewVecDense(m.inputDim, nil)
	for i := 0; i < m.inputDim; i++ {
		deriv.SetVec(i, gradData[i])
	}
	return j, deriv, nil
}

// Eval commits an evaluation of input u
func (m *MLPCritic) Eval(u *mat.VecDense) (float64, error) {
	j, deriv, err := m.run(u)
	if err != nil {
		return 0, fmt.Errorf("eval: %v", err)
	}

	m.prevInput = m.curInput
	m.curInput = make([]float64, u.Len())
	copy(m.curInput, u.RawVector().Data)

	m.lastJ = j
	m.lastDeriv = deriv
	return j, nil
}

// Deriv returns ∂J/∂u at the input of the last committed Eval
func (m *MLPCritic) Deriv() (*mat.VecDense, error) {
	if m.lastDeriv == nil {
		return nil, fmt.Errorf("deriv: no committed evaluation")
	}
	return mat.VecDenseCopyOf(m.lastDeriv), nil
}

// Simulate evaluates a candidate input without committing it
func (m *MLPCritic) Simulate(u *mat.VecDense) (float64, *mat.VecDense,
	error) {
	j, deriv, err := m.run(u)
	if err != nil {
		return 0, nil, fmt.Errorf("simulate: %v", err)
	}
	return j, deriv, nil
}

// TrainLast performs one gradient step moving the prediction at the
// previous committed input toward target, then synchronizes the
// evaluation network
func (m *MLPCritic) TrainLast(targetValue float64) error {
	if m.prevInput == nil {
		return nil
	}

	if err := m.trainNet.SetInput(m.prevInput); err != nil {
		return fmt.Errorf("trainlast: could not set input: %v", err)
	}
	targetTensor := tensor.New(
		tensor.WithBacking([]float64{targetValue}),
		tensor.WithShape(1, 1),
	)
	if err := G.Let(m.target, targetTensor); err != nil {
		return fmt.Errorf("trainlast: could not set target: %v", err)
	}

	m.trainVM.Reset()
	if err := m.trainVM.RunAll(); err != nil {
		return fmt.Errorf("trainlast: could not run training pass: %v", err)
	}
	if err := m.sol.Step(m.trainNet.Model()); err != nil {
		return fmt.Errorf("trainlast: could not update weights: %v", err)
	}

	if err := m.evalNet.Set(m.trainNet); err != nil {
		return fmt.Errorf("trainlast: could not synchronize networks: %v",
			err)
	}
	return nil
}

// Reset clears the critic's trajectory state for a new episode
func (m *MLPCritic) Reset() {
	m.curInput = nil
	m.prevInput = nil
	m.lastDeriv = nil
	m.lastJ = 0
}

// SaveState persists the network weights through a gob stream
func (m *MLPCritic) SaveState(enc *gob.Encoder) error {
	learnables := m.trainNet.Learnables()
	weights := make([][]float64, len(learnables))
	for i, l := range learnables {
		data := l.Value().Data().([]float64)
		weights[i] = make([]float64, len(data))
		copy(weights[i], data)
	}
	if err := enc.Encode(weights); err != nil {
		return fmt.Errorf("savestate: could not encode weights: %v", err)
	}
	return nil
}

// LoadState restores network weights saved by SaveState. The critic
// must already be constructed with the same architecture.
func (m *MLPCritic) LoadState(dec *gob.Decoder) error {
	var weights [][]float64
	if err := dec.Decode(&weights); err != nil {
		return fmt.Errorf("loadstate: could not decode weights: %v", err)
	}

	learnables := m.trainNet.Learnables()
	if len(weights) != len(learnables) {
		return fmt.Errorf("loadstate: incompatible number of weight tensors"+
			"\n\twant(%d)\n\thave(%d)", len(learnables), len(weights))
	}
	for i, l := range learnables {
		w := tensor.New(
			tensor.WithBacking(weights[i]),
			tensor.WithShape(l.Shape()...),
		)
		if err := G.Let(l, w); err != nil {
			return fmt.Errorf("loadstate: could not set weights: %v", err)
		}
	}

	if err := m.evalNet.Set(m.trainNet); err != nil {
		return fmt.Errorf("loadstate: could not synchronize networks: %v",
			err)
	}
	m.Reset()
	return nil
}
