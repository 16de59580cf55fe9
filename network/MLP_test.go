package network

import (
	"testing"

	G "gorgonia.org/gorgonia"
)

func TestNewMLPValidatesArguments(t *testing.T) {
	g := G.NewGraph()

	if _, err := NewMLP(0, 1, g, nil, nil, G.GlorotU(1.0), nil); err == nil {
		t.Error("expected an error for zero features")
	}
	if _, err := NewMLP(2, 1, g, []int{10}, []bool{true, false},
		G.GlorotU(1.0), []*Activation{ReLU()}); err == nil {
		t.Error("expected an error for mismatched biases")
	}
	if _, err := NewMLP(2, 1, g, []int{10}, []bool{true},
		G.GlorotU(1.0), []*Activation{ReLU(), TanH()}); err == nil {
		t.Error("expected an error for mismatched activations")
	}
}

func TestMLPLearnableCount(t *testing.T) {
	g := G.NewGraph()
	net, err := NewMLP(3, 1, g, []int{8, 4}, []bool{true, true},
		G.GlorotU(1.0), []*Activation{ReLU(), ReLU()})
	if err != nil {
		t.Fatal(err)
	}

	// Two hidden layers and the output layer, each with weights and a
	// bias
	if got := len(net.Learnables()); got != 6 {
		t.Errorf("invalid learnable count \n\twant(6)\n\thave(%d)", got)
	}
	if got := len(net.Model()); got != 6 {
		t.Errorf("invalid model size \n\twant(6)\n\thave(%d)", got)
	}
}

func TestMLPSetInputValidatesLength(t *testing.T) {
	g := G.NewGraph()
	net, err := NewMLP(3, 1, g, []int{4}, []bool{true}, G.GlorotU(1.0),
		[]*Activation{TanH()})
	if err != nil {
		t.Fatal(err)
	}

	if err := net.SetInput([]float64{1, 2}); err == nil {
		t.Error("expected an error for a short input")
	}
	if err := net.SetInput([]float64{1, 2, 3}); err != nil {
		t.Error(err)
	}
}

func TestActivationFromString(t *testing.T) {
	for _, name := range []string{"relu", "tanh", "identity"} {
		act, err := ActivationFromString(name)
		if err != nil {
			t.Fatal(err)
		}
		if act.String() != name {
			t.Errorf("invalid activation name \n\twant(%v)\n\thave(%v)",
				name, act.String())
		}
	}
	if _, err := ActivationFromString("softplus"); err == nil {
		t.Error("expected an error for an unknown activation")
	}
}
