package epoch

import (
	"bytes"
	"encoding/gob"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestChannelAccess(t *testing.T) {
	ep := New(0, 100, 20)
	ep.Set("speed", []float64{1, 2, 3})
	ep.SetScalar("reward", 0.5)
	ep.SetVec("a_curr", mat.NewVecDense(2, []float64{0.1, 0.2}))

	if ep.Len() != 3 {
		t.Errorf("invalid channel count \n\twant(3)\n\thave(%d)", ep.Len())
	}

	last, err := ep.Last("speed")
	if err != nil {
		t.Fatal(err)
	}
	if last != 3 {
		t.Errorf("invalid last sample \n\twant(3)\n\thave(%v)", last)
	}

	vec, err := ep.Vec("a_curr")
	if err != nil {
		t.Fatal(err)
	}
	if vec.Len() != 2 || vec.AtVec(1) != 0.2 {
		t.Error("vector channel round trip failed")
	}

	if _, err := ep.Channel("missing"); err == nil {
		t.Error("expected an error for a missing channel")
	}
}

func TestKeysAreSorted(t *testing.T) {
	ep := New(0, 100, 20)
	ep.SetScalar("zeta", 1)
	ep.SetScalar("alpha", 2)
	ep.SetScalar("mid", 3)

	keys := ep.Keys()
	want := []string{"alpha", "mid", "zeta"}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	ep := New(0, 100, 20)
	ep.Set("speed", []float64{1, 2, 3})

	clone := ep.Clone()
	clone.Set("speed", []float64{9, 9, 9})

	last, err := ep.Last("speed")
	if err != nil {
		t.Fatal(err)
	}
	if last != 3 {
		t.Error("mutating a clone changed the original")
	}
}

func TestMergeConcatenatesChannels(t *testing.T) {
	first := New(0, 100, 20)
	first.Set("speed", []float64{1, 2})
	first.SetScalar("reward", 0.5)

	second := New(100, 200, 20)
	second.Set("speed", []float64{3, 4})
	second.SetScalar("gps_x", 7)

	first.Merge(second)

	if first.StartMS() != 0 || first.EndMS() != 200 {
		t.Errorf("merged window \n\twant([0, 200))\n\thave([%d, %d))",
			first.StartMS(), first.EndMS())
	}

	speed, err := first.Channel("speed")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 2, 3, 4}
	if len(speed) != len(want) {
		t.Fatalf("invalid merged length \n\twant(%d)\n\thave(%d)", len(want),
			len(speed))
	}
	for i, w := range want {
		if speed[i] != w {
			t.Errorf("invalid merged sample at %d \n\twant(%v)\n\thave(%v)",
				i, w, speed[i])
		}
	}

	// Channels missing from one side are kept whole
	if reward, err := first.Last("reward"); err != nil || reward != 0.5 {
		t.Error("merge dropped a channel of the receiver")
	}
	if gpsX, err := first.Last("gps_x"); err != nil || gpsX != 7 {
		t.Error("merge dropped a channel of the argument")
	}

	// The merged epoch must not alias the argument's data
	raw, err := second.Channel("speed")
	if err != nil {
		t.Fatal(err)
	}
	raw[1] = 9
	if last, _ := first.Last("speed"); last != 4 {
		t.Error("merged samples alias the argument")
	}
}

func TestGobRoundTrip(t *testing.T) {
	ep := New(200, 300, 20)
	ep.Set("gps_x", []float64{0.1, 0.2})
	ep.SetScalar("reward", -1.5)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ep); err != nil {
		t.Fatal(err)
	}
	decoded := new(Epoch)
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.StartMS() != 200 || decoded.EndMS() != 300 ||
		decoded.StepMS() != 20 {
		t.Error("decoded epoch lost its time window")
	}
	reward, err := decoded.Last("reward")
	if err != nil {
		t.Fatal(err)
	}
	if reward != -1.5 {
		t.Errorf("decoded reward \n\twant(-1.5)\n\thave(%v)", reward)
	}
}
