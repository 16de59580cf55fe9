package robot

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func newTestVehicle(t *testing.T) *Vehicle {
	t.Helper()
	v, err := NewVehicle(2.0, 3.0, 10.0, 0, 100, 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// targets returns constant motor targets for one control step
func targets(v *Vehicle, turn, throttle float64) *mat.Dense {
	samples := v.SamplesPerEpoch()
	out := mat.NewDense(samples, NumActuators, nil)
	for k := 0; k < samples; k++ {
		out.Set(k, ActuatorTurn, turn)
		out.Set(k, ActuatorThrottle, throttle)
	}
	return out
}

func TestDrivingStraightMovesEast(t *testing.T) {
	v := newTestVehicle(t)

	for i := 0; i < 20; i++ {
		if _, err := v.Step(targets(v, 0, 1.0)); err != nil {
			t.Fatal(err)
		}
	}

	x, y := v.Position()
	if x <= 0 {
		t.Errorf("vehicle did not move east: x = %v", x)
	}
	if y != 0 {
		t.Errorf("straight drive drifted sideways: y = %v", y)
	}
}

func TestEpochCarriesSensorChannels(t *testing.T) {
	v := newTestVehicle(t)

	ep, err := v.Step(targets(v, 0.1, 0.5))
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"gps_x", "gps_y", "heading", "speed"} {
		samples, err := ep.Channel(key)
		if err != nil {
			t.Fatalf("missing channel %q", key)
		}
		if len(samples) != v.SamplesPerEpoch() {
			t.Errorf("invalid sample count for %q \n\twant(%d)\n\thave(%d)",
				key, v.SamplesPerEpoch(), len(samples))
		}
	}
	if ep.StartMS() != 0 || ep.EndMS() != 100 {
		t.Errorf("invalid epoch window [%d, %d)", ep.StartMS(), ep.EndMS())
	}

	next, err := v.Step(targets(v, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if next.StartMS() != 100 {
		t.Errorf("epoch windows not consecutive: start %d", next.StartMS())
	}
}

func TestHardTurnAtSpeedTumbles(t *testing.T) {
	v := newTestVehicle(t)

	// Get up to speed, then yank the wheel
	for i := 0; i < 20; i++ {
		if _, err := v.Step(targets(v, 0, 1.0)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := v.Step(targets(v, 5.0, 1.0)); err != nil {
		t.Fatal(err)
	}

	if !v.Tumbled() {
		t.Error("vehicle survived a hard turn at full speed")
	}

	// A tumbled vehicle no longer moves
	x1, y1 := v.Position()
	if _, err := v.Step(targets(v, 0, 1.0)); err != nil {
		t.Fatal(err)
	}
	x2, y2 := v.Position()
	if x1 != x2 || y1 != y2 {
		t.Error("tumbled vehicle kept moving")
	}
}

func TestRejectsWrongTargetShape(t *testing.T) {
	v := newTestVehicle(t)
	if _, err := v.Step(mat.NewDense(1, NumActuators, nil)); err == nil {
		t.Error("expected an error for wrong target dimensions")
	}
}

func TestResetRestoresPose(t *testing.T) {
	v := newTestVehicle(t)
	for i := 0; i < 20; i++ {
		if _, err := v.Step(targets(v, 0.5, 1.0)); err != nil {
			t.Fatal(err)
		}
	}
	v.Reset()

	x, y := v.Position()
	if x != 0 || y != 0 {
		t.Error("reset did not restore the position")
	}
	if v.Tumbled() {
		t.Error("reset kept the tumble flag")
	}
}
