package tracker

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/gohdp/epoch"
)

func annotatedEpoch(reward, tdErr float64) *epoch.Epoch {
	ep := epoch.New(0, 100, 20)
	ep.SetScalar("reward", reward)
	ep.SetScalar("err", tdErr)
	return ep
}

func TestReturnAccumulatesPerEpisode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "return.bin")
	r := NewReturn(path)

	r.Track(annotatedEpoch(1.0, 0))
	r.Track(annotatedEpoch(2.0, 0))
	r.NewEpisode()
	r.Track(annotatedEpoch(-0.5, 0))
	r.NewEpisode()

	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := LoadData(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 {
		t.Fatalf("invalid episode count \n\twant(2)\n\thave(%d)", len(data))
	}
	if data[0] != 3.0 || data[1] != -0.5 {
		t.Errorf("invalid returns %v", data)
	}
}

func TestTDErrorAveragesSquares(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tderror.bin")
	tr := NewTDError(path)

	tr.Track(annotatedEpoch(0, 1.0))
	tr.Track(annotatedEpoch(0, -3.0))
	tr.NewEpisode()

	// Episode without annotations reports zero
	tr.NewEpisode()

	if err := tr.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := LoadData(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 {
		t.Fatalf("invalid episode count \n\twant(2)\n\thave(%d)", len(data))
	}
	if data[0] != 5.0 {
		t.Errorf("invalid mean squared error \n\twant(5)\n\thave(%v)",
			data[0])
	}
	if data[1] != 0 {
		t.Errorf("empty episode error \n\twant(0)\n\thave(%v)", data[1])
	}
}

func TestTrackIgnoresUnannotatedEpochs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "return.bin")
	r := NewReturn(path)

	r.Track(epoch.New(0, 100, 20))
	r.Track(annotatedEpoch(1.5, 0))
	r.NewEpisode()

	if err := r.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := LoadData(path)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 1.5 {
		t.Errorf("invalid return \n\twant(1.5)\n\thave(%v)", data[0])
	}
}
