package experiment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gohdp/hdp"
	"github.com/samuelfneumann/gohdp/history"
	"github.com/samuelfneumann/gohdp/plant"
	"github.com/samuelfneumann/gohdp/policy"
	"github.com/samuelfneumann/gohdp/rl"
	"github.com/samuelfneumann/gohdp/robot"
)

func newTestVehicle(t *testing.T) *robot.Vehicle {
	t.Helper()
	vehicle, err := robot.NewVehicle(2.0, 3.0, 50.0, 0.001, 100, 20, 1)
	require.NoError(t, err)
	return vehicle
}

// newTestDriver builds a driver on the simulated vehicle's two
// actuators, without a learner
func newTestDriver(t *testing.T) *rl.ActorCritic {
	t.Helper()
	pol, err := policy.NewDirect([]float64{0.0, 0.5}, []r1.Interval{
		{Min: -1, Max: 1},
		{Min: 0, Max: 1},
	})
	require.NoError(t, err)

	driver, err := rl.NewActorCritic(plant.NewSpeedReward(), pol,
		rl.Const(0.02), rl.Const(0.9), nil, 2)
	require.NoError(t, err)
	return driver
}

func attachLearner(t *testing.T, driver *rl.ActorCritic) *hdp.ADHDP {
	t.Helper()
	critic, err := hdp.NewESNCritic(4, 30, 0.9, 0.2, 1.0, 0.5, 1.0, 10.0, 23)
	require.NoError(t, err)
	learner, err := hdp.New(driver, critic, hdp.NewActionGradient(1, 0))
	require.NoError(t, err)
	return learner
}

func TestOnlineRunsAllEpisodes(t *testing.T) {
	driver := newTestDriver(t)
	attachLearner(t, driver)
	vehicle := newTestVehicle(t)

	exp, err := NewOnline(driver, vehicle, 2, 10, nil)
	require.NoError(t, err)

	require.NoError(t, exp.Run())
	require.Equal(t, 2, driver.NumEpisode())
	require.NoError(t, exp.Save())
}

func TestOnlineRecordsHistory(t *testing.T) {
	driver := newTestDriver(t)
	attachLearner(t, driver)
	vehicle := newTestVehicle(t)

	exp, err := NewOnline(driver, vehicle, 2, 5, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "history.bin")
	writer, err := history.NewWriter(path)
	require.NoError(t, err)
	exp.SetWriter(writer)

	require.NoError(t, exp.Run())
	require.NoError(t, exp.Save())

	episodes, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	// Every learning epoch carries the actions that produced it
	last := episodes[0].Epochs[len(episodes[0].Epochs)-1]
	require.True(t, last.Has("a_curr"))
	require.True(t, last.Has("a_next"))
}

func TestCollectorWalksWithinBounds(t *testing.T) {
	driver := newTestDriver(t)
	vehicle := newTestVehicle(t)

	_, err := NewCollector(driver, 2, 0.2, 9)
	require.NoError(t, err)

	exp, err := NewOnline(driver, vehicle, 1, 50, nil)
	require.NoError(t, err)
	require.NoError(t, exp.Run())

	a := driver.Action()
	bounds := driver.Policy().ActionBounds()
	for i := 0; i < a.Len(); i++ {
		require.GreaterOrEqual(t, a.AtVec(i), bounds[i].Min)
		require.LessOrEqual(t, a.AtVec(i), bounds[i].Max)
	}
}

func TestPlaybackReplaysRecordedData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.bin")

	// Collect a short run without a learner
	collectDriver := newTestDriver(t)
	_, err := NewCollector(collectDriver, 2, 0.2, 9)
	require.NoError(t, err)

	collect, err := NewOnline(collectDriver, newTestVehicle(t), 2, 20, nil)
	require.NoError(t, err)
	writer, err := history.NewWriter(path)
	require.NoError(t, err)
	collect.SetWriter(writer)
	require.NoError(t, collect.Run())
	require.NoError(t, collect.Save())

	// Replay through a learning driver
	replayDriver := newTestDriver(t)
	attachLearner(t, replayDriver)

	playback, err := NewPlayback(replayDriver, path, 0.9, nil)
	require.NoError(t, err)
	require.NoError(t, playback.Run())

	nrmsd := playback.NRMSD()
	require.False(t, nrmsd < 0)
	require.False(t, nrmsd != nrmsd, "NRMSD is NaN")

	// Replay leaves the driver's own action selection in place
	require.Nil(t, replayDriver.NextActionHook())
}

func TestPlaybackErrStartEpisodeDelaysAccounting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.bin")

	collectDriver := newTestDriver(t)
	_, err := NewCollector(collectDriver, 2, 0.2, 9)
	require.NoError(t, err)

	collect, err := NewOnline(collectDriver, newTestVehicle(t), 2, 20, nil)
	require.NoError(t, err)
	writer, err := history.NewWriter(path)
	require.NoError(t, err)
	collect.SetWriter(writer)
	require.NoError(t, collect.Run())
	require.NoError(t, collect.Save())

	replayDriver := newTestDriver(t)
	attachLearner(t, replayDriver)

	playback, err := NewPlayback(replayDriver, path, 0.9, nil)
	require.NoError(t, err)

	// Starting the accounting past the last episode leaves the error
	// average untouched
	playback.SetErrStartEpisode(99)
	require.NoError(t, playback.Run())
	require.Zero(t, playback.NRMSD())
}

func TestCheckpointerSavesOnInterval(t *testing.T) {
	dir := t.TempDir()
	checkpointer, err := NewCheckpointer(dir, 2)
	require.NoError(t, err)

	driver := newTestDriver(t)
	attachLearner(t, driver)

	require.NoError(t, checkpointer.Checkpoint(driver, 0))
	require.NoFileExists(t, filepath.Join(dir, "checkpoint-000000.bin"))

	require.NoError(t, checkpointer.Checkpoint(driver, 1))
	require.FileExists(t, filepath.Join(dir, "checkpoint-000001.bin"))
}
