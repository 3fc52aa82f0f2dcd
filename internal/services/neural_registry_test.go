package services

import (
	"math"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/pkg/neuralnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkRegistry_TrainPredictExport(t *testing.T) {
	reg := NewNetworkRegistry()
	res, err := reg.Train(TrainRequest{Preset: "xor", Epochs: 200, LearningRate: 0.5, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, "2-4-1", res.Architecture)
	assert.Equal(t, "sigmoid", res.Activation)
	assert.Len(t, res.Errors, sampledErrorCount)
	assert.Equal(t, res.FinalError, res.Errors[len(res.Errors)-1])

	out, err := reg.Predict(res.ID, []float64{1, 0})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = reg.Predict(res.ID, []float64{1})
	assert.Equal(t, 400, apperr.HTTPStatus(err))

	raw, err := reg.Export(res.ID)
	require.NoError(t, err)
	restored, err := neuralnet.FromJSON(raw)
	require.NoError(t, err)
	again, err := restored.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, out[0], again[0], 1e-12)

	_, err = reg.Predict("missing", []float64{0, 0})
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestNetworkRegistry_Validation(t *testing.T) {
	reg := NewNetworkRegistry()
	_, err := reg.Train(TrainRequest{Layers: []int{2, 1}})
	assert.Error(t, err)
	_, err = reg.Train(TrainRequest{Preset: "parity"})
	assert.Error(t, err)
	_, err = reg.Train(TrainRequest{Layers: []int{2, 500, 1}, Preset: "xor"})
	assert.Error(t, err)
	_, err = reg.Train(TrainRequest{Layers: []int{3, 1}, Preset: "xor"})
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	_, err = reg.Train(TrainRequest{Preset: "xor", Activation: "softmax"})
	assert.Error(t, err)
}

func TestNetworkRegistry_RejectsLearningRateOutOfRange(t *testing.T) {
	reg := NewNetworkRegistry()
	for _, lr := range []float64{-0.1, 10.5, 1000} {
		_, err := reg.Train(TrainRequest{Preset: "xor", Activation: "leakyRelu", LearningRate: lr, Epochs: 50})
		assert.Equal(t, 400, apperr.HTTPStatus(err), "lr=%v", lr)
	}
	_, err := reg.Train(TrainRequest{Preset: "xor", LearningRate: maxLearningRate, Epochs: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestNetworkRegistry_DivergedTrainingNotStored(t *testing.T) {
	reg := NewNetworkRegistry()
	_, err := reg.Train(TrainRequest{
		Layers:       []int{1, 1},
		LearningRate: 1,
		Epochs:       5,
		Dataset:      []neuralnet.Sample{{Inputs: []float64{1}, Targets: []float64{1e200}}},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Contains(t, err.Error(), "diverged")
	assert.Equal(t, 0, reg.Len())
}

func TestFirstNonFinite(t *testing.T) {
	assert.Equal(t, -1, firstNonFinite([]float64{0.5, 0.1}))
	assert.Equal(t, 1, firstNonFinite([]float64{0.5, math.Inf(1), 0.1}))
	assert.Equal(t, 0, firstNonFinite([]float64{math.NaN()}))
}

func TestNetworkRegistry_EvictsOldest(t *testing.T) {
	reg := NewNetworkRegistry()
	first, err := reg.Train(TrainRequest{Preset: "xor", Epochs: 1})
	require.NoError(t, err)
	for i := 0; i < MaxStoredNetworks; i++ {
		_, err := reg.Train(TrainRequest{Preset: "xor", Epochs: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, MaxStoredNetworks, reg.Len())
	_, err = reg.Export(first.ID)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestSampleErrors(t *testing.T) {
	errs := make([]float64, 100)
	for i := range errs {
		errs[i] = float64(i)
	}
	got := sampleErrors(errs, 5)
	assert.Equal(t, []float64{0, 25, 50, 74, 99}, got)
	assert.Equal(t, []float64{1, 2}, sampleErrors([]float64{1, 2}, 5))
}
