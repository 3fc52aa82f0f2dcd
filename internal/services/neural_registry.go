package services

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/pkg/neuralnet"
	"github.com/google/uuid"
)

const (
	MaxStoredNetworks = 32
	maxTrainEpochs    = 10000
	maxLearningRate   = 10
	maxLayerSize      = 64
	maxLayers         = 6
	sampledErrorCount = 20
)

var ErrNetworkNotFound = errors.New("network not found")

// TrainRequest is the body of POST /api/neural-network/train. Either Dataset or
// Preset ("xor") supplies the samples.
type TrainRequest struct {
	Layers       []int              `json:"layers"`
	Activation   string             `json:"activation,omitempty"`
	LearningRate float64            `json:"learningRate,omitempty"`
	Epochs       int                `json:"epochs,omitempty"`
	BatchSize    int                `json:"batchSize,omitempty"`
	Shuffle      bool               `json:"shuffle,omitempty"`
	Dataset      []neuralnet.Sample `json:"dataset,omitempty"`
	Preset       string             `json:"preset,omitempty"`
	Seed         int64              `json:"seed,omitempty"`
}

type TrainResult struct {
	ID           string    `json:"id"`
	Architecture string    `json:"architecture"`
	Activation   string    `json:"activation"`
	Epochs       int       `json:"epochs"`
	FinalError   float64   `json:"finalError"`
	Errors       []float64 `json:"errors"`
	TrainedAt    time.Time `json:"trainedAt"`
}

type storedNetwork struct {
	mu  sync.Mutex
	net *neuralnet.Network
}

// NetworkRegistry keeps trained networks in memory, evicting the oldest once
// MaxStoredNetworks is reached.
type NetworkRegistry struct {
	mu       sync.Mutex
	networks map[string]*storedNetwork
	order    []string
}

func NewNetworkRegistry() *NetworkRegistry {
	return &NetworkRegistry{networks: make(map[string]*storedNetwork)}
}

// Train builds and trains a network, then stores it.
func (r *NetworkRegistry) Train(req TrainRequest) (*TrainResult, error) {
	layers := req.Layers
	dataset := req.Dataset
	if strings.EqualFold(req.Preset, "xor") {
		dataset = neuralnet.XORDataset()
		if len(layers) == 0 {
			layers = []int{2, 4, 1}
		}
	} else if req.Preset != "" {
		return nil, apperr.Newf(apperr.InputInvalid, "unknown preset %q", req.Preset)
	}
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	if len(dataset) == 0 {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "dataset or preset is required")
	}

	// zero selects the network default
	if req.LearningRate < 0 || req.LearningRate > maxLearningRate {
		return nil, apperr.Newf(apperr.InputInvalid, "learningRate must be in (0, %d]", maxLearningRate)
	}

	epochs := req.Epochs
	if epochs <= 0 {
		epochs = 1000
	}
	if epochs > maxTrainEpochs {
		epochs = maxTrainEpochs
	}

	net, err := neuralnet.New(layers, neuralnet.Options{
		Activation:   neuralnet.Activation(req.Activation),
		LearningRate: req.LearningRate,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, apperr.Newf(apperr.InputInvalid, "%v", err)
	}
	errs, err := net.TrainBatch(dataset, epochs, req.BatchSize, req.Shuffle)
	if err != nil {
		if errors.Is(err, neuralnet.ErrSizeMismatch) {
			return nil, apperr.Newf(apperr.InputInvalid, "%v", err)
		}
		return nil, err
	}
	if i := firstNonFinite(errs); i >= 0 {
		return nil, apperr.Newf(apperr.InputInvalid,
			"training diverged at epoch %d; try a smaller learningRate", i+1)
	}

	id := uuid.New().String()
	r.store(id, net)

	return &TrainResult{
		ID:           id,
		Architecture: net.Architecture(),
		Activation:   string(net.Activation()),
		Epochs:       epochs,
		FinalError:   errs[len(errs)-1],
		Errors:       sampleErrors(errs, sampledErrorCount),
		TrainedAt:    time.Now().UTC(),
	}, nil
}

func firstNonFinite(errs []float64) int {
	for i, e := range errs {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return i
		}
	}
	return -1
}

func validateLayers(layers []int) error {
	if len(layers) < 2 || len(layers) > maxLayers {
		return apperr.Newf(apperr.InputInvalid, "layers must have between 2 and %d entries", maxLayers)
	}
	for _, n := range layers {
		if n <= 0 || n > maxLayerSize {
			return apperr.Newf(apperr.InputInvalid, "layer sizes must be between 1 and %d", maxLayerSize)
		}
	}
	return nil
}

func (r *NetworkRegistry) store(id string, net *neuralnet.Network) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.order) >= MaxStoredNetworks {
		delete(r.networks, r.order[0])
		r.order = r.order[1:]
	}
	r.networks[id] = &storedNetwork{net: net}
	r.order = append(r.order, id)
}

func (r *NetworkRegistry) lookup(id string) (*storedNetwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sn, ok := r.networks[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return sn, nil
}

// Predict runs inputs through a stored network.
func (r *NetworkRegistry) Predict(id string, inputs []float64) ([]float64, error) {
	sn, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	sn.mu.Lock()
	defer sn.mu.Unlock()

	out, err := sn.net.Predict(inputs)
	if err != nil {
		return nil, apperr.Newf(apperr.InputInvalid, "%v", err)
	}
	return out, nil
}

// Export returns the stored network's JSON snapshot.
func (r *NetworkRegistry) Export(id string) (json.RawMessage, error) {
	sn, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	sn.mu.Lock()
	defer sn.mu.Unlock()

	return json.Marshal(sn.net)
}

func (r *NetworkRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// sampleErrors keeps at most n evenly spaced epoch errors, always including
// the last one.
func sampleErrors(errs []float64, n int) []float64 {
	if len(errs) <= n {
		return append([]float64(nil), errs...)
	}
	out := make([]float64, 0, n)
	step := float64(len(errs)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, errs[int(float64(i)*step+0.5)])
	}
	out[n-1] = errs[len(errs)-1]
	return out
}
