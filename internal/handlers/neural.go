package handlers

import (
	"net/http"

	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type PredictRequest struct {
	Inputs []float64 `json:"inputs"`
}

type PredictResponse struct {
	ID      string    `json:"id"`
	Inputs  []float64 `json:"inputs"`
	Outputs []float64 `json:"outputs"`
}

// TrainNetwork trains a network on the posted dataset (or the "xor" preset)
// and keeps it in the registry for later predictions.
func TrainNetwork(w http.ResponseWriter, r *http.Request) {
	var req services.TrainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := networkRegistry.Train(req)
	if err != nil {
		writeError(w, err, "training failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func PredictNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := networkRegistry.Predict(id, req.Inputs)
	if err != nil {
		writeError(w, err, "prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, PredictResponse{ID: id, Inputs: req.Inputs, Outputs: out})
}

// GetNetwork returns the stored network as JSON (layers, weights, biases).
func GetNetwork(w http.ResponseWriter, r *http.Request) {
	data, err := networkRegistry.Export(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "failed to export network")
		return
	}
	writeJSON(w, http.StatusOK, data)
}
