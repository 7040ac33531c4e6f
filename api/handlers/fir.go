package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/fir-api/api"
	"github.com/linesmerrill/fir-api/config"
	"github.com/linesmerrill/fir-api/lifecycle"
	"github.com/linesmerrill/fir-api/models"
)

// FIRService is the lifecycle surface the FIR routes need
type FIRService interface {
	Submit(ctx context.Context, id models.Identity, req models.FIRRequest) (lifecycle.Receipt, error)
	ListOwn(ctx context.Context, id models.Identity) ([]models.FIR, error)
	ListPending(ctx context.Context, id models.Identity) ([]models.FIR, error)
	ListArchived(ctx context.Context, id models.Identity) ([]models.FIR, error)
	Get(ctx context.Context, id models.Identity, firID string) (*models.FIR, error)
	Transition(ctx context.Context, id models.Identity, firID string, req models.FIRUpdateRequest) error
}

// FIR exported for testing purposes
type FIR struct {
	Service FIRService
}

// CreateFIRHandler submits a new FIR for the caller
func (f FIR) CreateFIRHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	var req models.FIRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	receipt, err := f.Service.Submit(ctx, identity, req)
	if err != nil {
		lifecycleError("failed to submit FIR", w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.FIRSubmitResponse{
		Message:  "FIR submitted successfully",
		FIRID:    receipt.ID,
		Degraded: receipt.Reasons(),
	})
}

// FIRsHandler returns the caller's own FIRs, active and archived
func (f FIR) FIRsHandler(w http.ResponseWriter, r *http.Request) {
	f.list(w, r, f.Service.ListOwn, "failed to get FIRs")
}

// PendingFIRsHandler returns the pending queue of the officer's station
func (f FIR) PendingFIRsHandler(w http.ResponseWriter, r *http.Request) {
	f.list(w, r, f.Service.ListPending, "failed to get pending FIRs")
}

// ArchivedFIRsHandler returns archived FIRs visible to the caller
func (f FIR) ArchivedFIRsHandler(w http.ResponseWriter, r *http.Request) {
	f.list(w, r, f.Service.ListArchived, "failed to get archived FIRs")
}

func (f FIR) list(w http.ResponseWriter, r *http.Request, fn func(context.Context, models.Identity) ([]models.FIR, error), message string) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	firs, err := fn(ctx, identity)
	if err != nil {
		lifecycleError(message, w, err)
		return
	}
	writeJSON(w, http.StatusOK, firs)
}

// FIRByIDHandler returns a single FIR
func (f FIR) FIRByIDHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}
	firID := mux.Vars(r)["fir_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	fir, err := f.Service.Get(ctx, identity, firID)
	if err != nil {
		lifecycleError("failed to get FIR by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, fir)
}

// UpdateFIRHandler applies a police status update
func (f FIR) UpdateFIRHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := api.IdentityFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}
	firID := mux.Vars(r)["fir_id"]

	var req models.FIRUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := f.Service.Transition(ctx, identity, firID, req); err != nil {
		lifecycleError("failed to update FIR", w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "FIR updated successfully"})
}

// lifecycleError maps lifecycle failures onto status codes
func lifecycleError(message string, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, lifecycle.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	config.ErrorStatus(message, status, w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
