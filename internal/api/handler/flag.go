package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/flag"
)

// FlagHandler handles single and bulk flag endpoints
type FlagHandler struct {
	flagController *flag.Controller
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(flagController *flag.Controller) *FlagHandler {
	return &FlagHandler{
		flagController: flagController,
	}
}

func flagInput(item request.FlagItem) flag.Input {
	return flag.Input{
		ID:        model.FlagID(item.ID),
		Latitude:  item.Latitude,
		Longitude: item.Longitude,
	}
}

// Create handles POST /api/v1/flags
func (h *FlagHandler) Create(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	var req request.CreateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.RunID == "" {
		WriteError(w, NewInvalidRequestError("run_id is required"))
		return
	}

	created, err := h.flagController.CreateFlag(r.Context(), act, model.RunID(req.RunID), flag.Input{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FlagResponse{
		Message: "Flag created",
		Flag:    created,
	})
}

// Get handles GET /api/v1/flags/{id}
func (h *FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.FlagID(mux.Vars(r)["id"])

	found, err := h.flagController.GetFlag(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlagResponse{
		Message: "Flag",
		Flag:    found,
	})
}

// Update handles PUT /api/v1/flags/{id}
func (h *FlagHandler) Update(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.FlagID(mux.Vars(r)["id"])

	var req request.FlagItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.flagController.UpdateFlag(r.Context(), act, id, flagInput(req))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlagResponse{
		Message: "Flag updated",
		Flag:    updated,
	})
}

// Delete handles DELETE /api/v1/flags/{id}
func (h *FlagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.FlagID(mux.Vars(r)["id"])

	if err := h.flagController.DeleteFlag(r.Context(), act, id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Message: "Flag deleted",
	})
}

// BulkCreate handles POST /api/v1/runs/{id}/flags/bulk
func (h *FlagHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]flag.Input, len(req.Flags))
	for i, item := range req.Flags {
		items[i] = flagInput(item)
	}

	created, err := h.flagController.CreateFlagsBulk(r.Context(), act, runID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FlagsResponse{
		Message: "Flags created",
		Flags:   created,
	})
}

// BulkUpdate handles PUT /api/v1/runs/{id}/flags/bulk
func (h *FlagHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]flag.Input, len(req.Flags))
	for i, item := range req.Flags {
		items[i] = flagInput(item)
	}

	updated, err := h.flagController.UpdateFlagsBulk(r.Context(), act, runID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlagsResponse{
		Message: "Flags updated",
		Flags:   updated,
	})
}

// BulkDelete handles DELETE /api/v1/runs/{id}/flags/bulk
func (h *FlagHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rawIDs := req.ResolveFlagIDs()
	ids := make([]model.FlagID, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = model.FlagID(id)
	}

	deleted, err := h.flagController.DeleteFlagsBulk(r.Context(), act, runID, ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeletedResponse{
		Message: "Flags deleted",
		Deleted: deleted,
	})
}
