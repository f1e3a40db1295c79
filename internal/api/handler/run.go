package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/run"
)

// RunHandler handles run endpoints
type RunHandler struct {
	runController *run.Controller
}

// NewRunHandler creates a new run handler
func NewRunHandler(runController *run.Controller) *RunHandler {
	return &RunHandler{
		runController: runController,
	}
}

// Create handles POST /api/v1/runs
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	var req request.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Title == "" {
		WriteError(w, NewInvalidRequestError("title is required"))
		return
	}

	created, err := h.runController.CreateRun(r.Context(), act, req.Type, req.Title, req.Pin)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RunResponse{
		Message: "Run created",
		Run:     created,
	})
}

// Get handles GET /api/v1/runs/{id}
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RunID(mux.Vars(r)["id"])

	found, err := h.runController.GetRun(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RunResponse{
		Message: "Run",
		Run:     found,
	})
}

// GetByPin handles GET /api/v1/runs/pin/{pin}
func (h *RunHandler) GetByPin(w http.ResponseWriter, r *http.Request) {
	pin := mux.Vars(r)["pin"]

	found, err := h.runController.GetRunByPin(r.Context(), pin)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RunResponse{
		Message: "Run",
		Run:     found,
	})
}

// Update handles PUT /api/v1/runs/{id}
func (h *RunHandler) Update(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.RunID(mux.Vars(r)["id"])

	var req request.UpdateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var runType, title string
	if req.Type != nil {
		runType = *req.Type
	}
	if req.Title != nil {
		title = *req.Title
	}

	updated, err := h.runController.UpdateRun(r.Context(), act, id, runType, title)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RunResponse{
		Message: "Run updated",
		Run:     updated,
	})
}

// Delete handles DELETE /api/v1/runs/{id}
func (h *RunHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.RunID(mux.Vars(r)["id"])

	if err := h.runController.DeleteRun(r.Context(), act, id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Message: "Run deleted",
	})
}
