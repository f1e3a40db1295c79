package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/services/history"
)

// HistoryHandler handles attempt endpoints. Play routes accept a
// guest token in the request body as well as the usual header and
// query forms, so resolution may finish here rather than in the auth
// middleware.
type HistoryHandler struct {
	historyController *history.Controller
	resolver          *actor.Resolver
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyController *history.Controller, resolver *actor.Resolver) *HistoryHandler {
	return &HistoryHandler{
		historyController: historyController,
		resolver:          resolver,
	}
}

// resolveActor returns the actor from the context, falling back to a
// guest token carried in the request body
func (h *HistoryHandler) resolveActor(r *http.Request, bodyGuestToken string) (model.Actor, error) {
	if act, ok := middleware.GetActor(r.Context()); ok {
		return act, nil
	}
	return h.resolver.Resolve(r.Context(), actor.Credential{GuestToken: bodyGuestToken})
}

// Start handles POST /api/v1/history/run/{runId}/start
func (h *HistoryHandler) Start(w http.ResponseWriter, r *http.Request) {
	runID := model.RunID(mux.Vars(r)["runId"])

	var req request.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body; credentials may come from the header
		req = request.StartRunRequest{}
	}

	act, err := h.resolveActor(r, req.GuestToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	started, err := h.historyController.StartRun(r.Context(), act, runID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.HistoryResponse{
		Message: "Attempt started",
		History: started,
	})
}

// End handles POST /api/v1/history/run/{historyId}/end
func (h *HistoryHandler) End(w http.ResponseWriter, r *http.Request) {
	historyID := model.HistoryID(mux.Vars(r)["historyId"])

	var req request.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.StartRunRequest{}
	}

	act, err := h.resolveActor(r, req.GuestToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	ended, err := h.historyController.EndRun(r.Context(), act, historyID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryResponse{
		Message: "Attempt ended",
		History: ended,
	})
}

// Reach handles POST /api/v1/history/run/{historyId}/flag/{flagId}/reach
func (h *HistoryHandler) Reach(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	historyID := model.HistoryID(vars["historyId"])
	flagID := model.FlagID(vars["flagId"])

	var req request.MarkFlagReachedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.MarkFlagReachedRequest{}
	}

	act, err := h.resolveActor(r, req.GuestToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	reached, err := h.historyController.MarkFlagReached(r.Context(), act, historyID, flagID, req.Point, req.Distance)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFlagResponse{
		Message: "Flag reached",
		Flag:    reached,
	})
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	histories, err := h.historyController.ListHistories(r.Context(), act)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoriesResponse{
		Message:   "Histories",
		Histories: histories,
	})
}

// Get handles GET /api/v1/history/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.HistoryID(mux.Vars(r)["id"])

	found, err := h.historyController.GetHistory(r.Context(), act, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryResponse{
		Message: "History",
		History: found,
	})
}

// Delete handles DELETE /api/v1/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.HistoryID(mux.Vars(r)["id"])

	if err := h.historyController.DeleteHistory(r.Context(), act, id); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Message: "History deleted",
	})
}
