package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/question"
)

// QuestionHandler handles question and option endpoints
type QuestionHandler struct {
	questionController *question.Controller
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionController *question.Controller) *QuestionHandler {
	return &QuestionHandler{
		questionController: questionController,
	}
}

func questionInput(item request.QuestionItem) question.Input {
	in := question.Input{
		ID:   model.QuestionID(item.ID),
		Text: item.Text,
		Type: item.Type,
	}
	if item.FlagID != nil {
		flagID := model.FlagID(*item.FlagID)
		in.FlagID = &flagID
	}
	return in
}

func optionInput(item request.OptionItem) question.OptionInput {
	return question.OptionInput{
		ID:      model.OptionID(item.ID),
		Text:    item.Text,
		Correct: item.Correct,
	}
}

// Create handles POST /api/v1/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	var req request.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.RunID == "" {
		WriteError(w, NewInvalidRequestError("run_id is required"))
		return
	}

	created, err := h.questionController.CreateQuestion(r.Context(), act, model.RunID(req.RunID), questionInput(request.QuestionItem{
		FlagID: req.FlagID,
		Text:   req.Text,
		Type:   req.Type,
	}))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.QuestionResponse{
		Message:  "Question created",
		Question: created,
	})
}

// Get handles GET /api/v1/questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.QuestionID(mux.Vars(r)["id"])

	found, err := h.questionController.GetQuestion(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuestionResponse{
		Message:  "Question",
		Question: found,
	})
}

// Update handles PUT /api/v1/questions/{id}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.QuestionID(mux.Vars(r)["id"])

	var req request.QuestionItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.questionController.UpdateQuestion(r.Context(), act, id, questionInput(req))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuestionResponse{
		Message:  "Question updated",
		Question: updated,
	})
}

// BulkCreate handles POST /api/v1/runs/{id}/questions/bulk
func (h *QuestionHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]question.Input, len(req.Questions))
	for i, item := range req.Questions {
		items[i] = questionInput(item)
	}

	created, err := h.questionController.CreateQuestionsBulk(r.Context(), act, runID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.QuestionsResponse{
		Message:   "Questions created",
		Questions: created,
	})
}

// BulkUpdate handles PUT /api/v1/runs/{id}/questions/bulk
func (h *QuestionHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]question.Input, len(req.Questions))
	for i, item := range req.Questions {
		items[i] = questionInput(item)
	}

	updated, err := h.questionController.UpdateQuestionsBulk(r.Context(), act, runID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuestionsResponse{
		Message:   "Questions updated",
		Questions: updated,
	})
}

// BulkDelete handles DELETE /api/v1/runs/{id}/questions/bulk
func (h *QuestionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	runID := model.RunID(mux.Vars(r)["id"])

	var req request.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rawIDs := req.ResolveQuestionIDs()
	ids := make([]model.QuestionID, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = model.QuestionID(id)
	}

	deleted, err := h.questionController.DeleteQuestionsBulk(r.Context(), act, runID, ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeletedResponse{
		Message: "Questions deleted",
		Deleted: deleted,
	})
}

// CreateOption handles POST /api/v1/options
func (h *QuestionHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	var req request.CreateOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.QuestionID == "" {
		WriteError(w, NewInvalidRequestError("question_id is required"))
		return
	}

	created, err := h.questionController.CreateOption(r.Context(), act, model.QuestionID(req.QuestionID), question.OptionInput{
		Text:    req.Text,
		Correct: req.Correct,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.OptionResponse{
		Message: "Option created",
		Option:  created,
	})
}

// UpdateOption handles PUT /api/v1/options/{id}
func (h *QuestionHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	id := model.OptionID(mux.Vars(r)["id"])

	var req request.OptionItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.questionController.UpdateOption(r.Context(), act, id, optionInput(req))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OptionResponse{
		Message: "Option updated",
		Option:  updated,
	})
}

// BulkCreateOptions handles POST /api/v1/questions/{id}/options/bulk
func (h *QuestionHandler) BulkCreateOptions(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	questionID := model.QuestionID(mux.Vars(r)["id"])

	var req request.BulkOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]question.OptionInput, len(req.Options))
	for i, item := range req.Options {
		items[i] = optionInput(item)
	}

	created, err := h.questionController.CreateOptionsBulk(r.Context(), act, questionID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.OptionsResponse{
		Message: "Options created",
		Options: created,
	})
}

// BulkUpdateOptions handles PUT /api/v1/questions/{id}/options/bulk
func (h *QuestionHandler) BulkUpdateOptions(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	questionID := model.QuestionID(mux.Vars(r)["id"])

	var req request.BulkOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	items := make([]question.OptionInput, len(req.Options))
	for i, item := range req.Options {
		items[i] = optionInput(item)
	}

	updated, err := h.questionController.UpdateOptionsBulk(r.Context(), act, questionID, items)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OptionsResponse{
		Message: "Options updated",
		Options: updated,
	})
}

// BulkDeleteOptions handles DELETE /api/v1/questions/{id}/options/bulk
func (h *QuestionHandler) BulkDeleteOptions(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())
	questionID := model.QuestionID(mux.Vars(r)["id"])

	var req request.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rawIDs := req.ResolveOptionIDs()
	ids := make([]model.OptionID, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = model.OptionID(id)
	}

	deleted, err := h.questionController.DeleteOptionsBulk(r.Context(), act, questionID, ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeletedResponse{
		Message: "Options deleted",
		Deleted: deleted,
	})
}
