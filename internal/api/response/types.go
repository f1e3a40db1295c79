package response

import (
	"github.com/aweston/flagchase/internal/model"
)

// Success responses wrap the entity under a named key alongside a
// human-readable message.

// Actor represents the resolved caller in API responses
type Actor struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ActorFromModel converts a model.Actor
func ActorFromModel(a model.Actor) Actor {
	return Actor{
		Kind: string(a.Kind),
		ID:   a.ID,
	}
}

// GuestResponse is the response for guest session endpoints
type GuestResponse struct {
	Message string              `json:"message"`
	Guest   *model.GuestProfile `json:"guest"`
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

// UserResponse is the response for account reads
type UserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// MessageResponse carries only a human-readable message
type MessageResponse struct {
	Message string `json:"message"`
}

// RunResponse wraps a single run
type RunResponse struct {
	Message string     `json:"message"`
	Run     *model.Run `json:"run"`
}

// FlagResponse wraps a single flag
type FlagResponse struct {
	Message string      `json:"message"`
	Flag    *model.Flag `json:"flag"`
}

// FlagsResponse wraps a batch of flags; only successfully written
// items appear, in input order
type FlagsResponse struct {
	Message string        `json:"message"`
	Flags   []*model.Flag `json:"flags"`
}

// DeletedResponse reports how many rows a delete removed
type DeletedResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// QuestionResponse wraps a single question
type QuestionResponse struct {
	Message  string          `json:"message"`
	Question *model.Question `json:"question"`
}

// QuestionsResponse wraps a batch of questions
type QuestionsResponse struct {
	Message   string            `json:"message"`
	Questions []*model.Question `json:"questions"`
}

// OptionResponse wraps a single question option
type OptionResponse struct {
	Message string                `json:"message"`
	Option  *model.QuestionOption `json:"option"`
}

// OptionsResponse wraps a batch of question options
type OptionsResponse struct {
	Message string                  `json:"message"`
	Options []*model.QuestionOption `json:"options"`
}

// HistoryResponse wraps a single history with its run and flags
type HistoryResponse struct {
	Message string         `json:"message"`
	History *model.History `json:"history"`
}

// HistoryFlagResponse wraps one flag snapshot after a reach call
type HistoryFlagResponse struct {
	Message string             `json:"message"`
	Flag    *model.HistoryFlag `json:"flag"`
}

// HistoriesResponse wraps an actor's histories
type HistoriesResponse struct {
	Message   string           `json:"message"`
	Histories []*model.History `json:"histories"`
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
