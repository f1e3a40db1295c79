package request

import (
	"bytes"
	"encoding/json"
)

// OneOrMany accepts either a single JSON object or an array of objects,
// normalizing both into a slice. A bare object decodes to a singleton.
type OneOrMany[T any] []T

// UnmarshalJSON implements json.Unmarshaler
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

// InitGuestRequest is the request body for starting a guest session
type InitGuestRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

// GuestTokenRequest carries an explicit guest token in the body
type GuestTokenRequest struct {
	GuestToken string `json:"guest_token"`
}

// UpgradeGuestRequest is the request body for converting a guest into an account
type UpgradeGuestRequest struct {
	GuestToken  string `json:"guest_token"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// VerifyEmailRequest is the request body for confirming a pending registration
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the request body for starting a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the request body for completing a password reset
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CreateRunRequest is the request body for creating a run
type CreateRunRequest struct {
	Type  string  `json:"type"`
	Title string  `json:"title"`
	Pin   *string `json:"pin,omitempty"`
}

// UpdateRunRequest is the request body for updating a run
type UpdateRunRequest struct {
	Type  *string `json:"type,omitempty"`
	Title *string `json:"title,omitempty"`
}

// FlagItem is one flag in a single or bulk flag mutation
type FlagItem struct {
	ID        string   `json:"id,omitempty"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

// CreateFlagRequest is the request body for creating a single flag
type CreateFlagRequest struct {
	RunID     string   `json:"run_id"`
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

// BulkFlagsRequest is the request body for bulk flag create/update
type BulkFlagsRequest struct {
	Flags OneOrMany[FlagItem] `json:"flags"`
}

// QuestionItem is one question in a single or bulk question mutation
type QuestionItem struct {
	ID     string  `json:"id,omitempty"`
	FlagID *string `json:"flag_id,omitempty"`
	Text   string  `json:"text"`
	Type   string  `json:"type"`
}

// CreateQuestionRequest is the request body for creating a single question
type CreateQuestionRequest struct {
	RunID  string  `json:"run_id"`
	FlagID *string `json:"flag_id,omitempty"`
	Text   string  `json:"text"`
	Type   string  `json:"type"`
}

// BulkQuestionsRequest is the request body for bulk question create/update
type BulkQuestionsRequest struct {
	Questions OneOrMany[QuestionItem] `json:"questions"`
}

// OptionItem is one option in a single or bulk option mutation
type OptionItem struct {
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// CreateOptionRequest is the request body for creating a single option
type CreateOptionRequest struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
}

// BulkOptionsRequest is the request body for bulk option create/update
type BulkOptionsRequest struct {
	Options OneOrMany[OptionItem] `json:"options"`
}

// BulkDeleteRequest is the request body for bulk deletes. Ids may arrive
// under a generic or a type-specific key.
type BulkDeleteRequest struct {
	IDs         []string `json:"ids,omitempty"`
	FlagIDs     []string `json:"flag_ids,omitempty"`
	QuestionIDs []string `json:"question_ids,omitempty"`
	OptionIDs   []string `json:"option_ids,omitempty"`
}

// Each endpoint accepts the generic key plus its own type-specific
// alias only; an alias for a different entity type is ignored.

// ResolveFlagIDs returns ids for a flag bulk delete
func (r *BulkDeleteRequest) ResolveFlagIDs() []string {
	return firstNonEmpty(r.IDs, r.FlagIDs)
}

// ResolveQuestionIDs returns ids for a question bulk delete
func (r *BulkDeleteRequest) ResolveQuestionIDs() []string {
	return firstNonEmpty(r.IDs, r.QuestionIDs)
}

// ResolveOptionIDs returns ids for an option bulk delete
func (r *BulkDeleteRequest) ResolveOptionIDs() []string {
	return firstNonEmpty(r.IDs, r.OptionIDs)
}

func firstNonEmpty(lists ...[]string) []string {
	for _, ids := range lists {
		if len(ids) > 0 {
			return ids
		}
	}
	return nil
}

// MarkFlagReachedRequest is the request body for marking a flag reached
type MarkFlagReachedRequest struct {
	Point      *int     `json:"point,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
	GuestToken string   `json:"guest_token,omitempty"`
}

// StartRunRequest is the request body for starting an attempt
type StartRunRequest struct {
	GuestToken string `json:"guest_token,omitempty"`
}
