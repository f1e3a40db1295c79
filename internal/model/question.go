package model

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Typed identifiers for questions and options
type (
	QuestionID string
	OptionID   string
)

// Question belongs to a run and optionally to one of its flags.
// Ownership is transitively the run owner's.
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:q" json:"-"`

	ID     QuestionID `bun:"id,pk" json:"id"`
	RunID  RunID      `bun:"run_id,notnull" json:"run_id"`
	FlagID *FlagID    `bun:"flag_id,nullzero" json:"flag_id"`
	Text   string     `bun:"text,notnull" json:"text"`
	Type   string     `bun:"question_type,notnull" json:"question_type"`

	Options []*QuestionOption `bun:"rel:has-many,join:id=question_id" json:"options,omitempty"`
}

// NewQuestion creates a Question with a fresh id
func NewQuestion(runID RunID, flagID *FlagID, text, questionType string) *Question {
	return &Question{
		ID:     QuestionID(uuid.NewString()),
		RunID:  runID,
		FlagID: flagID,
		Text:   text,
		Type:   questionType,
	}
}

// QuestionOption is one answer option for a question
type QuestionOption struct {
	bun.BaseModel `bun:"table:question_options,alias:qo" json:"-"`

	ID         OptionID   `bun:"id,pk" json:"id"`
	QuestionID QuestionID `bun:"question_id,notnull" json:"question_id"`
	Text       string     `bun:"text,notnull" json:"text"`
	Correct    bool       `bun:"correct,notnull" json:"correct"`
}

// NewQuestionOption creates a QuestionOption with a fresh id
func NewQuestionOption(questionID QuestionID, text string, correct bool) *QuestionOption {
	return &QuestionOption{
		ID:         OptionID(uuid.NewString()),
		QuestionID: questionID,
		Text:       text,
		Correct:    correct,
	}
}
