package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case GuestResult:
		o.printGuestResult(v)
	case RunResult:
		o.printRun(v.Run)
	case FlagResult:
		fmt.Println(v.Message)
		o.printFlag(v.Flag)
	case FlagsResult:
		fmt.Printf("%s (%d)\n", v.Message, len(v.Flags))
		for _, f := range v.Flags {
			o.printFlag(f)
		}
	case HistoryResult:
		fmt.Println(v.Message)
		o.printHistory(v.History)
	case HistoriesResult:
		fmt.Printf("%s (%d)\n", v.Message, len(v.Histories))
		for _, h := range v.Histories {
			o.printHistory(h)
		}
	case DeletedResult:
		fmt.Printf("%s: %d removed\n", v.Message, v.Deleted)
	case MessageResult:
		fmt.Println(v.Message)
	case HealthResult:
		fmt.Printf("Server status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printAuthResult(v AuthResult) {
	fmt.Println(v.Message)
	if v.User != nil {
		fmt.Printf("  User: %s <%s> (%s)\n", v.User.DisplayName, v.User.Email, v.User.ID)
	}
	fmt.Println("  Token saved")
}

func (o *Output) printGuestResult(v GuestResult) {
	fmt.Println(v.Message)
	if v.Guest != nil {
		fmt.Printf("  Guest: %s (token %s)\n", v.Guest.DisplayName, v.Guest.Token)
	}
}

func (o *Output) printRun(r *Run) {
	if r == nil {
		return
	}
	pin := "-"
	if r.Pin != nil {
		pin = *r.Pin
	}
	fmt.Printf("Run %s  %q  type=%s  pin=%s\n", r.ID, r.Title, r.Type, pin)
	for _, f := range r.Flags {
		o.printFlag(f)
	}
}

func (o *Output) printFlag(f *Flag) {
	if f == nil {
		return
	}
	fmt.Printf("  #%d  (%.6f, %.6f)  %s\n", f.FlagNumber, f.Latitude, f.Longitude, f.ID)
}

func (o *Output) printHistory(h *History) {
	if h == nil {
		return
	}
	state := "active"
	if h.EndedAt != nil {
		state = "ended " + h.EndedAt.Format(time.RFC3339)
	}
	fmt.Printf("History %s  run=%s  started=%s  %s\n",
		h.ID, h.RunID, h.StartedAt.Format(time.RFC3339), state)
	for _, hf := range h.Flags {
		reached := "-"
		if hf.ReachedAt != nil {
			reached = hf.ReachedAt.Format(time.RFC3339)
		}
		points := 0
		if hf.Points != nil {
			points = *hf.Points
		}
		fmt.Printf("  flag %s  reached=%s  points=%d\n", hf.FlagID, reached, points)
	}
}

// User response type (matches API)
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Guest response type
type Guest struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name"`
}

// Flag response type
type Flag struct {
	ID         string  `json:"id"`
	RunID      string  `json:"run_id"`
	FlagNumber int     `json:"flag_number"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Run response type
type Run struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Title string  `json:"title"`
	Pin   *string `json:"pin"`
	Flags []*Flag `json:"flags"`
}

// HistoryFlag response type
type HistoryFlag struct {
	FlagID    string     `json:"flag_id"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	ReachedAt *time.Time `json:"reached_at"`
	Points    *int       `json:"points"`
	Distance  *float64   `json:"distance"`
}

// History response type
type History struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at"`
	Flags     []*HistoryFlag `json:"flags"`
}

// AuthResult is the response for auth endpoints
type AuthResult struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// GuestResult is the response for guest endpoints
type GuestResult struct {
	Message string `json:"message"`
	Guest   *Guest `json:"guest"`
}

// RunResult wraps a run
type RunResult struct {
	Message string `json:"message"`
	Run     *Run   `json:"run"`
}

// FlagResult wraps a flag
type FlagResult struct {
	Message string `json:"message"`
	Flag    *Flag  `json:"flag"`
}

// FlagsResult wraps a flag batch
type FlagsResult struct {
	Message string  `json:"message"`
	Flags   []*Flag `json:"flags"`
}

// HistoryResult wraps a history
type HistoryResult struct {
	Message string   `json:"message"`
	History *History `json:"history"`
}

// HistoriesResult wraps a history list
type HistoriesResult struct {
	Message   string     `json:"message"`
	Histories []*History `json:"histories"`
}

// DeletedResult reports a delete count
type DeletedResult struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// MessageResult carries only a message
type MessageResult struct {
	Message string `json:"message"`
}

// HealthResult is the health endpoint response
type HealthResult struct {
	Status string `json:"status"`
}
