package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/api/apierr"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/factory"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app    *factory.TestApp
	router http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.router = NewRouter(RouterConfig{
		Logger:             testutil.NopLogger(),
		AccountService:     s.app.AccountService,
		ActorResolver:      s.app.ActorResolver,
		RunController:      s.app.RunController,
		FlagController:     s.app.FlagController,
		QuestionController: s.app.QuestionController,
		HistoryController:  s.app.HistoryController,
	})
}

// do performs a request against the router and decodes the response
// body into out when it is non-nil
func (s *APISuite) do(method, path, bearer string, body, out any) int {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if out != nil {
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(out), "body: %s", rec.Body.String())
	}
	return rec.Code
}

// registerUser walks an email through registration and verification,
// returning a bearer token
func (s *APISuite) registerUser(email, name string) string {
	s.app.MockRandom.QueueString("verify-" + email)
	code := s.do(http.MethodPost, "/api/v1/accounts/register", "", map[string]string{
		"email":        email,
		"password":     "hunter42",
		"display_name": name,
	}, nil)
	s.Require().Equal(http.StatusAccepted, code)

	var auth response.AuthResponse
	code = s.do(http.MethodPost, "/api/v1/accounts/verify", "", map[string]string{
		"email": email,
		"token": s.app.Mailer.LastToken(),
	}, &auth)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NotEmpty(auth.Token)
	return auth.Token
}

// initGuest creates a guest session and returns its token
func (s *APISuite) initGuest(token, name string) string {
	s.app.MockRandom.QueueString(token)
	var resp response.GuestResponse
	code := s.do(http.MethodPost, "/api/v1/guests/init", "", map[string]string{"display_name": name}, &resp)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NotNil(resp.Guest)
	return resp.Guest.Token
}

// createRun creates a run for the given bearer, queuing a pin
func (s *APISuite) createRun(bearer, title, pin string) *model.Run {
	s.app.MockRandom.QueueString(pin)
	var resp response.RunResponse
	code := s.do(http.MethodPost, "/api/v1/runs", bearer, map[string]string{
		"type":  "scavenger",
		"title": title,
	}, &resp)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NotNil(resp.Run)
	return resp.Run
}

func (s *APISuite) TestHealth() {
	var resp response.HealthResponse
	code := s.do(http.MethodGet, "/api/v1/health", "", nil, &resp)
	s.Equal(http.StatusOK, code)
	s.Equal("ok", resp.Status)
}

func (s *APISuite) TestAuthorBuildsAndPlayerRuns() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")
	s.Require().NotNil(run.Pin)
	s.Equal("ABC123", *run.Pin)

	// Bulk create two flags, numbers 1 and 2
	var flags response.FlagsResponse
	code := s.do(http.MethodPost, "/api/v1/runs/"+string(run.ID)+"/flags/bulk", author, map[string]any{
		"flags": []map[string]float64{
			{"lat": 51.50, "lng": -0.12},
			{"lat": 51.51, "lng": -0.10},
		},
	}, &flags)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().Len(flags.Flags, 2)
	s.Equal(1, flags.Flags[0].FlagNumber)
	s.Equal(2, flags.Flags[1].FlagNumber)

	// A single create continues the sequence at 3
	var single response.FlagResponse
	code = s.do(http.MethodPost, "/api/v1/flags", author, map[string]any{
		"run_id": string(run.ID),
		"lat":    51.52,
		"lng":    -0.08,
	}, &single)
	s.Require().Equal(http.StatusCreated, code)
	s.Equal(3, single.Flag.FlagNumber)

	// A player finds the run by pin and starts an attempt
	player := s.registerUser("player@example.com", "Player")
	var byPin response.RunResponse
	code = s.do(http.MethodGet, "/api/v1/runs/pin/ABC123", player, nil, &byPin)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(run.ID, byPin.Run.ID)

	var started response.HistoryResponse
	code = s.do(http.MethodPost, "/api/v1/history/run/"+string(run.ID)+"/start", player, nil, &started)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().Len(started.History.Flags, 3)
	for _, hf := range started.History.Flags {
		s.Nil(hf.ReachedAt)
	}

	// Reach the first flag twice: the timestamp sticks, the points
	// take the latest value
	flagID := string(flags.Flags[0].ID)
	historyID := string(started.History.ID)

	var reached response.HistoryFlagResponse
	code = s.do(http.MethodPost, "/api/v1/history/run/"+historyID+"/flag/"+flagID+"/reach", player,
		map[string]any{"point": 10}, &reached)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NotNil(reached.Flag.ReachedAt)
	firstReach := *reached.Flag.ReachedAt
	s.Equal(10, *reached.Flag.Points)

	s.app.MockClock.Advance(5 * time.Minute)
	code = s.do(http.MethodPost, "/api/v1/history/run/"+historyID+"/flag/"+flagID+"/reach", player,
		map[string]any{"point": 20}, &reached)
	s.Require().Equal(http.StatusOK, code)
	s.True(reached.Flag.ReachedAt.Equal(firstReach))
	s.Equal(20, *reached.Flag.Points)

	// End the attempt; ending again conflicts
	var ended response.HistoryResponse
	code = s.do(http.MethodPost, "/api/v1/history/run/"+historyID+"/end", player, nil, &ended)
	s.Require().Equal(http.StatusOK, code)
	s.NotNil(ended.History.EndedAt)

	var conflict apierr.ErrorResponse
	code = s.do(http.MethodPost, "/api/v1/history/run/"+historyID+"/end", player, nil, &conflict)
	s.Equal(http.StatusConflict, code)
	s.Equal(apierr.CodeHistoryEnded, conflict.Error.Code)
}

func (s *APISuite) TestBulkAcceptsSingleObject() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")

	var flags response.FlagsResponse
	code := s.do(http.MethodPost, "/api/v1/runs/"+string(run.ID)+"/flags/bulk", author, map[string]any{
		"flags": map[string]float64{"lat": 1, "lng": 2},
	}, &flags)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().Len(flags.Flags, 1)
	s.Equal(1, flags.Flags[0].FlagNumber)
}

func (s *APISuite) TestBulkDeleteAliases() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")

	var flags response.FlagsResponse
	code := s.do(http.MethodPost, "/api/v1/runs/"+string(run.ID)+"/flags/bulk", author, map[string]any{
		"flags": []map[string]float64{{"lat": 1, "lng": 2}, {"lat": 3, "lng": 4}},
	}, &flags)
	s.Require().Equal(http.StatusCreated, code)

	// An alias for a different entity type is ignored here
	var deleted response.DeletedResponse
	code = s.do(http.MethodDelete, "/api/v1/runs/"+string(run.ID)+"/flags/bulk", author, map[string]any{
		"question_ids": []string{string(flags.Flags[0].ID)},
	}, &deleted)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(0, deleted.Deleted)

	code = s.do(http.MethodDelete, "/api/v1/runs/"+string(run.ID)+"/flags/bulk", author, map[string]any{
		"flag_ids": []string{string(flags.Flags[0].ID)},
	}, &deleted)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(1, deleted.Deleted)
}

func (s *APISuite) TestUnauthenticated() {
	var resp apierr.ErrorResponse
	code := s.do(http.MethodGet, "/api/v1/history", "", nil, &resp)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal(apierr.CodeUnauthorized, resp.Error.Code)

	code = s.do(http.MethodGet, "/api/v1/history", "garbage-token", nil, &resp)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestGuestCannotAuthor() {
	guest := s.initGuest("guest-token-1", "Wanderer")

	var resp apierr.ErrorResponse
	code := s.do(http.MethodPost, "/api/v1/runs", guest, map[string]string{
		"type":  "scavenger",
		"title": "Nope",
	}, &resp)
	s.Equal(http.StatusForbidden, code)
	s.Equal(apierr.CodeGuestNotAllowed, resp.Error.Code)
}

func (s *APISuite) TestGuestPlaysWithBodyToken() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")
	guest := s.initGuest("guest-token-1", "Wanderer")

	// No Authorization header; the guest token rides in the body
	var started response.HistoryResponse
	code := s.do(http.MethodPost, "/api/v1/history/run/"+string(run.ID)+"/start", "",
		map[string]string{"guest_token": guest}, &started)
	s.Require().Equal(http.StatusCreated, code)
	s.Equal(guest, started.History.ActorID)

	// Starting again while active conflicts
	var conflict apierr.ErrorResponse
	code = s.do(http.MethodPost, "/api/v1/history/run/"+string(run.ID)+"/start", "",
		map[string]string{"guest_token": guest}, &conflict)
	s.Equal(http.StatusConflict, code)
	s.Equal(apierr.CodeHistoryActive, conflict.Error.Code)
}

func (s *APISuite) TestNotOwner() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")
	other := s.registerUser("other@example.com", "Other")

	var resp apierr.ErrorResponse
	code := s.do(http.MethodPut, "/api/v1/runs/"+string(run.ID), other, map[string]string{
		"title": "Hijacked",
	}, &resp)
	s.Equal(http.StatusForbidden, code)
	s.Equal(apierr.CodeNotOwner, resp.Error.Code)
}

func (s *APISuite) TestRunNotFound() {
	author := s.registerUser("author@example.com", "Author")

	var resp apierr.ErrorResponse
	code := s.do(http.MethodGet, "/api/v1/runs/missing", author, nil, &resp)
	s.Equal(http.StatusNotFound, code)
	s.Equal(apierr.CodeRunNotFound, resp.Error.Code)
}

func (s *APISuite) TestInvalidCoordinatesRejected() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "City Hunt", "ABC123")

	var resp apierr.ErrorResponse
	code := s.do(http.MethodPost, "/api/v1/flags", author, map[string]any{
		"run_id": string(run.ID),
		"lat":    95.0,
		"lng":    0.0,
	}, &resp)
	s.Equal(http.StatusUnprocessableEntity, code)
	s.Equal(apierr.CodeValidationFailed, resp.Error.Code)
}

func (s *APISuite) TestGuestLifecycleOverHTTP() {
	guest := s.initGuest("guest-token-1", "Wanderer")

	var me response.GuestResponse
	code := s.do(http.MethodGet, "/api/v1/accounts/me", guest, nil, &me)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("Wanderer", me.Guest.DisplayName)

	code = s.do(http.MethodPost, "/api/v1/guests/end", "", map[string]string{"guest_token": guest}, nil)
	s.Require().Equal(http.StatusOK, code)

	var resp apierr.ErrorResponse
	code = s.do(http.MethodGet, "/api/v1/accounts/me", guest, nil, &resp)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestUpgradeGuestOverHTTP() {
	guest := s.initGuest("guest-token-1", "Wanderer")

	var auth response.AuthResponse
	code := s.do(http.MethodPost, "/api/v1/guests/upgrade", "", map[string]string{
		"guest_token": guest,
		"email":       "w@example.com",
		"password":    "hunter42",
	}, &auth)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NotNil(auth.User)
	s.Equal("Wanderer", auth.User.DisplayName)

	var me response.UserResponse
	code = s.do(http.MethodGet, "/api/v1/accounts/me", auth.Token, nil, &me)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("w@example.com", me.User.Email)
}

func (s *APISuite) TestQuestionFlow() {
	author := s.registerUser("author@example.com", "Author")
	run := s.createRun(author, "Quiz Hunt", "ABC123")

	var flag response.FlagResponse
	code := s.do(http.MethodPost, "/api/v1/flags", author, map[string]any{
		"run_id": string(run.ID), "lat": 1.0, "lng": 2.0,
	}, &flag)
	s.Require().Equal(http.StatusCreated, code)

	var questions response.QuestionsResponse
	code = s.do(http.MethodPost, "/api/v1/runs/"+string(run.ID)+"/questions/bulk", author, map[string]any{
		"questions": []map[string]any{
			{"text": "What colour is the door?", "type": "multiple_choice", "flag_id": string(flag.Flag.ID)},
			{"text": "", "type": "multiple_choice"},
		},
	}, &questions)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().Len(questions.Questions, 1)

	questionID := string(questions.Questions[0].ID)
	var options response.OptionsResponse
	code = s.do(http.MethodPost, fmt.Sprintf("/api/v1/questions/%s/options/bulk", questionID), author, map[string]any{
		"options": []map[string]any{
			{"text": "Blue", "correct": true},
			{"text": "Red", "correct": false},
		},
	}, &options)
	s.Require().Equal(http.StatusCreated, code)
	s.Require().Len(options.Options, 2)

	// Bulk update the first option; the second is untouched
	var updated response.OptionsResponse
	code = s.do(http.MethodPut, fmt.Sprintf("/api/v1/questions/%s/options/bulk", questionID), author, map[string]any{
		"options": []map[string]any{
			{"id": string(options.Options[0].ID), "text": "Green", "correct": true},
		},
	}, &updated)
	s.Require().Equal(http.StatusOK, code)
	s.Require().Len(updated.Options, 1)
	s.Equal("Green", updated.Options[0].Text)

	var got response.QuestionResponse
	code = s.do(http.MethodGet, "/api/v1/questions/"+questionID, author, nil, &got)
	s.Require().Equal(http.StatusOK, code)
	s.Len(got.Question.Options, 2)
}
