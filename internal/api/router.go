package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aweston/flagchase/internal/api/handler"
	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/services/account"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/services/flag"
	"github.com/aweston/flagchase/internal/services/history"
	"github.com/aweston/flagchase/internal/services/question"
	"github.com/aweston/flagchase/internal/services/run"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AccountService     *account.Service
	ActorResolver      *actor.Resolver
	RunController      *run.Controller
	FlagController     *flag.Controller
	QuestionController *question.Controller
	HistoryController  *history.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AccountService)
	guestHandler := handler.NewGuestHandler(cfg.AccountService)
	runHandler := handler.NewRunHandler(cfg.RunController)
	flagHandler := handler.NewFlagHandler(cfg.FlagController)
	questionHandler := handler.NewQuestionHandler(cfg.QuestionController)
	historyHandler := handler.NewHistoryHandler(cfg.HistoryController, cfg.ActorResolver)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.ActorResolver)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.ActorResolver)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Guest session routes (no auth required)
	api.HandleFunc("/guests/init", guestHandler.Init).Methods(http.MethodPost)
	api.HandleFunc("/guests/end", guestHandler.End).Methods(http.MethodPost)
	api.HandleFunc("/guests/upgrade", guestHandler.Upgrade).Methods(http.MethodPost)

	// Account routes (no auth required for registration/login flows)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/verify", accountHandler.VerifyEmail).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/accounts/password/forgot", accountHandler.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/accounts/password/reset", accountHandler.ResetPassword).Methods(http.MethodPost)

	// Protected account routes
	accountProtected := api.PathPrefix("/accounts").Subrouter()
	accountProtected.Use(authMiddleware)
	accountProtected.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)

	// Run routes; reads are open to any resolved actor joining by pin
	runs := api.PathPrefix("/runs").Subrouter()
	runs.Use(authMiddleware)
	runs.HandleFunc("", runHandler.Create).Methods(http.MethodPost)
	runs.HandleFunc("/pin/{pin}", runHandler.GetByPin).Methods(http.MethodGet)
	runs.HandleFunc("/{id}", runHandler.Get).Methods(http.MethodGet)
	runs.HandleFunc("/{id}", runHandler.Update).Methods(http.MethodPut)
	runs.HandleFunc("/{id}", runHandler.Delete).Methods(http.MethodDelete)

	// Bulk mutation routes under the parent run
	runs.HandleFunc("/{id}/flags/bulk", flagHandler.BulkCreate).Methods(http.MethodPost)
	runs.HandleFunc("/{id}/flags/bulk", flagHandler.BulkUpdate).Methods(http.MethodPut)
	runs.HandleFunc("/{id}/flags/bulk", flagHandler.BulkDelete).Methods(http.MethodDelete)
	runs.HandleFunc("/{id}/questions/bulk", questionHandler.BulkCreate).Methods(http.MethodPost)
	runs.HandleFunc("/{id}/questions/bulk", questionHandler.BulkUpdate).Methods(http.MethodPut)
	runs.HandleFunc("/{id}/questions/bulk", questionHandler.BulkDelete).Methods(http.MethodDelete)

	// Single-entity flag routes
	flags := api.PathPrefix("/flags").Subrouter()
	flags.Use(authMiddleware)
	flags.HandleFunc("", flagHandler.Create).Methods(http.MethodPost)
	flags.HandleFunc("/{id}", flagHandler.Get).Methods(http.MethodGet)
	flags.HandleFunc("/{id}", flagHandler.Update).Methods(http.MethodPut)
	flags.HandleFunc("/{id}", flagHandler.Delete).Methods(http.MethodDelete)

	// Question and option routes
	questions := api.PathPrefix("/questions").Subrouter()
	questions.Use(authMiddleware)
	questions.HandleFunc("", questionHandler.Create).Methods(http.MethodPost)
	questions.HandleFunc("/{id}", questionHandler.Get).Methods(http.MethodGet)
	questions.HandleFunc("/{id}", questionHandler.Update).Methods(http.MethodPut)
	questions.HandleFunc("/{id}/options/bulk", questionHandler.BulkCreateOptions).Methods(http.MethodPost)
	questions.HandleFunc("/{id}/options/bulk", questionHandler.BulkUpdateOptions).Methods(http.MethodPut)
	questions.HandleFunc("/{id}/options/bulk", questionHandler.BulkDeleteOptions).Methods(http.MethodDelete)

	options := api.PathPrefix("/options").Subrouter()
	options.Use(authMiddleware)
	options.HandleFunc("", questionHandler.CreateOption).Methods(http.MethodPost)
	options.HandleFunc("/{id}", questionHandler.UpdateOption).Methods(http.MethodPut)

	// Play routes accept a guest token in the body, so auth here is
	// optional and the handler finishes resolution itself
	play := api.PathPrefix("/history/run").Subrouter()
	play.Use(optionalAuthMiddleware)
	play.HandleFunc("/{runId}/start", historyHandler.Start).Methods(http.MethodPost)
	play.HandleFunc("/{historyId}/end", historyHandler.End).Methods(http.MethodPost)
	play.HandleFunc("/{historyId}/flag/{flagId}/reach", historyHandler.Reach).Methods(http.MethodPost)

	// History reads are actor scoped
	histories := api.PathPrefix("/history").Subrouter()
	histories.Use(authMiddleware)
	histories.HandleFunc("", historyHandler.List).Methods(http.MethodGet)
	histories.HandleFunc("/{id}", historyHandler.Get).Methods(http.MethodGet)
	histories.HandleFunc("/{id}", historyHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
