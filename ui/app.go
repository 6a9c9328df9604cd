package ui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gobandit/domain/core"
	"gobandit/domain/run"
	"gobandit/internal"
	"gobandit/ports"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// peerLimit caps how many same-sequence runs feed a report summary
const peerLimit = 500

// App serves read-only HTML reports over the run ledger
type App struct {
	router    *chi.Mux
	reader    ports.RunLedgerReader
	templates *template.Template
	logger    *internal.Logger
	server    *http.Server
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(config Config, reader ports.RunLedgerReader, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		reader:    reader,
		templates: templates,
		logger:    logger.Named("ui"),
	}
	app.server = &http.Server{Addr: ":" + config.Port, Handler: app.router}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/runs/{id}", a.handleRun)
	a.router.Get("/runs/{id}/json", a.handleRunJSON)
	a.router.Get("/runs/{id}/markdown", a.handleRunMarkdown)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server and blocks until it stops
func (a *App) Start() error {
	a.logger.Info("Starting report UI on %s", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	sequence := r.URL.Query().Get("sequence")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := a.reader.ListRuns(r.Context(), ports.RunFilters{Sequence: sequence, Limit: limit})
	if err != nil {
		a.logger.Error("Failed to list runs: %v", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Sequence": sequence,
		"Runs":     runs,
	})
}

func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	result, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	report := RunReport(result, a.peers(r.Context(), result))

	a.renderTemplate(w, "run.html", map[string]interface{}{
		"ID":     result.ID,
		"Report": template.HTML(renderMarkdown(report)),
	})
}

func (a *App) handleRunJSON(w http.ResponseWriter, r *http.Request) {
	result, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		a.logger.Error("Failed to encode run %s: %v", result.ID, err)
	}
}

func (a *App) handleRunMarkdown(w http.ResponseWriter, r *http.Request) {
	result, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, RunReport(result, a.peers(r.Context(), result)))
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*run.Result, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	result, err := a.reader.GetRun(r.Context(), id)
	if core.IsNotFoundError(err) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		a.logger.Error("Failed to load run %s: %v", id, err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return nil, false
	}
	return result, true
}

func (a *App) peers(ctx context.Context, result *run.Result) []*run.Result {
	peers, err := a.reader.ListRuns(ctx, ports.RunFilters{Sequence: result.Sequence, Limit: peerLimit})
	if err != nil {
		a.logger.Warn("Failed to load peers for %s: %v", result.Sequence, err)
		return nil
	}
	return peers
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
