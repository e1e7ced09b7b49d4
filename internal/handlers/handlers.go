package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/vladicamp/campvote/internal/auth"
	"github.com/vladicamp/campvote/internal/services"
	"github.com/vladicamp/campvote/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index      *template.Template
	Vote       *template.Template
	Results    *template.Template
	AdminLogin *template.Template
	AdminPanel *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Session      services.SessionServicer
	Ballot       services.BallotServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          HTTPLogger
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
	EnableHTTPLogging()
	DisableHTTPLogging()
}

// New creates a new Handlers instance with all dependencies
func New(
	session services.SessionServicer,
	ballot services.BallotServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Session:      session,
		Ballot:       ballot,
		Settings:     settings,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger with HTTP logging permanently off
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }
func (NoopHTTPLogger) EnableHTTPLogging()         {}
func (NoopHTTPLogger) DisableHTTPLogging()        {}

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(
	session services.SessionServicer,
	ballot services.BallotServicer,
	settings services.SettingsServicer,
) *Handlers {
	testAuth := auth.New("test-password")
	return &Handlers{
		Session:  session,
		Ballot:   ballot,
		Settings: settings,
		Auth:     testAuth,
		Log:      NoopHTTPLogger{},
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Vote, err = template.ParseFS(templatesFS, "vote.html"); err != nil {
		return nil, fmt.Errorf("vote template: %w", err)
	}
	if t.Results, err = template.ParseFS(templatesFS, "results.html"); err != nil {
		return nil, fmt.Errorf("results template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminPanel, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/panel.html"); err != nil {
		return nil, fmt.Errorf("admin panel template: %w", err)
	}

	return t, nil
}
