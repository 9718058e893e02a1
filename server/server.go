package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/jrsteele09/csv-sheet-sync/csvexport"
	"github.com/jrsteele09/csv-sheet-sync/internal/config"
	"github.com/jrsteele09/csv-sheet-sync/oauthstate"
	"github.com/jrsteele09/csv-sheet-sync/sessions"
	"github.com/jrsteele09/csv-sheet-sync/sheetsync"
	"github.com/jrsteele09/csv-sheet-sync/spreadsheets"
	"github.com/rs/zerolog/log"
)

// Broker is the part of the credential broker the handlers use
type Broker interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (credentials.Tokens, error)
	FetchIdentity(ctx context.Context, accessToken string) (credentials.Identity, error)
	EnsureFresh(ctx context.Context, cred credentials.Credential) (credentials.Credential, bool, error)
}

// Spreadsheets lists, creates and overwrites spreadsheets
type Spreadsheets interface {
	List(ctx context.Context, accessToken string) ([]spreadsheets.Summary, error)
	Create(ctx context.Context, accessToken, title string) (spreadsheets.Summary, error)
	OverwriteTab(ctx context.Context, accessToken, spreadsheetID, tab string, grid [][]string) error
}

// Deps are the collaborators a Server talks to
type Deps struct {
	Broker       Broker
	Spreadsheets Spreadsheets
	Store        credentials.Store // nil keeps credentials inside the session cookie
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	broker   Broker
	sheets   Spreadsheets
	store    credentials.Store
	sessions *sessions.Codec
	state    *oauthstate.Guard
	parser   *csvexport.Parser
	sync     *sheetsync.Service
}

func New(c config.Config, deps Deps) (*Server, error) {
	if deps.Broker == nil || deps.Spreadsheets == nil {
		return nil, fmt.Errorf("[Server New] broker and spreadsheets client are required")
	}

	parser := csvexport.NewParser(c.GetCsvDelimiter(), c.GetRequiredKeyColumn())
	s := &Server{
		env:      c.GetEnv(),
		mux:      http.NewServeMux(),
		config:   c,
		broker:   deps.Broker,
		sheets:   deps.Spreadsheets,
		store:    deps.Store,
		sessions: sessions.NewCodec(c.GetSessionSecret(), c.GetSessionDuration()),
		state:    oauthstate.NewGuard(c.GetStateTTL()),
		parser:   parser,
		sync:     sheetsync.NewService(parser, deps.Spreadsheets, deps.Broker, c.GetDefaultColumns()),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
