package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	"github.com/saeidalz13/battleship-solo/internal/config"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
	"github.com/saeidalz13/battleship-solo/views"
)

const (
	defaultPort int = 8000

	maxGameAge           time.Duration = time.Hour
	gameCleanupInterval  time.Duration = time.Minute * 10
	sessionCleanupPeriod time.Duration = time.Minute * 20
)

type Server struct {
	port        int
	stage       string
	botDelay    time.Duration
	gracePeriod time.Duration
	db          *sql.DB

	GameManager      *mb.BattleshipGameManager
	SessionManager   *mc.BattleshipSessionManager
	DbManager        sqlc.DbManager
	RequestProcessor RequestProcessor
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) (*Server, error) {
	server := Server{
		port:     defaultPort,
		stage:    config.StageDev,
		botDelay: mb.DefaultBotMoveDelay,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			return nil, err
		}
	}

	var queries sqlc.Querier
	if server.db != nil {
		queries = sqlc.New(server.db)
	}
	server.DbManager = sqlc.NewDbManager(queries)

	server.GameManager = mb.NewBattleshipGameManager(mb.WithBotDelay(server.botDelay))

	sessionOpts := []mc.SessionManagerOption{
		mc.WithCleanupInterval(sessionCleanupPeriod),
		mc.WithOnTerminate(func(session *mc.Session) {
			if game := session.Game(); game != nil {
				server.GameManager.TerminateGame(game.Uuid())
			}
		}),
	}
	if server.gracePeriod > 0 {
		sessionOpts = append(sessionOpts, mc.WithGracePeriod(server.gracePeriod))
	}
	server.SessionManager = mc.NewBattleshipSessionManager(sessionOpts...)

	server.RequestProcessor = NewRequestProcessor(server.SessionManager, server.GameManager, server.DbManager.Analytics)
	return &server, nil
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 1 || port > 65535 {
			return cerr.ErrInvalidPort(fmt.Sprintf("%d", port))
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != config.StageProd && stage != config.StageDev {
			return cerr.ErrInvalidStage(stage)
		}
		s.stage = stage
		return nil
	}
}

// A nil db keeps analytics off.
func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.db = db
		return nil
	}
}

func WithBotDelay(delay time.Duration) Option {
	return func(s *Server) error {
		if delay < 0 {
			return cerr.ErrInvalidBotDelay(delay.String())
		}
		s.botDelay = delay
		return nil
	}
}

func WithGracePeriod(gracePeriod time.Duration) Option {
	return func(s *Server) error {
		s.gracePeriod = gracePeriod
		return nil
	}
}

func (s *Server) Port() int {
	return s.port
}

func (s *Server) Stage() string {
	return s.stage
}

// RunCleanups starts the periodic cleanups of idle sessions
// and orphaned games. They stop when stop is closed.
func (s *Server) RunCleanups(stop <-chan struct{}) {
	go s.GameManager.CleanupPeriodically(gameCleanupInterval, maxGameAge, s.SessionManager.HoldsGame, stop)
	go s.SessionManager.CleanupPeriodically(stop)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/analytics", s.handleAnalytics)
	r.Method(http.MethodGet, "/battleship", s.RequestProcessor)

	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", s.handleGameState)
		r.Get("/board", s.handleBoardPage)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"stage":     s.stage,
		"games":     s.GameManager.CountGames(),
		"sessions":  s.SessionManager.CountSessions(),
		"analytics": s.DbManager.Analytics.Enabled(),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.DbManager.Analytics.GetCounts(r.Context(), s.RequestProcessor.serverInet())
	if err != nil {
		log.Error().Err(err).Msg("failed to read analytics")
		writeJSON(w, http.StatusInternalServerError, mc.NewRespErr(err.Error(), "failed to read analytics"))
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	game, err := s.GameManager.FetchGame(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, mc.NewRespErr(err.Error(), "game not found"))
		return
	}
	writeJSON(w, http.StatusOK, mc.NewRespGameState(game.Snapshot(), true))
}

func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	game, err := s.GameManager.FetchGame(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	snapshot := game.Snapshot()
	state := mc.NewRespGameState(snapshot, true)
	render(w, r, views.BoardPageView(views.NewBoardPage(snapshot, state.OpponentBoard)))
}
