package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"yusaek/internal/config"
	"yusaek/internal/logger"
	"yusaek/internal/pipeline"
	"yusaek/internal/session"
)

type Server struct {
	cfg      config.Config
	sessions *session.Store
	proc     *pipeline.ProcessingService
	log      *logger.Logger
}

func New(cfg config.Config, sessions *session.Store, proc *pipeline.ProcessingService, log *logger.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		proc:     proc,
		log:      log.WithComponent("http"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog(s.log))
	r.Use(recoverer(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", IdentityHeader},
		ExposedHeaders: []string{"X-Request-ID", "X-Trace-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	})

	r.Route("/barcode", func(r chi.Router) {
		r.Use(requireIdentity)

		r.Post("/upload", s.upload)
		r.Post("/incoming/upload", s.uploadIncoming)
		r.Get("/status", s.status)
		r.Get("/processed", s.processed)

		r.Route("/scan", func(r chi.Router) {
			r.Post("/invoice", s.scanInvoice)
			r.Post("/item", s.scanItem)
		})

		r.Route("/defect", func(r chi.Router) {
			r.Post("/add", s.defectChange((*session.Session).AddDefect))
			r.Post("/dec", s.defectChange((*session.Session).DecrementDefect))
			r.Post("/remove", s.defectChange((*session.Session).RemoveDefect))
			r.Get("/list", s.defectList)
			r.Get("/export", s.defectExport)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}
