package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/trace"
	"stock-news-analysis/internal/types"
)

// Server exposes the day stores read-only over HTTP.
type Server struct {
	layout resultstore.Layout
}

func New(layout resultstore.Layout) *Server {
	return &Server{layout: layout}
}

type errorResponse struct {
	Error string `json:"error"`
}

type storeResponse struct {
	Tag   string `json:"tag"`
	Date  string `json:"date"`
	State string `json:"state"`
	Count int    `json:"count"`
	Rows  any    `json:"rows"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLog)

	r.Get("/health", s.handleHealth)
	r.Get("/stores/{tag}", s.handleStore)
	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "API server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "server.Store")
	defer span.End()

	tag := chi.URLParam(r, "tag")
	if !resultstore.KnownTag(tag) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown store tag " + tag})
		return
	}

	var path string
	var day time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := resultstore.ParseDay(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		day, path = d, s.layout.PathFor(tag, d)
	} else {
		p, d, ok, err := s.layout.Latest(tag)
		if err != nil {
			logger.ErrorWithErr(ctx, "Listing stores failed", err, "tag", tag)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no " + tag + " store yet"})
			return
		}
		day, path = d, p
	}

	rows, count, state, err := readRows(tag, path)
	switch state {
	case resultstore.Missing:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no " + tag + " store for " + resultstore.Day(day)})
		return
	case resultstore.Corrupt:
		logger.ErrorWithErr(ctx, "Store unreadable", err, "path", path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, storeResponse{
		Tag:   tag,
		Date:  resultstore.Day(day),
		State: state.String(),
		Count: count,
		Rows:  rows,
	})
}

func readRows(tag, path string) (any, int, resultstore.ReadState, error) {
	switch tag {
	case resultstore.TagSentiment:
		return rowsOf(resultstore.Read[types.SentimentRecord](path))
	case resultstore.TagScreener:
		return rowsOf(resultstore.Read[types.ScreenerRecord](path))
	case resultstore.TagChartPattern:
		return rowsOf(resultstore.Read[types.ChartPatternRecord](path))
	default:
		return rowsOf(resultstore.Read[types.SignalRecord](path))
	}
}

func rowsOf[T any](res resultstore.ReadResult[T]) (any, int, resultstore.ReadState, error) {
	rows := res.Rows
	if rows == nil {
		rows = []T{}
	}
	return rows, len(rows), res.State, res.Err
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
