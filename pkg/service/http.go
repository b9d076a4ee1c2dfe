package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	faerrors "github.com/matzehuels/faceaug/pkg/errors"
)

// DefaultMaxUploadBytes bounds an upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Handler returns the HTTP API:
//
//	POST /v1/images          upload raw image bytes, returns a Receipt (201)
//	GET  /v1/images          list image names
//	GET  /v1/images/{name}   fetch one image
//	GET  /healthz            liveness
func (s *Service) Handler(maxUpload int64) http.Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/", s.handleUpload(maxUpload))
		r.Get("/", s.handleList)
		r.Get("/{name}", s.handleImage)
	})
	return r
}

func (s *Service) handleUpload(maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxUpload))
				return
			}
			writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, "empty upload")
			return
		}
		receipt, err := s.AcceptImage(r.Context(), data)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	}
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"images": s.Images()})
}

func (s *Service) handleImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.Image(name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	contentType := "image/jpeg"
	if filepath.Ext(name) == ".png" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case faerrors.IsInvalid(err):
		return http.StatusBadRequest
	case faerrors.Is(err, faerrors.ErrCodeNotFound), faerrors.Is(err, faerrors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Service) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeError(w, status, faerrors.UserMessage(err))
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Serve listens on bind and serves the API until ctx is cancelled, then
// shuts down gracefully.
func (s *Service) Serve(ctx context.Context, bind string, maxUpload int64) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", bind, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(maxUpload),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(listener)
	}()
	s.logger.Info("listening", "addr", listener.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
