package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"PulseLens/internal/service/report"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Report string `json:"report"`
}

type testResponse struct {
	Message string `json:"message"`
}

// errorResponse конверт ошибки: категория, причина и подсказка.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, testResponse{Message: "Server is running!"})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	log := s.logger.With("request_id", id)

	var body generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warnw("Request body too large", "limit", tooLarge.Limit)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return
		}
		log.Warnw("Invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	log.Infow("Received request", "remote", r.RemoteAddr, "prompt", truncate(body.Prompt, 200))

	// Запрос к модели доводится до конца, даже если клиент отключился.
	ctx := context.WithoutCancel(r.Context())
	output, err := s.reports.Generate(ctx, report.Request{ID: id, Prompt: body.Prompt})
	if err != nil {
		status, resp := errorEnvelope(err)
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Report: output})
}

// errorEnvelope переводит ошибку сервиса в статус и JSON-конверт.
func errorEnvelope(err error) (int, errorResponse) {
	var ge *report.GenerationError
	switch {
	case errors.Is(err, report.ErrPromptRequired):
		return http.StatusBadRequest, errorResponse{Error: "Prompt is required"}
	case errors.Is(err, report.ErrAPIKeyNotConfigured):
		return http.StatusInternalServerError, errorResponse{Error: "API key not configured"}
	case errors.As(err, &ge):
		return http.StatusInternalServerError, errorResponse{
			Error:   "Failed to generate report",
			Details: ge.Err.Error(),
			Hint:    "Check server console for detailed error logs",
		}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()}
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.cfg.CORSAllowOrigin)
		if s.cfg.CORSAllowOrigin != "*" {
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// prompt только для логов: длинные промпты обрезаем
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
