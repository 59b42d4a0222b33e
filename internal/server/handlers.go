package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/ingest"
	"github.com/docsense/docsense/internal/loader"
	"github.com/docsense/docsense/internal/pipeline"
	"github.com/docsense/docsense/internal/session"
	"github.com/docsense/docsense/internal/vector"
)

// maxUploadBatch caps how many files one upload request may carry.
const maxUploadBatch = 8

// sessionID resolves the caller's session: the path parameter when present,
// otherwise the session cookie.
func (s *Server) sessionID(r *http.Request) string {
	if id := chi.URLParam(r, "sessionID"); id != "" {
		return id
	}
	cookie, err := r.Cookie(s.config.Session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireSession validates the caller's session and writes the error
// response itself when validation fails.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := s.sessionID(r)
	if _, err := s.sessions.Validate(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, session.ErrNoActiveSession):
			s.respondError(w, http.StatusUnauthorized, "no active session")
		case errors.Is(err, chatstore.ErrSessionNotFound):
			s.respondError(w, http.StatusNotFound, "session not found")
		default:
			s.logger.Error("session validation failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
		}
		return "", false
	}
	return id, true
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("session creation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.Session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   s.config.Session.CookieMaxAgeSecs,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "chat session initialized",
		"session_id": sess.ID,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	// Bound the request body before parsing so oversized uploads are rejected
	// up front instead of being spooled to temp files first. The bound admits
	// a full batch of files each within the per-file limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxFileBytes*maxUploadBatch+1<<20)
	if err := r.ParseMultipartForm(s.config.Upload.MaxFileBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusBadRequest, "request body too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(headers) > maxUploadBatch {
		s.respondError(w, http.StatusBadRequest, "too many files in one upload")
		return
	}

	var files []ingest.UploadFile
	for _, h := range headers {
		if !strings.EqualFold(filepath.Ext(h.Filename), ".pdf") {
			s.respondError(w, http.StatusBadRequest, "unsupported file type: "+h.Filename)
			return
		}
		if h.Size > s.config.Upload.MaxFileBytes {
			s.respondError(w, http.StatusBadRequest, "file too large: "+h.Filename)
			return
		}
		f, err := h.Open()
		if err != nil {
			s.logger.Error("open uploaded file failed", zap.String("file", h.Filename), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.logger.Error("read uploaded file failed", zap.String("file", h.Filename), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(content) == 0 {
			s.respondError(w, http.StatusBadRequest, "empty file: "+h.Filename)
			return
		}
		files = append(files, ingest.UploadFile{
			Name:       h.Filename,
			SourceType: loader.SourceTypePDF,
			Content:    content,
		})
	}

	result, err := s.ingester.Ingest(r.Context(), sessionID, files)
	if err != nil {
		switch {
		case errors.Is(err, loader.ErrUnsupportedSourceType), errors.Is(err, loader.ErrExtraction):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("ingestion failed", zap.String("session_id", sessionID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	message := "documents indexed"
	if result.Chunks == 0 {
		message = "documents contained nothing to index"
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"message":    message,
		"files":      result.Files,
		"pages":      result.Pages,
		"chunks":     result.Chunks,
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := s.pipeline.Answer(r.Context(), sessionID, req.Query)
	if err != nil {
		var persistErr *pipeline.PersistenceError
		switch {
		case errors.As(err, &persistErr):
			// The answer is valid; losing one history entry is not worth a 500.
			s.logger.Warn("exchange not recorded", zap.String("session_id", sessionID), zap.Error(err))
		case errors.Is(err, vector.ErrIndexNotFound):
			s.respondError(w, http.StatusNotFound, "no documents indexed for this session")
			return
		default:
			s.logger.Error("query failed", zap.String("session_id", sessionID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"response":   answer,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	history, err := s.history.History(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("history lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   history,
		"count":      len(history),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := s.history.ClearHistory(r.Context(), sessionID); err != nil {
		s.logger.Error("clear history failed", zap.String("session_id", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "chat history cleared",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
