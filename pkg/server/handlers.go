package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/review"
	"github.com/saishankar404/tidy/pkg/store"
	"github.com/saishankar404/tidy/pkg/workspace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"offline": s.orch.IsOffline(),
	})
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "user store not configured")
		return
	}
	user, err := s.store.GetUser(r.PathValue("userId"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type putUserRequest struct {
	Settings json.RawMessage `json:"settings"`
}

func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "user store not configured")
		return
	}
	var req putUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user, err := s.store.PutUser(r.PathValue("userId"), req.Settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "user store not configured")
		return
	}
	if err := s.store.DeleteUser(r.PathValue("userId")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

type analysisRequest struct {
	UserID   string `json:"userId"`
	FilePath string `json:"filePath" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Language string `json:"language"`
}

type analysisResponse struct {
	SessionID string                 `json:"sessionId"`
	Offline   bool                   `json:"offline"`
	Results   []model.AnalysisResult `json:"results"`
	Summary   model.Summary          `json:"summary"`
	Review    review.ReviewResponse  `json:"review"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Language == "" {
		req.Language = workspace.DetectLanguage(req.FilePath)
	}

	cctx := model.CodeContext{
		FilePath: req.FilePath,
		Content:  req.Content,
		Language: req.Language,
	}

	run, err := s.orch.Analyze(r.Context(), cctx, nil)
	if errors.Is(err, analyzer.ErrCancelled) {
		writeError(w, http.StatusRequestTimeout, "Analysis cancelled")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.assistant.SetContext(req.FilePath, req.Content)
	s.assistant.SetAnalysis(run)

	resp := analysisResponse{
		SessionID: model.NewID(),
		Offline:   s.orch.IsOffline(),
		Results:   run.Results,
		Summary:   run.Summary,
		Review:    review.Transform(run.Results, req.FilePath, req.Content),
	}

	if s.store != nil {
		if err := s.store.SaveAnalysis(resp.SessionID, req.UserID, req.FilePath, resp); err != nil {
			// Best effort; the analysis itself already succeeded.
			s.log.Warn("persist analysis failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetOffline(w http.ResponseWriter, r *http.Request) {
	s.orch.ResetOfflineMode()
	writeJSON(w, http.StatusOK, map[string]bool{"offline": false})
}

func (s *Server) handleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	records, err := s.store.ListAnalyses(r.PathValue("userId"), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAnalysisSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	rec, err := s.store.GetAnalysis(r.PathValue("sessionId"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

type chatRequest struct {
	UserID    string `json:"userId" validate:"required"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message" validate:"required"`
	Code      string `json:"code"`
	FilePath  string `json:"filePath"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = model.NewID()
	}
	if req.Code != "" {
		path := req.FilePath
		if path == "" {
			path = "untitled"
		}
		s.assistant.SetContext(path, req.Code)
	}

	reply := s.assistant.GenerateResponse(r.Context(), req.Message)

	if s.store != nil {
		history := s.assistant.History()
		if len(history) >= 2 {
			userMsg := history[len(history)-2]
			if err := s.store.AppendChatMessage(req.UserID, req.SessionID, userMsg); err != nil {
				s.log.Warn("persist chat message failed", zap.Error(err))
			}
		}
		if err := s.store.AppendChatMessage(req.UserID, req.SessionID, reply); err != nil {
			s.log.Warn("persist chat message failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": req.SessionID,
		"message":   reply,
	})
}
