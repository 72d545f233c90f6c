package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/chat"
	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/store"
)

type fixedLLM struct {
	reply string
	err   error
}

func (f *fixedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithOptions(ctx, prompt, llm.DefaultOptions())
}

func (f *fixedLLM) CompleteWithOptions(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return f.reply, f.err
}

func newTestServer(t *testing.T, client llm.LLM) *Server {
	t.Helper()

	gateway := llm.NewGateway(client)
	cfg := model.DefaultAnalysisConfig()
	cfg.EnabledAnalyzers = []model.AnalyzerKind{model.KindSecurity, model.KindQuality}
	orch := analyzer.NewOrchestrator(gateway, cfg, nil)
	assistant := chat.NewAssistant(gateway, nil)

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return New(Options{Addr: ":0"}, orch, assistant, st, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{reply: `{"score": 90}`})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["offline"])
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/user/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "user not found", errBody["error"])

	rec = doJSON(t, h, http.MethodPut, "/api/user/u1", map[string]interface{}{
		"settings": map[string]string{"theme": "dark"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user store.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "u1", user.ID)
	assert.JSONEq(t, `{"theme":"dark"}`, string(user.Settings))

	rec = doJSON(t, h, http.MethodDelete, "/api/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/user/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisEndpoint(t *testing.T) {
	reply := `{"score": 88, "summary": "looks good", "issues": [{"title": "t", "description": "d"}], "suggestions": []}`
	srv := newTestServer(t, &fixedLLM{reply: reply})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/analysis", map[string]string{
		"userId":   "u1",
		"filePath": "src/app.ts",
		"content":  "const x = 1;",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SessionID string                 `json:"sessionId"`
		Offline   bool                   `json:"offline"`
		Results   []model.AnalysisResult `json:"results"`
		Summary   model.Summary          `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.Offline)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 88, resp.Summary.OverallScore)

	// Language inferred from the extension.
	assert.Equal(t, "typescript", resp.Results[0].Metadata.Language)

	// The run landed in history.
	rec = doJSON(t, h, http.MethodGet, "/api/analysis-history/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []store.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "src/app.ts", records[0].FilePath)

	rec = doJSON(t, h, http.MethodGet, "/api/analysis-history/u1/"+resp.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysisValidation(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{reply: `{"score": 90}`})
	h := srv.Handler()

	// Missing content.
	rec := doJSON(t, h, http.MethodPost, "/api/analysis", map[string]string{"filePath": "a.ts"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown fields are rejected.
	rec = doJSON(t, h, http.MethodPost, "/api/analysis", map[string]string{
		"filePath": "a.ts", "content": "x", "bogus": "y",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.NotEmpty(t, errBody["error"])
}

func TestResetOfflineEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{err: llm.ErrQuotaExceeded})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/analysis", map[string]string{
		"filePath": "a.ts", "content": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/health", nil)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, true, health["offline"])

	rec = doJSON(t, h, http.MethodPost, "/api/analysis/reset-offline", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/health", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, false, health["offline"])
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{reply: "You should add input validation."})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/chat", map[string]string{
		"userId":  "u1",
		"message": "what should I improve?",
		"code":    "const x = 1;",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SessionID string            `json:"sessionId"`
		Message   model.ChatMessage `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "You should add input validation.", resp.Message.Content)

	// Missing message is rejected.
	rec = doJSON(t, h, http.MethodPost, "/api/chat", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fixedLLM{})
	srv.origins = map[string]struct{}{"https://editor.example": {}}
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "https://editor.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://editor.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
