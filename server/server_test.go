package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RKBobe/Ripple/auth"
	"github.com/RKBobe/Ripple/generator"
	"github.com/RKBobe/Ripple/store"
)

const cannedReply = "```json\n" + `{
  "social_posts": [
    {"platform": "Twitter", "content": "Brew better coffee ☕", "hashtags": ["coffee"]},
    {"platform": "Twitter", "content": "Grind size is everything 🔬", "hashtags": ["brewing"]},
    {"platform": "LinkedIn", "content": "Lessons from coffee brewing for engineers.", "hashtags": []},
    {"platform": "General", "content": "Key Takeaways:\n- Fresh beans\n- Right temperature", "hashtags": []}
  ]
}` + "\n```"

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Complete(_ context.Context, _ generator.Prompt) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestServer(t *testing.T, llm generator.LLMClient) *Server {
	t.Helper()
	agent, err := generator.NewAgent(llm)
	require.NoError(t, err)
	users, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { users.Close() })
	tokens, err := auth.NewManager("test-secret", 30*time.Minute)
	require.NoError(t, err)
	srv, err := New(agent, users, tokens)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an account and returns a valid bearer token.
func registerAndLogin(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/register",
		`{"email":"user@example.com","password":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {"user@example.com"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenRec := httptest.NewRecorder()
	h.ServeHTTP(tokenRec, req)
	require.Equal(t, http.StatusOK, tokenRec.Code, tokenRec.Body.String())

	var body tokenResp
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func TestGenerate_Success(t *testing.T) {
	llm := &stubLLM{reply: cannedReply}
	h := newTestServer(t, llm).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/generate",
		`{"text":"Long article about coffee brewing methods..."}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body generateResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	for _, platform := range []string{"twitter", "twitter_2", "linkedin", "general"} {
		require.Contains(t, body.Posts, platform)
		assert.NotEmpty(t, body.Posts[platform])
	}
	assert.Equal(t, 1, llm.calls)
}

func TestGenerate_BlankTextNeverCallsModel(t *testing.T) {
	llm := &stubLLM{reply: cannedReply}
	h := newTestServer(t, llm).Routes()
	token := registerAndLogin(t, h)

	for _, body := range []string{`{"text":""}`, `{"text":"   \n\t"}`, `{}`} {
		rec := doJSON(t, h, http.MethodPost, "/api/generate", body, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "body %q", body)
	}
	assert.Zero(t, llm.calls)
}

func TestGenerate_MalformedBody(t *testing.T) {
	llm := &stubLLM{reply: cannedReply}
	h := newTestServer(t, llm).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"text": `, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, llm.calls)
}

func TestGenerate_UpstreamFailureNoRetry(t *testing.T) {
	llm := &stubLLM{err: errors.New("model unavailable")}
	h := newTestServer(t, llm).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"text":"some article"}`, token)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerate_UnparseableReply(t *testing.T) {
	llm := &stubLLM{reply: "I'm sorry, I can't produce JSON today."}
	h := newTestServer(t, llm).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"text":"some article"}`, token)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerate_RequiresAuth(t *testing.T) {
	llm := &stubLLM{reply: cannedReply}
	h := newTestServer(t, llm).Routes()

	t.Run("no token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"text":"hi"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("bogus token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"text":"hi"}`, "bogus")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	assert.Zero(t, llm.calls)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()

	body := `{"email":"user@example.com","password":"hunter2"}`
	rec := doJSON(t, h, http.MethodPost, "/api/register", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()

	rec := doJSON(t, h, http.MethodPost, "/api/register", `{"email":"","password":""}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestToken_BadCredentials(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()
	registerAndLogin(t, h)

	form := url.Values{"username": {"user@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestUsersMe(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/users/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body userResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user@example.com", body.Email)
	assert.NotZero(t, body.ID)
}

func TestPreview(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()
	token := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/preview",
		`{"content":"Key Takeaways:\n- one\n- two"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body previewResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.HTML, "<li>one</li>")
}

func TestStaticIndex(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ripple")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &stubLLM{reply: cannedReply}).Routes()

	rec := doJSON(t, h, http.MethodGet, "/api/generate", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
