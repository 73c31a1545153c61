package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/RKBobe/Ripple/auth"
	"github.com/RKBobe/Ripple/generator"
	"github.com/RKBobe/Ripple/store"
)

//go:embed web/dist
var embeddedStatic embed.FS

type Server struct {
	genAgent *generator.Agent
	users    *store.Store
	tokens   *auth.Manager
	staticFS http.Handler
}

func New(genAgent *generator.Agent, users *store.Store, tokens *auth.Manager) (*Server, error) {
	if genAgent == nil {
		return nil, errors.New("generator agent required")
	}
	if users == nil {
		return nil, errors.New("user store required")
	}
	if tokens == nil {
		return nil, errors.New("token manager required")
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		genAgent: genAgent,
		users:    users,
		tokens:   tokens,
		staticFS: http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", s.handleRegister)
	mux.HandleFunc("/api/token", s.handleToken)
	mux.HandleFunc("/api/users/me", s.handleMe)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.Handle("/", s.staticHandler())
	return logMiddleware(mux)
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// fall back to index.html for SPA-ish behavior
		upath := r.URL.Path
		if upath == "/" || !strings.HasPrefix(upath, "/api/") {
			p := upath
			if p == "/" {
				p = "/index.html"
			}
			r.URL.Path = p
			s.staticFS.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// --- Handlers ---

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResp struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type generateReq struct {
	Text string `json:"text"`
}

type generateResp struct {
	Status string            `json:"status"`
	Posts  map[string]string `json:"posts"`
}

type previewReq struct {
	Content string `json:"content"`
}

type previewResp struct {
	HTML string `json:"html"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user, err := s.users.CreateUser(r.Context(), req.Email, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusOK, userResp{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
}

// handleToken implements the OAuth2 password flow: form-encoded username and
// password in exchange for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := s.users.GetUserByEmail(r.Context(), email)
	if err != nil || !auth.VerifyPassword(password, user.HashedPassword) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	token, err := s.tokens.CreateAccessToken(user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResp{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userResp{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.currentUser(w, r); !ok {
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	result, err := s.genAgent.Generate(ctx, req.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to generate posts from the text")
		return
	}
	writeJSON(w, http.StatusOK, generateResp{Status: "success", Posts: result.PlatformPosts()})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.currentUser(w, r); !ok {
		return
	}
	var req previewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	html, err := generator.RenderHTML(req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}
	writeJSON(w, http.StatusOK, previewResp{HTML: html})
}

// --- Helpers ---

// currentUser authenticates the request from its bearer token. On failure it
// writes the 401 itself and returns ok=false.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		s.unauthorized(w)
		return store.User{}, false
	}
	email, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		s.unauthorized(w)
		return store.User{}, false
	}
	user, err := s.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		s.unauthorized(w)
		return store.User{}, false
	}
	return user, true
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
}

type errorResp struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResp{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
