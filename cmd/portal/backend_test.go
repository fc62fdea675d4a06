package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/require"
)

// fakePortal is an in-memory stand-in for the career portal backend.
type fakePortal struct {
	t *testing.T

	mu        sync.Mutex
	passwords map[string]string
	emails    map[string]string
	tokens    map[string]string
	profiles  map[string]types.ProfileDraft
	recCalls  []bool
	uploads   map[string][]byte
}

func newFakePortal(t *testing.T) (*fakePortal, *httptest.Server) {
	t.Helper()
	fp := &fakePortal{
		t:         t,
		passwords: make(map[string]string),
		emails:    make(map[string]string),
		tokens:    make(map[string]string),
		profiles:  make(map[string]types.ProfileDraft),
		uploads:   make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", fp.register)
	mux.HandleFunc("POST /token", fp.login)
	mux.HandleFunc("GET /users/me", fp.me)
	mux.HandleFunc("POST /profile", fp.submitProfile)
	mux.HandleFunc("GET /recommendations", fp.recommendations)
	mux.HandleFunc("POST /profile/resume", fp.uploadResume)
	mux.HandleFunc("GET /export/{format}", fp.export)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fp, server
}

func (fp *fakePortal) addUser(username, password string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.passwords[username] = password
	fp.emails[username] = username + "@example.com"
}

func (fp *fakePortal) setProfile(username string, draft types.ProfileDraft) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.profiles[username] = draft
}

func (fp *fakePortal) recommendationCalls() []bool {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]bool{}, fp.recCalls...)
}

// issueToken signs a short-lived JWT for username.
func issueToken(t *testing.T, username string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// authenticate resolves the bearer token to a username.
func (fp *fakePortal) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	fp.mu.Lock()
	username, known := fp.tokens[token]
	fp.mu.Unlock()
	if !ok || !known {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return "", false
	}
	return username, true
}

func (fp *fakePortal) register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()
	if _, exists := fp.passwords[req.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	fp.passwords[req.Username] = req.Password
	fp.emails[req.Username] = req.Email
	writeJSON(w, http.StatusOK, map[string]any{"id": len(fp.passwords), "username": req.Username, "email": req.Email})
}

func (fp *fakePortal) login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fp.mu.Lock()
	password, ok := fp.passwords[req.Username]
	fp.mu.Unlock()
	if !ok || password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token := issueToken(fp.t, req.Username, time.Hour)
	fp.mu.Lock()
	fp.tokens[token] = req.Username
	fp.mu.Unlock()
	writeJSON(w, http.StatusOK, types.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (fp *fakePortal) me(w http.ResponseWriter, r *http.Request) {
	username, ok := fp.authenticate(w, r)
	if !ok {
		return
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()
	resp := map[string]any{"id": 1, "username": username, "email": fp.emails[username], "profile": nil}
	if draft, ok := fp.profiles[username]; ok {
		resp["profile"] = draft
	}
	writeJSON(w, http.StatusOK, resp)
}

func (fp *fakePortal) submitProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := fp.authenticate(w, r)
	if !ok {
		return
	}
	var draft types.ProfileDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	fp.setProfile(username, draft)
	writeJSON(w, http.StatusOK, draft)
}

func (fp *fakePortal) recommendations(w http.ResponseWriter, r *http.Request) {
	username, ok := fp.authenticate(w, r)
	if !ok {
		return
	}

	fp.mu.Lock()
	draft, hasProfile := fp.profiles[username]
	force := r.URL.Query().Get("refresh") == "true"
	fp.recCalls = append(fp.recCalls, force)
	generation := len(fp.recCalls)
	fp.mu.Unlock()

	if !hasProfile {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"courses": []map[string]any{
			{"platform": "Coursera", "title": fmt.Sprintf("Course for %s #%d", draft.FullName, generation), "link": "https://example.com/c", "banner_url": "", "tags": draft.Skills},
		},
		"jobs": []map[string]any{
			{"title": "Backend Engineer", "company": "Acme", "location": "Remote", "description": "<p>Build <b>services</b></p>", "required_skills": []string{"Go"}, "link": "https://example.com/j"},
		},
	})
}

func (fp *fakePortal) uploadResume(w http.ResponseWriter, r *http.Request) {
	username, ok := fp.authenticate(w, r)
	if !ok {
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = file.Close() }()
	data, _ := io.ReadAll(file)

	fp.mu.Lock()
	fp.uploads[username+"/"+header.Filename] = data
	fp.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Resume uploaded successfully"})
}

func (fp *fakePortal) export(w http.ResponseWriter, r *http.Request) {
	username, ok := fp.authenticate(w, r)
	if !ok {
		return
	}
	_, _ = fmt.Fprintf(w, "%s export for %s", r.PathValue("format"), username)
}

// cli runs portal commands in-process against one backend and session file.
type cli struct {
	t          *testing.T
	server     *httptest.Server
	sessionDir string
}

func newCLI(t *testing.T, server *httptest.Server) *cli {
	return &cli{t: t, server: server, sessionDir: t.TempDir()}
}

func (c *cli) sessionFile() string {
	return filepath.Join(c.sessionDir, "session.json")
}

// run executes args and returns stdout.
func (c *cli) run(args ...string) (string, error) {
	return c.runWithInput("", args...)
}

func (c *cli) runWithInput(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(append([]string{}, args...),
		"--api-url", c.server.URL,
		"--session-backend", "file",
		"--session-file", c.sessionFile(),
	))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
