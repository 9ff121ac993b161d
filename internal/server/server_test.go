package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campus/internal/config"
)

func newTestServer(t *testing.T, env map[string]string) *Server {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("DB_PATH", filepath.Join(dir, "db", "campus.db"))
	t.Setenv("SERVER_STORAGE_PATH", filepath.Join(dir, "uploads"))
	t.Setenv("REDIS_ADDR", "")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.LoadConfig("", filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	srv, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.deps.Close() })
	return srv
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	cookies     []*http.Cookie
}

func (s *Server) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func studentForm(t *testing.T, fields map[string]string, filename string, image []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type loginResult struct {
	token   string
	cookies []*http.Cookie
}

func (s *Server) login(t *testing.T, email, password string) loginResult {
	t.Helper()
	rec := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/login",
		body:        jsonBody(t, map[string]string{"email": email, "password": password}),
		contentType: "application/json",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return loginResult{token: body.Data.AccessToken, cookies: rec.Result().Cookies()}
}

func TestStudentLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, request{method: http.MethodGet, path: "/api/v1/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok","redis":"disabled"}`, rec.Body.String())

	rec = srv.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/register",
		body:        jsonBody(t, map[string]string{"email": "Admin@Campus.test", "password": "s3cret", "confirmPassword": "s3cret"}),
		contentType: "application/json",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body, contentType := studentForm(t, map[string]string{
		"idno": "2021-0001", "lastname": "Doe", "firstname": "Jane", "course": "BSCS", "level": "1",
	}, "jane.png", []byte("png-bytes"))

	rec = srv.do(t, request{method: http.MethodPost, path: "/api/v1/students", body: body, contentType: contentType})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	session := srv.login(t, "admin@campus.test", "s3cret")
	require.NotEmpty(t, session.cookies)
	assert.Equal(t, "campus_session", session.cookies[0].Name)
	assert.True(t, session.cookies[0].HttpOnly)

	body, contentType = studentForm(t, map[string]string{
		"idno": "2021-0001", "lastname": "Doe", "firstname": "Jane", "course": "BSCS", "level": "1",
	}, "jane.png", []byte("png-bytes"))
	rec = srv.do(t, request{method: http.MethodPost, path: "/api/v1/students", body: body, contentType: contentType, token: session.token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, request{method: http.MethodGet, path: "/api/get_students"})
	require.Equal(t, http.StatusOK, rec.Code)
	var students []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, "2021-0001", students[0]["idno"])
	assert.Equal(t, "/static/uploads/2021-0001_jane.png", students[0]["image"])

	rec = srv.do(t, request{method: http.MethodGet, path: "/static/uploads/2021-0001_jane.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	// the session cookie alone authenticates
	rec = srv.do(t, request{method: http.MethodGet, path: "/api/v1/students/2021-0001", cookies: session.cookies})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body, contentType = studentForm(t, map[string]string{
		"idno": "2021-0001", "lastname": "Roe", "firstname": "Jane", "course": "BSIT", "level": "2",
	}, "", nil)
	rec = srv.do(t, request{method: http.MethodPost, path: "/api/v1/students", body: body, contentType: contentType, token: session.token})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, request{method: http.MethodDelete, path: "/api/v1/students/2021-0001", token: session.token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, request{method: http.MethodGet, path: "/api/get_students"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = srv.do(t, request{method: http.MethodPost, path: "/api/v1/auth/logout", token: session.token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, request{method: http.MethodGet, path: "/api/v1/students", token: session.token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `campus_store_operations_total{op="insert",outcome="ok",table="students"} 1`))
}

func TestDefaultAdminAndClosedRegistration(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"AUTH_ALLOW_REGISTRATION":     "false",
		"AUTH_DEFAULT_ADMIN_EMAIL":    "root@campus.test",
		"AUTH_DEFAULT_ADMIN_PASSWORD": "rootpw",
	})

	rec := srv.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/register",
		body:        jsonBody(t, map[string]string{"email": "new@campus.test", "password": "pw", "confirmPassword": "pw"}),
		contentType: "application/json",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/login",
		body:        jsonBody(t, map[string]string{"email": "nobody@campus.test", "password": "pw"}),
		contentType: "application/json",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	session := srv.login(t, "root@campus.test", "rootpw")

	rec = srv.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/admins",
		body:        jsonBody(t, map[string]string{"email": "second@campus.test", "password": "pw2"}),
		contentType: "application/json",
		token:       session.token,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, request{method: http.MethodGet, path: "/api/v1/admins", token: session.token})
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	for _, a := range list.Data {
		assert.NotContains(t, a, "password")
	}

	rec = srv.do(t, request{method: http.MethodGet, path: "/api/v1/admins/abc", token: session.token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
