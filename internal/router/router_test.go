package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/auth"
	"hrportal/internal/blob"
	"hrportal/internal/cache"
	"hrportal/internal/config"
	"hrportal/internal/db"
	"hrportal/internal/handler"
	"hrportal/internal/logging"
	"hrportal/internal/model"
	"hrportal/internal/repository"
	"hrportal/internal/service"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

type portal struct {
	e     *echo.Echo
	redis *miniredis.Miniredis
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	gormDB, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := blob.NewLocalStore(t.TempDir(), config.DefaultFolder)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cacheClient.Close() })

	links, err := blob.NewSignedLinker("http://portal.test", []byte("test-secret"), 0)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService("test-secret")
	tokenStore := auth.NewTokenStore(cacheClient)

	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, auth.PasswordPolicy{})
	documentService := service.NewDocumentService(
		repository.NewDocumentRepository(gormDB),
		store,
		links,
		cacheClient,
		logging.Nop{},
		0,
	)

	_, err = userService.CreateUser(context.Background(), service.NewUser{
		Identifier: "99999", Name: "RH", Password: "admin-pass", Admin: true,
	})
	require.NoError(t, err)

	e := echo.New()
	Register(
		e,
		&config.Config{UploadMaxBytes: 1 << 20},
		logging.Nop{},
		jwtService,
		tokenStore,
		handler.NewAuthHandler(authService, nil),
		handler.NewUserHandler(userService),
		handler.NewDocumentHandler(documentService),
		handler.NewContentHandler(documentService, links),
	)
	return &portal{e: e, redis: mr}
}

func (p *portal) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func (p *portal) login(t *testing.T, identifier, password string) handler.AuthResponse {
	t.Helper()
	rec := p.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Identifier: identifier, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (p *portal) upload(t *testing.T, token, owner, period, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("owner", owner))
	require.NoError(t, w.WriteField("period", period))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/documents", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

// open follows a document link the way a browser would, with no session.
func (p *portal) open(t *testing.T, link string) *httptest.ResponseRecorder {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, u.RequestURI(), nil)
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
		Hint string `json:"hint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}

func TestHealthz(t *testing.T) {
	p := newPortal(t)
	rec := p.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin(t *testing.T) {
	p := newPortal(t)

	tests := []struct {
		name           string
		identifier     string
		password       string
		expectedStatus int
		expectedCode   string
	}{
		{name: "unknown identifier", identifier: "00000", password: "x", expectedStatus: http.StatusUnauthorized, expectedCode: "USER_NOT_FOUND"},
		{name: "wrong password", identifier: "99999", password: "wrong", expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_CREDENTIAL"},
		{name: "missing password", identifier: "99999", expectedStatus: http.StatusBadRequest, expectedCode: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Identifier: tt.identifier, Password: tt.password})
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, errorCode(t, rec))
		})
	}

	t.Run("administrator", func(t *testing.T) {
		resp := p.login(t, "99999", "admin-pass")
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		require.NotNil(t, resp.User)
		assert.True(t, resp.User.Admin)
		assert.Equal(t, "RH", resp.User.Name)
	})
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	p := newPortal(t)

	rec := p.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/documents", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a refresh token is not a bearer credential
	admin := p.login(t, "99999", "admin-pass")
	rec = p.do(t, http.MethodGet, "/api/me", admin.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecuredRoutesReadBearerScheme(t *testing.T) {
	p := newPortal(t)
	admin := p.login(t, "99999", "admin-pass")

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "bearer scheme", header: "Bearer " + admin.AccessToken, expectedStatus: http.StatusOK},
		{name: "bare token", header: admin.AccessToken, expectedStatus: http.StatusUnauthorized},
		{name: "other scheme", header: "Basic " + admin.AccessToken, expectedStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			req.Header.Set(echo.HeaderAuthorization, tt.header)
			rec := httptest.NewRecorder()
			p.e.ServeHTTP(rec, req)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestPortalFlow(t *testing.T) {
	p := newPortal(t)
	admin := p.login(t, "99999", "admin-pass")

	// provision two employees
	rec := p.do(t, http.MethodPost, "/api/admin/users", admin.AccessToken, handler.CreateUserRequest{Identifier: "12345", Name: "Maria Souza", Password: "maria-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "maria-pass")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = p.do(t, http.MethodPost, "/api/admin/users", admin.AccessToken, handler.CreateUserRequest{Identifier: "54321", Name: "João Lima", Password: "joao-pass"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/admin/users", admin.AccessToken, handler.CreateUserRequest{Identifier: "12345", Name: "Other", Password: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_IDENTIFIER", errorCode(t, rec))

	rec = p.do(t, http.MethodGet, "/api/admin/users", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 3)
	assert.Equal(t, []string{"99999", "12345", "54321"}, []string{users[0].Identifier, users[1].Identifier, users[2].Identifier})

	maria := p.login(t, "12345", "maria-pass")
	assert.False(t, maria.User.Admin)

	// employees cannot reach admin routes
	rec = p.do(t, http.MethodGet, "/api/admin/users", maria.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = p.upload(t, maria.AccessToken, "12345", "March/2025", "holerite.pdf", samplePDF)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// nothing uploaded yet
	rec = p.do(t, http.MethodGet, "/api/documents", maria.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// non-PDF upload is rejected
	rec = p.upload(t, admin.AccessToken, "12345", "March/2025", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DOCUMENT", errorCode(t, rec))

	rec = p.upload(t, admin.AccessToken, "12345", "March/2025", "holerite-marco.pdf", samplePDF)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, "holerite-marco.pdf", uploaded.Filename)
	assert.Equal(t, "March/2025", uploaded.PeriodLabel)

	rec = p.do(t, http.MethodGet, "/api/documents", maria.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, uploaded.BlobRef, docs[0].BlobRef)

	rec = p.do(t, http.MethodGet, "/api/admin/users/12345/documents", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)

	// owner and administrator may open the link, another employee may not
	linkPath := "/api/documents/" + uploaded.BlobRef + "/link"
	rec = p.do(t, http.MethodGet, linkPath, maria.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var link handler.LinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.True(t, strings.HasPrefix(link.URL, "http://portal.test/file/d/"+uploaded.BlobRef+"/view?token="))

	// the link opens without a session
	rec = p.open(t, link.URL)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, samplePDF, rec.Body.Bytes())

	rec = p.do(t, http.MethodGet, linkPath, admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	joao := p.login(t, "54321", "joao-pass")
	rec = p.do(t, http.MethodGet, linkPath, joao.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = p.do(t, http.MethodGet, "/api/documents", joao.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = p.do(t, http.MethodGet, "/api/documents/unknown/link", maria.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentLinks(t *testing.T) {
	p := newPortal(t)
	admin := p.login(t, "99999", "admin-pass")

	first := p.upload(t, admin.AccessToken, "12345", "March/2025", "marco.pdf", samplePDF)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	var doc model.Document
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &doc))

	other := p.upload(t, admin.AccessToken, "54321", "March/2025", "other.pdf", samplePDF)
	require.Equal(t, http.StatusCreated, other.Code)
	var otherDoc model.Document
	require.NoError(t, json.Unmarshal(other.Body.Bytes(), &otherDoc))

	rec := p.do(t, http.MethodGet, "/api/documents/"+doc.BlobRef+"/link", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var link handler.LinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	t.Run("opens", func(t *testing.T) {
		rec := p.open(t, link.URL)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "marco.pdf")
	})

	t.Run("token does not open another document", func(t *testing.T) {
		rec := p.open(t, "/file/d/"+otherDoc.BlobRef+"/view?token="+url.QueryEscape(token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := p.open(t, "/file/d/"+doc.BlobRef+"/view")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("session token is not a link token", func(t *testing.T) {
		rec := p.open(t, "/file/d/"+doc.BlobRef+"/view?token="+url.QueryEscape(admin.AccessToken))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRefreshAndLogout(t *testing.T) {
	p := newPortal(t)
	admin := p.login(t, "99999", "admin-pass")

	rec := p.do(t, http.MethodPost, "/api/auth/refresh", "", handler.RefreshRequest{RefreshToken: admin.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	rec = p.do(t, http.MethodGet, "/api/me", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, model.Identity{Name: "RH", Identifier: "99999", Admin: true}, me)

	rec = p.do(t, http.MethodPost, "/api/auth/logout", admin.AccessToken, handler.LogoutRequest{RefreshToken: admin.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	keys := p.redis.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "blacklist:access_token:"), keys[0])

	// the access token is revoked and the refresh token is gone
	rec = p.do(t, http.MethodGet, "/api/me", admin.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/auth/refresh", "", handler.RefreshRequest{RefreshToken: admin.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorCode(t, rec))
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "21504K", bodyLimit(0))
	assert.Equal(t, "2048K", bodyLimit(1<<20))
}
