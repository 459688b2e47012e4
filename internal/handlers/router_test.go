package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository/memstore"
	"github.com/vidshare/backend/internal/service"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	mp4Bytes = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
)

func init() {
	gin.SetMode(gin.TestMode)
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	t      *testing.T
	router *gin.Engine
	media  *media.Memory
}

func newTestServer(t *testing.T, checks map[string]Pinger) *testServer {
	store := memstore.New()
	mediaStore := media.NewMemory()
	svc := &service.Services{
		Auth:     service.NewAuthService(store, mediaStore, auth.NewJWTService("test-secret", 24)),
		Channels: service.NewChannelService(store, mediaStore),
		Videos:   service.NewVideoService(store, mediaStore),
		Comments: service.NewCommentService(store),
	}
	if checks == nil {
		checks = map[string]Pinger{"database": store}
	}
	return &testServer{
		t: t,
		router: NewRouter(RouterConfig{
			Services:       svc,
			RateLimiter:    middleware.NewRateLimiter(1000, nil),
			HealthChecks:   checks,
			MaxUploadBytes: 1 << 20,
		}),
		media: mediaStore,
	}
}

type part struct {
	field, filename string
	data            []byte
}

func (s *testServer) do(method, path, token string, body []byte, contentType string) (int, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *testServer) doJSON(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(s.t, err)
	}
	return s.do(method, path, token, raw, "application/json")
}

func (s *testServer) doMultipart(method, path, token string, fields map[string]string, files ...part) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(s.t, err)
		_, err = fw.Write(f.data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do(method, path, token, buf.Bytes(), mw.FormDataContentType())
}

func (s *testServer) list(path string) []map[string]any {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out []map[string]any
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *testServer) registerAndLogin(name string) (token, id string) {
	s.t.Helper()
	code, body := s.doMultipart(http.MethodPost, "/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@x.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, code, body)

	code, body = s.doJSON(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: name + "@x.com", Password: "password123"})
	require.Equal(s.t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	assert.NotContains(s.t, user, "password_hash")
	return body["token"].(string), user["id"].(string)
}

func TestScenario(t *testing.T) {
	s := newTestServer(t, nil)
	tokenA, idA := s.registerAndLogin("usera")
	tokenB, idB := s.registerAndLogin("userb")

	code, _ := s.doMultipart(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "other", "email": "usera@x.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body := s.doMultipart(http.MethodPost, "/channels", tokenA,
		map[string]string{"channel_name": "C1", "description": "first channel"},
		part{"banner", "banner.png", pngBytes},
	)
	require.Equal(t, http.StatusCreated, code, body)
	channelID := body["id"].(string)
	assert.NotEmpty(t, body["channel_banner"])

	code, _ = s.doJSON(http.MethodPost, "/channels", tokenA, map[string]string{"channel_name": "C2", "description": "again"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.doMultipart(http.MethodPost, "/videos/upload", tokenA,
		map[string]string{"title": "V", "description": "a video", "category": "demo"},
		part{"video", "v.mp4", mp4Bytes},
		part{"thumbnail", "t.png", pngBytes},
	)
	require.Equal(t, http.StatusCreated, code, body)
	videoID := body["video"].(map[string]any)["id"].(string)

	code, _ = s.doMultipart(http.MethodPost, "/videos/upload", tokenA,
		map[string]string{"title": "bad"},
		part{"video", "v.txt", []byte("plain text")},
		part{"thumbnail", "t.png", pngBytes},
	)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.doJSON(http.MethodPost, "/videos/"+videoID+"/like", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = s.doJSON(http.MethodPost, "/videos/"+videoID+"/dislike", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["likes"])
	assert.Equal(t, []any{idB}, body["dislikes"])

	code, body = s.doJSON(http.MethodPost, "/videos/"+videoID+"/comments", tokenB, models.CommentRequest{Text: "nice video"})
	require.Equal(t, http.StatusCreated, code, body)
	commentID := body["comment"].(map[string]any)["id"].(string)

	code, _ = s.doJSON(http.MethodPut, "/videos/"+videoID+"/comments/"+commentID, tokenA, models.CommentRequest{Text: "hijack"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.doJSON(http.MethodPatch, "/videos/"+videoID+"/views", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["views"])

	code, body = s.doJSON(http.MethodGet, "/videos/"+videoID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["comment_items"], 1)

	assert.Len(t, s.list("/videos/search?q=VIDEO"), 1)
	assert.Len(t, s.list("/videos/"+videoID+"/comments"), 1)
	code, _ = s.doJSON(http.MethodGet, "/videos/search?q=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.doJSON(http.MethodPost, "/channels/"+channelID+"/subscribe", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["subscribes"])

	code, _ = s.doJSON(http.MethodDelete, "/channels/"+channelID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.doJSON(http.MethodDelete, "/channels/"+channelID, tokenA, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.doJSON(http.MethodGet, "/videos/"+videoID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.doJSON(http.MethodGet, "/channels/"+channelID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Zero(t, s.media.Len())

	code, body = s.doJSON(http.MethodGet, "/auth/me", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, idA, body["id"])
	assert.Empty(t, body["channels"])
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin("alice")

	code, body := s.doJSON(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "alice@x.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["message"])

	code, _ = s.doJSON(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "nobody@x.com", Password: "password123"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.doJSON(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.doJSON(http.MethodPost, "/videos/upload", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.doJSON(http.MethodGet, "/videos/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUploadWithoutChannel(t *testing.T) {
	s := newTestServer(t, nil)
	token, _ := s.registerAndLogin("alice")

	code, body := s.doMultipart(http.MethodPost, "/videos/upload", token,
		map[string]string{"title": "V"},
		part{"video", "v.mp4", mp4Bytes},
		part{"thumbnail", "t.png", pngBytes},
	)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "channel")
	assert.Zero(t, s.media.Len())
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	token, _ := s.registerAndLogin("alice")

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...)
	code, _ := s.doMultipart(http.MethodPost, "/channels", token,
		map[string]string{"channel_name": "C1", "description": "d"},
		part{"banner", "banner.png", big},
	)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := s.doJSON(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = s.doJSON(http.MethodGet, "/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not found - /missing", body["message"])

	s = newTestServer(t, map[string]Pinger{"redis": downPinger{}})
	code, body = s.doJSON(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}
