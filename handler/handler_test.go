package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"Forge/config"
	"Forge/gateway"
	"Forge/gateway/gatewaytest"
	"Forge/models"
	"Forge/pkg/jwt"
	"Forge/service"
)

const testSecret = "handler-test-secret"

type nopStore struct{ keys []string }

func (s *nopStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	_, err := io.Copy(io.Discard, body)
	s.keys = append(s.keys, key)
	return err
}
func (s *nopStore) URL(key string) string { return "https://cdn.test/" + key }
func (s *nopStore) Bucket() string        { return "forge-test" }

type nopImages struct{}

func (nopImages) CreateImage(context.Context, *models.Image) error { return nil }
func (nopImages) ListByUser(context.Context, string, int) ([]*models.Image, error) {
	return nil, nil
}

type apiEnv struct {
	engine *gin.Engine
	fake   *gatewaytest.Fake
	store  *nopStore
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Jwt: &config.Jwt{Secret: testSecret}, Gateway: &config.Gateway{}}
	f := gatewaytest.New()
	store := &nopStore{}
	content := &service.ContentService{Gateway: f, Conf: cfg.Gateway}

	r := gin.New()
	api := r.Group("/api")
	(&ContentHandler{Config: cfg, ContentService: content}).RegisterRouter(api)
	(&CommentsHandler{ContentService: content}).RegisterRouter(api)
	(&SearchHandler{SearchService: &service.SearchService{Gateway: f, Conf: cfg.Gateway}}).RegisterRouter(api)
	(&ProfileHandler{Config: cfg, ProfileService: &service.ProfileService{Gateway: f, Conf: cfg.Gateway}}).RegisterRouter(api)
	(&UploadHandler{Config: cfg, OssService: &service.OssService{
		Store: store, Images: nopImages{}, Conf: &config.Upload{},
	}}).RegisterRouter(api)
	return &apiEnv{engine: r, fake: f, store: store}
}

func token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := jwt.GenerateToken([]byte(testSecret), uid, jwt.TypeAccess, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, uid string, body io.Reader, contentType string) (int, gjson.Result) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, uid))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w.Code, gjson.ParseBytes(w.Body.Bytes())
}

func (e *apiEnv) json(t *testing.T, method, path, uid, body string) (int, gjson.Result) {
	return e.do(t, method, path, uid, strings.NewReader(body), "application/json")
}

func TestContentCreateAndFeed(t *testing.T) {
	e := newAPI(t)

	status, res := e.json(t, http.MethodPost, "/api/v1/content/post", "", `{"title":"t","content":"c"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, int64(401), res.Get("code").Int())
	assert.Equal(t, 0, e.fake.CallCount(gatewaytest.OpInsert))

	status, res = e.json(t, http.MethodPost, "/api/v1/content/post", "ada", `{"title":" Hello ","content":"first post","category":"news"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	assert.Equal(t, "Hello", res.Get("data.title").String())
	assert.Equal(t, "ada", res.Get("data.owner_id").String())
	id := res.Get("data.id").String()
	require.NotEmpty(t, id)

	_, res = e.json(t, http.MethodPost, "/api/v1/content/post", "ada", `{"title":"second","content":"newer"}`)
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)

	_, res = e.do(t, http.MethodGet, "/api/v1/content/post?limit=1", "", nil, "")
	items := res.Get("data.items").Array()
	require.Len(t, items, 1)
	assert.Equal(t, "second", items[0].Get("title").String())

	_, res = e.do(t, http.MethodGet, "/api/v1/content/post?owner_id=bob", "", nil, "")
	assert.Empty(t, res.Get("data.items").Array())
}

func TestContentValidationAndKinds(t *testing.T) {
	e := newAPI(t)

	_, res := e.json(t, http.MethodPost, "/api/v1/content/post", "ada", `{"content":"no title"}`)
	assert.Equal(t, int64(422), res.Get("code").Int())

	_, res = e.json(t, http.MethodPost, "/api/v1/content/post", "ada", `{not json`)
	assert.Equal(t, int64(422), res.Get("code").Int())

	_, res = e.do(t, http.MethodGet, "/api/v1/content/videos", "", nil, "")
	assert.Equal(t, int64(422), res.Get("code").Int())

	assert.Equal(t, 0, e.fake.CallCount())
}

func TestContentDeleteIsOwnerScoped(t *testing.T) {
	e := newAPI(t)
	e.fake.Seed("shares", gateway.Row{"id": "s1", "user_id": "ada", "title": "mine", "content": "c"})

	_, res := e.do(t, http.MethodDelete, "/api/v1/content/share/s1", "mallory", nil, "")
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	assert.Equal(t, int64(0), res.Get("data.deleted").Int())
	assert.Len(t, e.fake.Rows("shares"), 1)

	_, res = e.do(t, http.MethodDelete, "/api/v1/content/share/s1", "ada", nil, "")
	assert.Equal(t, int64(1), res.Get("data.deleted").Int())
	assert.Empty(t, e.fake.Rows("shares"))
}

func TestCommentsReadRoutesByKind(t *testing.T) {
	e := newAPI(t)
	e.fake.Seed("build_comments",
		gateway.Row{"build_id": "b1", "user_id": "a", "content": "one"},
		gateway.Row{"build_id": "b1", "user_id": "b", "content": "two"},
	)
	e.fake.Seed("comments", gateway.Row{"post_id": "b1", "user_id": "c", "content": "post comment"})

	_, res := e.do(t, http.MethodGet, "/api/v1/comments/build/b1", "", nil, "")
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	assert.Equal(t, int64(2), res.Get("data.count").Int())
	assert.Equal(t, "one", res.Get("data.items.0.body").String())
	assert.Equal(t, "two", res.Get("data.items.1.body").String())
}

func TestProfileSavedRequiresAuth(t *testing.T) {
	e := newAPI(t)
	e.fake.Seed("posts", gateway.Row{"id": "p1", "user_id": "bob", "title": "kept", "content": "c"})
	e.fake.Seed("saved_items", gateway.Row{"post_id": "p1", "user_id": "ada", "post_type": "post"})

	status, _ := e.do(t, http.MethodGet, "/api/v1/profiles/me/saved", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 0, e.fake.CallCount())

	_, res := e.do(t, http.MethodGet, "/api/v1/profiles/me/saved", "ada", nil, "")
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	items := res.Get("data.items").Array()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Get("id").String())
	assert.Equal(t, "post", items[0].Get("kind").String())
	assert.True(t, items[0].Get("saved_at").Exists())
}

func TestSearchShortQuery(t *testing.T) {
	e := newAPI(t)
	e.fake.Seed("posts", gateway.Row{"title": "agents everywhere", "content": "x"})

	_, res := e.do(t, http.MethodGet, "/api/v1/search?q=a", "", nil, "")
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	assert.Empty(t, res.Get("data.posts").Array())
	assert.Equal(t, 0, e.fake.CallCount())

	_, res = e.do(t, http.MethodGet, "/api/v1/search?q=AGENT", "", nil, "")
	require.Len(t, res.Get("data.posts").Array(), 1)
	assert.Equal(t, "agents everywhere", res.Get("data.posts.0.title").String())
}

func TestUploadImage(t *testing.T) {
	e := newAPI(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "tiny.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	body := buf.Bytes()

	status, _ := e.do(t, http.MethodPost, "/api/v1/upload/image", "", bytes.NewReader(body), w.FormDataContentType())
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Empty(t, e.store.keys)

	_, res := e.do(t, http.MethodPost, "/api/v1/upload/image", "ada", bytes.NewReader(body), w.FormDataContentType())
	require.Equal(t, int64(0), res.Get("code").Int(), res.Raw)
	require.Len(t, e.store.keys, 1)
	assert.True(t, strings.HasPrefix(e.store.keys[0], "images/ada/"))
	assert.True(t, strings.HasSuffix(e.store.keys[0], ".png"))
	assert.Equal(t, "https://cdn.test/"+e.store.keys[0], res.Get("data.url").String())

	_, res = e.do(t, http.MethodPost, "/api/v1/upload/image", "ada", strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, int64(422), res.Get("code").Int())
}
