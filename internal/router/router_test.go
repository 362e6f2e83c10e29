package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/contentsearch"
	"github.com/avkrapivin/top-me-up-sub000/internal/db/dbtest"
	"github.com/avkrapivin/top-me-up-sub000/internal/handlers"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, category models.Category, query string) ([]contentsearch.Result, error) {
	if !category.Valid() {
		return nil, apperr.InvalidArgument("unknown category %q", category)
	}
	return []contentsearch.Result{{ExternalID: "1", Title: query, Category: category}}, nil
}

type testApp struct {
	t             *testing.T
	engine        *gin.Engine
	counters      *services.CounterService
	notifications *services.NotificationService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := dbtest.Open(t)
	log := zap.NewNop()

	userStore := store.NewUserStore(conn)
	listStore := store.NewListStore(conn)
	commentStore := store.NewCommentStore(conn)

	counters := services.NewCounterService(listStore, 10, log)
	notifications := services.NewNotificationService(store.NewNotificationStore(conn), log)
	t.Cleanup(func() {
		counters.Stop()
		notifications.Wait()
	})
	comments := services.NewCommentService(commentStore, userStore, counters, notifications, log)
	lists := services.NewListService(listStore, userStore)
	users := services.NewUserService(userStore)
	preview, err := services.NewPreviewRenderer()
	require.NoError(t, err)

	engine, err := New(Options{
		SessionSecret: "test-secret-test-secret-test-secret",
		Users:         userStore,
		Log:           log,
	}, Handlers{
		Auth:         handlers.NewAuthHandler(users, notifications, log),
		User:         handlers.NewUserHandler(users, log),
		List:         handlers.NewListHandler(lists, log),
		Comment:      handlers.NewCommentHandler(comments, log),
		Notification: handlers.NewNotificationHandler(notifications, log),
		Search:       handlers.NewSearchHandler(stubSearcher{}, log),
		Share:        handlers.NewShareHandler(lists, preview, "https://topmeup.test/", log),
		Health:       handlers.NewHealthHandler(conn),
	})
	require.NoError(t, err)

	return &testApp{t: t, engine: engine, counters: counters, notifications: notifications}
}

func (a *testApp) do(method, path string, body any, cookie string) *httptest.ResponseRecorder {
	a.t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// register signs a new user up and returns the session cookie.
func (a *testApp) register(email, name string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "secret1", "displayName": name,
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(a.t, cookies)
	return cookies[0].Name + "=" + cookies[0].Value
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Limit      int     `json:"limit"`
		Total      int64   `json:"total"`
		HasNext    bool    `json:"hasNext"`
		NextCursor *string `json:"nextCursor"`
	} `json:"pagination"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type commentJSON struct {
	ID           uint             `json:"_id"`
	Content      string           `json:"content"`
	IsDeleted    bool             `json:"isDeleted"`
	UserHasLiked bool             `json:"userHasLiked"`
	LikesCount   int              `json:"likesCount"`
	User         *models.Identity `json:"user"`
	Replies      []commentJSON    `json:"replies"`
}

func createList(t *testing.T, a *testApp, cookie string) uint {
	t.Helper()
	w := a.do(http.MethodPost, "/api/lists", map[string]any{
		"title":       "Best games",
		"description": "Ranked **carefully**",
		"category":    "games",
		"items": []map[string]any{
			{"externalId": "1", "title": "Half-Life 2", "year": 2004},
			{"externalId": "2", "title": "Portal", "year": 2007},
		},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var list struct {
		ID   uint   `json:"_id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	return list.ID
}

func TestCommentThreadOverHTTP(t *testing.T) {
	a := newTestApp(t)
	ann := a.register("ann@example.com", "Ann")
	bob := a.register("bob@example.com", "Bob")
	listID := createList(t, a, ann)
	base := "/api/lists/" + utils.FormatID(listID) + "/comments"

	w := a.do(http.MethodPost, base, map[string]any{"content": "first!"}, ann)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var root commentJSON
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &root))

	w = a.do(http.MethodPost, base, map[string]any{"content": "nice list", "parentCommentId": root.ID}, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.do(http.MethodPost, base, map[string]any{"content": "second root"}, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/comments/"+utils.FormatID(root.ID)+"/like", nil, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"likesCount":1,"userHasLiked":true}`, string(decode(t, w).Data))

	w = a.do(http.MethodGet, base+"?limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Limit)
	assert.Equal(t, int64(3), env.Pagination.Total)
	assert.True(t, env.Pagination.HasNext)
	require.NotNil(t, env.Pagination.NextCursor)

	var page []commentJSON
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, "second root", page[0].Content)
	assert.NotNil(t, page[0].Replies)
	assert.Empty(t, page[0].Replies)

	w = a.do(http.MethodGet, base+"?limit=1&cursor="+*env.Pagination.NextCursor, nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w)
	assert.False(t, env.Pagination.HasNext)
	assert.Nil(t, env.Pagination.NextCursor)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, root.ID, page[0].ID)
	assert.True(t, page[0].UserHasLiked)
	assert.Equal(t, 1, page[0].LikesCount)
	require.Len(t, page[0].Replies, 1)
	assert.Equal(t, "nice list", page[0].Replies[0].Content)
	require.NotNil(t, page[0].Replies[0].User)

	a.notifications.Wait()
	w = a.do(http.MethodGet, "/api/auth/me", nil, ann)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"unreadNotifications":1`)
}

func TestCommentTextRoundTrips(t *testing.T) {
	a := newTestApp(t)
	ann := a.register("ann@example.com", "Ann")
	base := "/api/lists/" + utils.FormatID(createList(t, a, ann)) + "/comments"

	texts := []string{"x<y and z>w", "&lt;3", "Tom & Jerry"}
	for _, text := range texts {
		w := a.do(http.MethodPost, base, map[string]any{"content": text}, ann)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := a.do(http.MethodGet, base+"?limit=", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, services.DefaultCommentLimit, env.Pagination.Limit)

	var page []commentJSON
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, len(texts))
	for i, node := range page {
		assert.Equal(t, texts[len(texts)-1-i], node.Content)
	}
}

func TestCommentThreadRejectsBadQueries(t *testing.T) {
	a := newTestApp(t)
	ann := a.register("ann@example.com", "Ann")
	base := "/api/lists/" + utils.FormatID(createList(t, a, ann)) + "/comments"

	for _, query := range []string{"?limit=0", "?limit=101", "?limit=ten", "?cursor=abc", "?cursor=-3"} {
		w := a.do(http.MethodGet, base+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		env := decode(t, w)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_ARGUMENT", env.Error.Code)
	}

	w := a.do(http.MethodGet, "/api/lists/999/comments", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)

	w = a.do(http.MethodGet, "/api/lists/abc/comments", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	a := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/lists"},
		{http.MethodPost, "/api/lists/1/comments"},
		{http.MethodPost, "/api/comments/1/like"},
		{http.MethodGet, "/api/notifications"},
	} {
		w := a.do(route.method, route.path, map[string]string{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "UNAUTHENTICATED", decode(t, w).Error.Code, route.path)
	}
}

func TestLoginAndLogout(t *testing.T) {
	a := newTestApp(t)
	a.register("ann@example.com", "Ann")

	w := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ann@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ann@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	cookie := w.Result().Cookies()[0]

	w = a.do(http.MethodGet, "/api/auth/me", nil, cookie.Name+"="+cookie.Value)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/auth/logout", nil, cookie.Name+"="+cookie.Value)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Less(t, cleared[0].MaxAge, 0)

	w = a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "not-an-email", "password": "secret1", "displayName": "X",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "email")
}

func TestSharePageAndPreview(t *testing.T) {
	a := newTestApp(t)
	ann := a.register("ann@example.com", "Ann")
	listID := createList(t, a, ann)

	w := a.do(http.MethodGet, "/api/lists/"+utils.FormatID(listID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Slug            string `json:"slug"`
		DescriptionHTML string `json:"descriptionHtml"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Contains(t, list.DescriptionHTML, "<strong>carefully</strong>")

	w = a.do(http.MethodGet, "/share/lists/"+list.Slug, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, `<meta property="og:title" content="Best games">`)
	assert.Contains(t, page, "https://topmeup.test/api/lists/"+utils.FormatID(listID)+"/preview.png")
	assert.Contains(t, page, "GAMES")
	assert.Contains(t, page, "Half-Life 2 (2004)")

	w = a.do(http.MethodGet, "/share/lists/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "list not found")

	w = a.do(http.MethodGet, "/api/lists/"+utils.FormatID(listID)+"/preview.png", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, services.PreviewWidth, img.Bounds().Dx())
}

func TestSearchAndHealth(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodGet, "/api/search/movies?q=matrix", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"matrix"`)

	w = a.do(http.MethodGet, "/api/search/books?q=dune", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}
