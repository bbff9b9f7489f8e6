package routes_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogly/config"
	"github.com/cppla/blogly/models"
	"github.com/cppla/blogly/routes"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/store/storetest"
	"github.com/cppla/blogly/utils"
)

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		GinMode:          "test",
		SecretKey:        "test-secret",
		RecentPostsLimit: 5,
		MetricsEnabled:   true,
	}
}

func newApp(t *testing.T, cfg config.AppConfig) (*client, *store.Store) {
	t.Helper()
	st := storetest.NewStore(t)
	r, err := routes.SetupRouter(cfg, st, utils.NewFlashStore(nil, time.Minute))
	require.NoError(t, err)
	return &client{t: t, handler: r, cookies: map[string]*http.Cookie{}}, st
}

func createUser(t *testing.T, st *store.Store, first, last string) *models.User {
	t.Helper()
	u := &models.User{FirstName: first, LastName: last}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func createTags(t *testing.T, st *store.Store, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, st.CreateTag(context.Background(), &models.Tag{Name: n}))
	}
}

func tagNamesOf(t *testing.T, st *store.Store, postID uint) []string {
	t.Helper()
	tags, err := st.TagsForPost(context.Background(), postID)
	require.NoError(t, err)
	names := []string{}
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func TestUsersPage(t *testing.T) {
	c, _ := newApp(t, testConfig())

	w := c.get("/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>All Users</h1>")
	assert.Contains(t, w.Body.String(), `action="/users/new"`)
}

func TestCreateUser_BlankImageGetsPlaceholder(t *testing.T) {
	c, st := newApp(t, testConfig())

	w := c.post("/users/new", url.Values{"first_name": {"Jane"}, "last_name": {"Smith"}, "image_url": {""}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))

	page := c.get("/users")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Jane Smith")
	assert.Contains(t, page.Body.String(), "Added Jane Smith.", "success notice is shown after the redirect")
	assert.Contains(t, page.Body.String(), `src="`+models.DefaultImageURL+`"`, "list shows each user's image")

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.DefaultImageURL, users[0].ImageURL)

	detail := c.get(fmt.Sprintf("/users/%d", users[0].ID))
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), models.DefaultImageURL)
}

func TestCreateUser_AcceptsAnyImageText(t *testing.T) {
	c, st := newApp(t, testConfig())

	w := c.post("/users/new", url.Values{"first_name": {"Jane"}, "last_name": {"Smith"}, "image_url": {"/static/jane.png"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "/static/jane.png", users[0].ImageURL)

	page := c.get("/users")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `src="/static/jane.png"`)
}

func TestCreateUser_ValidationFailure(t *testing.T) {
	c, st := newApp(t, testConfig())

	w := c.post("/users/new", url.Values{"first_name": {"   "}, "last_name": {strings.Repeat("x", 51)}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "First name is required")
	assert.Contains(t, w.Body.String(), "Last name must be at most 50 characters")

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUpdateUser(t *testing.T) {
	c, st := newApp(t, testConfig())
	u := createUser(t, st, "John", "Doe")

	form := c.get(fmt.Sprintf("/users/%d/edit", u.ID))
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `value="John"`)

	w := c.post(fmt.Sprintf("/users/%d/edit", u.ID), url.Values{
		"first_name": {"Johnny"},
		"last_name":  {"Doe"},
		"image_url":  {"https://example.com/me.png"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/users/%d", u.ID), w.Header().Get("Location"))

	got, err := st.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", got.FullName())
	assert.Equal(t, "https://example.com/me.png", got.ImageURL)
}

func TestNotFoundPages(t *testing.T) {
	c, _ := newApp(t, testConfig())

	for _, path := range []string{
		"/users/999", "/users/999/edit", "/users/abc", "/users/999/posts/new",
		"/posts/999", "/posts/999/edit",
		"/tags/999", "/tags/999/edit",
		"/no/such/page",
	} {
		w := c.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	for _, path := range []string{"/users/999/edit", "/users/999/delete", "/posts/999/edit", "/posts/999/delete", "/tags/999/edit"} {
		w := c.post(path, url.Values{"first_name": {"a"}, "last_name": {"b"}, "title": {"t"}, "content": {"c"}, "name": {"n"}})
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestDeleteMissingTag(t *testing.T) {
	c, st := newApp(t, testConfig())
	createTags(t, st, "fun")

	w := c.post("/tags/999/delete", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tags", w.Header().Get("Location"))

	page := c.get("/tags")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Tag not found")

	tags, err := st.ListTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTagLifecycle(t *testing.T) {
	c, st := newApp(t, testConfig())
	ctx := context.Background()

	w := c.post("/tags/new", url.Values{"name": {"fun"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tags", w.Header().Get("Location"))

	dup := c.post("/tags/new", url.Values{"name": {"fun"}})
	require.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Contains(t, dup.Body.String(), "already exists")

	blank := c.post("/tags/new", url.Values{"name": {" "}})
	require.Equal(t, http.StatusBadRequest, blank.Code)
	assert.Contains(t, blank.Body.String(), "Name is required")

	tags, err := st.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	fun := tags[0]

	createTags(t, st, "zope")
	clash := c.post(fmt.Sprintf("/tags/%d/edit", fun.ID), url.Values{"name": {"zope"}})
	assert.Equal(t, http.StatusBadRequest, clash.Code)

	renamed := c.post(fmt.Sprintf("/tags/%d/edit", fun.ID), url.Values{"name": {"funny"}})
	require.Equal(t, http.StatusFound, renamed.Code)
	got, err := st.GetTag(ctx, fun.ID)
	require.NoError(t, err)
	assert.Equal(t, "funny", got.Name)

	del := c.post(fmt.Sprintf("/tags/%d/delete", fun.ID), nil)
	require.Equal(t, http.StatusFound, del.Code)
	_, err = st.GetTag(ctx, fun.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostLifecycle(t *testing.T) {
	c, st := newApp(t, testConfig())
	ctx := context.Background()
	u := createUser(t, st, "Alice", "Johnson")
	createTags(t, st, "red", "green")

	form := c.get(fmt.Sprintf("/users/%d/posts/new", u.ID))
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `value="red"`)

	w := c.post(fmt.Sprintf("/users/%d/posts/new", u.ID), url.Values{
		"title":   {"First post"},
		"content": {"<b>bold</b><script>alert(1)</script>"},
		"tags":    {"red", "blue"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/users/%d", u.ID), w.Header().Get("Location"))

	userPage := c.get(fmt.Sprintf("/users/%d", u.ID))
	assert.Contains(t, userPage.Body.String(), "First post")
	assert.Contains(t, userPage.Body.String(), "Unknown tags skipped: blue")

	posts, err := st.PostsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	post := posts[0]
	assert.Equal(t, []string{"red"}, tagNamesOf(t, st, post.ID))

	detail := c.get(fmt.Sprintf("/posts/%d", post.ID))
	require.Equal(t, http.StatusOK, detail.Code)
	body := detail.Body.String()
	assert.Contains(t, body, "<b>bold</b>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "Alice Johnson")
	assert.Contains(t, body, post.FriendlyDate())

	home := c.get("/")
	require.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "First post")

	edit := c.post(fmt.Sprintf("/posts/%d/edit", post.ID), url.Values{
		"title":   {"Edited"},
		"content": {"new content"},
		"tags":    {"green"},
	})
	require.Equal(t, http.StatusFound, edit.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), edit.Header().Get("Location"))
	assert.Equal(t, []string{"green"}, tagNamesOf(t, st, post.ID))

	editForm := c.get(fmt.Sprintf("/posts/%d/edit", post.ID))
	require.Equal(t, http.StatusOK, editForm.Code)
	assert.Regexp(t, regexp.MustCompile(`value="green"\s+checked`), editForm.Body.String())

	invalid := c.post(fmt.Sprintf("/posts/%d/edit", post.ID), url.Values{"title": {""}, "content": {"x"}})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	del := c.post(fmt.Sprintf("/posts/%d/delete", post.ID), nil)
	require.Equal(t, http.StatusFound, del.Code)
	assert.Equal(t, fmt.Sprintf("/users/%d", u.ID), del.Header().Get("Location"))
	_, err = st.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	c, st := newApp(t, testConfig())
	ctx := context.Background()
	u := createUser(t, st, "Bob", "Brown")
	createTags(t, st, "red")
	_, err := st.CreatePost(ctx, &models.Post{Title: "t", Content: "c", UserID: u.ID}, []string{"red"})
	require.NoError(t, err)

	w := c.post(fmt.Sprintf("/users/%d/delete", u.ID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))

	_, err = st.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	posts, err := st.RecentPosts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	var links int64
	require.NoError(t, st.DB().Model(&models.PostTag{}).Count(&links).Error)
	assert.Zero(t, links)
}

func TestCSRFProtection(t *testing.T) {
	cfg := testConfig()
	cfg.CSRFEnabled = true
	c, st := newApp(t, cfg)
	values := url.Values{"first_name": {"Jane"}, "last_name": {"Smith"}}

	rejected := c.post("/users/new", values)
	assert.Equal(t, http.StatusForbidden, rejected.Code)

	form := c.get("/users/new")
	require.Equal(t, http.StatusOK, form.Code)
	m := regexp.MustCompile(`name="csrf_token" value="([^"]+)"`).FindStringSubmatch(form.Body.String())
	require.Len(t, m, 2, "form carries a csrf token")

	values.Set("csrf_token", m[1])
	accepted := c.post("/users/new", values)
	assert.Equal(t, http.StatusFound, accepted.Code)

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAmbientEndpoints(t *testing.T) {
	c, _ := newApp(t, testConfig())

	health := c.get("/health")
	require.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	css := c.get("/static/style.css")
	assert.Equal(t, http.StatusOK, css.Code)

	c.get("/users")
	m := c.get("/metrics")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "blogly_http_requests_total")
	assert.Contains(t, m.Body.String(), "blogly_store_operations_total")
}
