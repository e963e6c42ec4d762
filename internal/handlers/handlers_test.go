package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"myblog/internal/config"
	"myblog/internal/contenttypes"
	"myblog/internal/db"
	"myblog/internal/handlers"
	"myblog/internal/models"
	"myblog/internal/router"
	"myblog/internal/services"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	engine *gin.Engine
	conn   *gorm.DB
	owner  *models.User
	post   *models.Post
}

type spamVerdict bool

func (v spamVerdict) IsSpam(context.Context, services.SpamCheck) (bool, error) {
	return bool(v), nil
}

func newTestEnv(t *testing.T, configure func(cfg *config.Config), filters ...services.SpamFilter) *testEnv {
	t.Helper()
	conn := db.OpenTest(t)

	cfg := &config.Config{
		Server:   config.ServerConfig{SiteURL: "http://example.com", SessionSecret: "test-secret"},
		Comments: config.CommentsConfig{DefaultApproved: true},
		Ratings:  config.RatingsConfig{Range: []int{1, 2, 3, 4, 5}},
		LoginURL: "/accounts/login/",
	}
	if configure != nil {
		configure(cfg)
	}

	registry := contenttypes.Default()
	signals := services.NewSignals()
	signals.Connect(services.NotifyOwner(conn, zerolog.Nop()))
	signals.Connect(services.InvalidateObjectCache)

	app := &handlers.App{
		Config:   cfg,
		Registry: registry,
		Comments: services.NewCommentService(conn, cfg, nil, signals, zerolog.Nop()),
		Ratings:  services.NewRatingService(conn, registry, zerolog.Nop()),
		Keywords: services.NewKeywordService(conn),
		Spam:     services.NewSpamFilters(zerolog.Nop(), filters...),
		Log:      zerolog.Nop(),
	}
	engine, err := router.New(app)
	if err != nil {
		t.Fatalf("router.New failed: %v", err)
	}

	env := &testEnv{t: t, engine: engine, conn: conn}
	env.owner = env.createUser("owner", "secret", true)
	env.post = &models.Post{UserID: env.owner.ID, Title: "Hello", Slug: "hello", Content: "Body"}
	if err := conn.Create(env.post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	utils.GetCache().Delete(utils.ObjectKey(models.PostContentType, env.post.ID))
	return env
}

func (e *testEnv) createUser(username, password string, staff bool) *models.User {
	e.t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		e.t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, Email: username + "@example.com", Password: hash, IsStaff: staff}
	if err := e.conn.Create(user).Error; err != nil {
		e.t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) count(model any) int64 {
	var n int64
	e.conn.Model(model).Count(&n)
	return n
}

// browser carries cookies from one request to the next.
type browser struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) browser() *browser {
	return &browser{env: e, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, target string, form url.Values, ajax bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	b.env.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil, false)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, form, false)
}

// cookie returns the unescaped value of a cookie the server set.
func (b *browser) cookie(name string) string {
	c, ok := b.cookies[name]
	if !ok {
		return ""
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value
	}
	return v
}

func (b *browser) login(username, password, next string) *httptest.ResponseRecorder {
	b.env.t.Helper()
	w := b.post("/accounts/login/", url.Values{"username": {username}, "password": {password}, "next": {next}})
	if w.Code != http.StatusFound {
		b.env.t.Fatalf("login as %s failed with %d", username, w.Code)
	}
	return w
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser()

	w := b.post("/accounts/login/", url.Values{"username": {"owner"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a bad password, got %d", w.Code)
	}

	w = b.login("owner@example.com", "secret", "//evil.example.com/")
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Unsafe next must fall back to /, got %q", loc)
	}

	w = b.get("/accounts/logout/")
	if w.Code != http.StatusFound {
		t.Errorf("Expected logout redirect, got %d", w.Code)
	}
	if w := b.get("/notifications"); w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/accounts/login/?next=") {
		t.Errorf("Expected login redirect after logout, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestBlogPages(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser()

	w := b.get("/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `href="/blog/hello/"`) {
		t.Errorf("Expected post list, got %d", w.Code)
	}

	w = b.get("/blog/hello/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected post detail, got %d", w.Code)
	}
	for _, want := range []string{`id="rating-1"`, `action="/comment/"`, `name="content_type" value="blog.post"`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("Detail page lacks %s", want)
		}
	}

	if w := b.get("/blog/missing/"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestNotificationsForPostOwner(t *testing.T) {
	env := newTestEnv(t, nil)

	anon := env.browser()
	anon.post("/comment/", commentValues())

	owner := env.browser()
	owner.login("owner", "secret", "/")
	w := owner.get("/notifications")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"reason":"Ann commented on Hello"`) {
		t.Errorf("Unexpected notifications %s", w.Body.String())
	}
}
