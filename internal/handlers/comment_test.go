package handlers_test

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"myblog/internal/config"
	"myblog/internal/models"
)

var commentRedirect = regexp.MustCompile(`^/blog/hello/\?t=\d+#comment-\d+$`)

func commentValues() url.Values {
	return url.Values{
		"content_type": {"blog.post"},
		"object_pk":    {"1"},
		"name":         {"Ann"},
		"email":        {"ann@example.com"},
		"url":          {"https://ann.example.com"},
		"comment":      {"Nice post"},
	}
}

func TestCommentRejectsMalformedEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	values := commentValues()
	values.Set("email", "not-an-email")

	w := env.browser().post("/comment/", values)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Enter a valid email address.") {
		t.Errorf("Expected the email error to be shown")
	}
	if n := env.count(&models.ThreadedComment{}); n != 0 {
		t.Errorf("Expected no comment stored, got %d", n)
	}
}

func TestCommentRejectsScriptURL(t *testing.T) {
	env := newTestEnv(t, nil)
	values := commentValues()
	values.Set("url", "javascript:alert(1)")

	w := env.browser().post("/comment/", values)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Enter a valid URL.") {
		t.Errorf("Expected the url error to be shown")
	}
	if n := env.count(&models.ThreadedComment{}); n != 0 {
		t.Errorf("Expected no comment stored, got %d", n)
	}
}

func TestCommentHeldForModerationIsHidden(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Comments.DefaultApproved = false })

	w := env.browser().post("/comment/", commentValues())
	if w.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d", w.Code)
	}
	var stored models.ThreadedComment
	if err := env.conn.First(&stored).Error; err != nil {
		t.Fatalf("Comment not stored: %v", err)
	}
	if stored.IsPublic {
		t.Errorf("Expected comment held for moderation")
	}
	if body := env.browser().get("/blog/hello/").Body.String(); strings.Contains(body, "Nice post") {
		t.Errorf("Held comment must not be listed")
	}
}

func TestCommentSetsCookiesAndPrepopulates(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser()

	w := b.post("/comment/", commentValues())
	if w.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); !commentRedirect.MatchString(loc) {
		t.Errorf("Unexpected redirect %q", loc)
	}

	first := map[string]string{}
	for _, field := range []string{"name", "email", "url"} {
		first[field] = b.cookie("myblog-comment-" + field)
	}
	want := map[string]string{"name": "Ann", "email": "ann@example.com", "url": "https://ann.example.com"}
	for k, v := range want {
		if first[k] != v {
			t.Errorf("Cookie %s = %q, want %q", k, first[k], v)
		}
	}

	page := b.get("/blog/hello/").Body.String()
	for _, v := range want {
		if !strings.Contains(page, `value="`+v+`"`) {
			t.Errorf("Comment form not pre-populated with %q", v)
		}
	}
	if !strings.Contains(page, "<p>Nice post</p>") {
		t.Errorf("Posted comment missing from the page")
	}

	// A second comment from the same browser round-trips the same identity.
	values := commentValues()
	values.Set("comment", "Another one")
	if w := b.post("/comment/", values); w.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d", w.Code)
	}
	for k, v := range first {
		if got := b.cookie("myblog-comment-" + k); got != v {
			t.Errorf("Cookie %s changed from %q to %q", k, v, got)
		}
	}
	if n := env.count(&models.ThreadedComment{}); n != 2 {
		t.Errorf("Expected 2 comments, got %d", n)
	}
}

func TestCommentFormPrefillsLoggedInUser(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createUser("reader", "secret", false)
	b := env.browser()
	b.login("reader", "secret", "/")

	page := b.get("/blog/hello/").Body.String()
	if !strings.Contains(page, `value="reader"`) || !strings.Contains(page, `value="reader@example.com"`) {
		t.Errorf("Expected the user's name and email in the comment form")
	}

	values := commentValues()
	values.Set("name", "Reader")
	if w := b.post("/comment/", values); w.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d", w.Code)
	}
	var c models.ThreadedComment
	env.conn.First(&c)
	if c.UserID == nil || c.ByAuthor {
		t.Errorf("Expected a comment linked to the user and not by the author, got %+v", c)
	}
}

func TestCommentUnresolvableTargetRedirectsHome(t *testing.T) {
	env := newTestEnv(t, nil)
	tests := []struct {
		name        string
		contentType string
		objectPK    string
	}{
		{"unknown model", "blog.nope", "1"},
		{"missing object", "blog.post", "999"},
		{"malformed pk", "blog.post", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := commentValues()
			values.Set("content_type", tt.contentType)
			values.Set("object_pk", tt.objectPK)
			w := env.browser().post("/comment/", values)
			if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
				t.Errorf("Expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
			}
		})
	}
	if n := env.count(&models.ThreadedComment{}); n != 0 {
		t.Errorf("Expected no comments, got %d", n)
	}
}

func TestCommentSpamIsDroppedSilently(t *testing.T) {
	env := newTestEnv(t, nil, spamVerdict(true))

	w := env.browser().post("/comment/", commentValues())
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/blog/hello/" {
		t.Errorf("Expected redirect to the post, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if n := env.count(&models.ThreadedComment{}); n != 0 {
		t.Errorf("Spam must not be stored, got %d", n)
	}
}

func TestCommentLoginRequiredReplaysOnce(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Comments.AccountRequired = true
	})
	reader := env.createUser("reader", "secret", false)
	b := env.browser()

	w := b.post("/comment/", commentValues())
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/accounts/login/?next=%2Fcomment%2F" {
		t.Fatalf("Expected login redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if n := env.count(&models.ThreadedComment{}); n != 0 {
		t.Fatalf("Nothing may be stored before login, got %d", n)
	}

	page := b.get("/accounts/login/?next=/comment/").Body.String()
	if !strings.Contains(page, "You must be logged in.") {
		t.Errorf("Expected the login-required message")
	}

	w = b.login("reader", "secret", "/comment/")
	if loc := w.Header().Get("Location"); loc != "/comment/" {
		t.Fatalf("Expected to return to /comment/, got %q", loc)
	}

	w = b.get("/comment/")
	if w.Code != http.StatusFound || !commentRedirect.MatchString(w.Header().Get("Location")) {
		t.Fatalf("Expected the parked comment to be posted, got %d %q", w.Code, w.Header().Get("Location"))
	}
	var c models.ThreadedComment
	if err := env.conn.First(&c).Error; err != nil {
		t.Fatalf("Expected a stored comment: %v", err)
	}
	if c.UserID == nil || *c.UserID != reader.ID || c.Comment != "Nice post" {
		t.Errorf("Unexpected replayed comment %+v", c)
	}

	// The parked data is consumed by the first replay.
	w = b.get("/comment/")
	if w.Header().Get("Location") != "/" {
		t.Errorf("Expected nothing left to replay, got %q", w.Header().Get("Location"))
	}
	if n := env.count(&models.ThreadedComment{}); n != 1 {
		t.Errorf("Expected exactly one comment, got %d", n)
	}
}
