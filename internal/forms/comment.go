package forms

import (
	"net/url"
	"strconv"
	"strings"

	"myblog/internal/contenttypes"
	"myblog/internal/models"
)

// Commenter details are remembered in these cookies for 90 days.
const (
	CommentCookiePrefix = "myblog-comment-"
	CookieMaxAge        = 90 * 24 * 60 * 60
)

// CommentCookieFields are the fields pre-populated from cookies.
var CommentCookieFields = []string{"name", "email", "url"}

type CommentForm struct {
	ContentType string `form:"content_type" binding:"required"`
	ObjectPK    string `form:"object_pk" binding:"required"`
	Name        string `form:"name" binding:"required,max=50"`
	Email       string `form:"email" binding:"required,email"`
	URL         string `form:"url" binding:"omitempty,http_url"`
	Comment     string `form:"comment" binding:"required,max=3000"`
	RepliedTo   string `form:"replied_to"`
	// Honeypot must stay empty; bots fill every input.
	Honeypot string `form:"honeypot"`

	Errors Errors `form:"-"`
}

func (f *CommentForm) clean() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.URL = strings.TrimSpace(f.URL)
	f.Comment = strings.TrimSpace(f.Comment)
	f.RepliedTo = strings.TrimSpace(f.RepliedTo)
}

// NewCommentForm is an unbound form for target with initial commenter values.
func NewCommentForm(target contenttypes.Object, label string, initial map[string]string) *CommentForm {
	return &CommentForm{
		ContentType: label,
		ObjectPK:    strconv.FormatUint(uint64(target.ContentID()), 10),
		Name:        initial["name"],
		Email:       initial["email"],
		URL:         initial["url"],
		Errors:      Errors{},
	}
}

// BindComment binds and validates a comment submission.
func BindComment(values url.Values) *CommentForm {
	f := &CommentForm{}
	f.Errors = bind(values, f)
	if f.Honeypot != "" {
		f.Errors.Add("honeypot", "If you enter anything in this field your comment will be treated as spam.")
	}
	return f
}

func (f *CommentForm) Valid() bool {
	return !f.Errors.Any()
}

// CookieValues returns the submitted commenter fields keyed by cookie field.
func (f *CommentForm) CookieValues() map[string]string {
	return map[string]string{"name": f.Name, "email": f.Email, "url": f.URL}
}

// InitialCommentValues pre-populates name/email/url from the commenter
// cookies, falling back to the logged-in user's name and email.
func InitialCommentValues(cookie func(name string) string, user *models.User) map[string]string {
	initial := make(map[string]string, len(CommentCookieFields))
	for _, field := range CommentCookieFields {
		value := cookie(CommentCookiePrefix + field)
		if value == "" && user != nil {
			switch field {
			case "name":
				value = user.DisplayName()
			case "email":
				value = user.Email
			}
		}
		initial[field] = value
	}
	return initial
}
