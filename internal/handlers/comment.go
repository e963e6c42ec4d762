package handlers

import (
	"errors"
	"net/http"

	"myblog/internal/forms"
	"myblog/internal/services"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	app *App
}

func NewCommentHandler(app *App) *CommentHandler {
	return &CommentHandler{app: app}
}

// Post handles a comment submission and redirects back to the commented
// object.
func (h *CommentHandler) Post(c *gin.Context) {
	sub, ok := h.app.gate(c, "comment", "/comment/")
	if !ok {
		return
	}

	form := forms.BindComment(sub.data)
	if !form.Valid() {
		// Show errors with the stand-alone comment form.
		Render(c, http.StatusBadRequest, "generic/comments.html", gin.H{
			"Title":  "Post a comment",
			"Object": sub.target,
			"Form":   form,
		})
		return
	}

	objectURL := sub.target.AbsoluteURL()
	spam := h.app.Spam != nil && h.app.Spam.IsSpam(c.Request.Context(), services.SpamCheck{
		IP:          c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		Referrer:    c.Request.Referer(),
		Permalink:   h.app.Config.Server.SiteURL + objectURL,
		AuthorName:  form.Name,
		AuthorEmail: form.Email,
		AuthorURL:   form.URL,
		Content:     form.Comment,
	})
	if spam {
		c.Redirect(http.StatusFound, objectURL)
		return
	}

	comment, err := h.app.Comments.Save(c.Request.Context(), services.NewComment{
		Form:   form,
		Target: sub.target,
		Label:  sub.label,
		User:   sub.user,
		IP:     c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotificationFailed) {
			h.app.Log.Error().Err(err).Uint("comment_id", comment.ID).Msg("Comment saved but notification failed")
		} else {
			h.app.Log.Error().Err(err).Msg("Failed to save comment")
		}
		RenderError(c, http.StatusInternalServerError, "Your comment could not be processed.")
		return
	}

	// Store commenter's details in a cookie for 90 days.
	for field, value := range form.CookieValues() {
		setCookie(c, forms.CommentCookiePrefix+field, value, forms.CookieMaxAge)
	}
	c.Redirect(http.StatusFound, utils.AddCacheBypass(comment.AbsoluteURL(objectURL)))
}
