package handlers

import (
	"net/http"
	"time"

	"myblog/internal/db"
	"myblog/internal/forms"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	app *App
}

func NewBlogHandler(app *App) *BlogHandler {
	return &BlogHandler{app: app}
}

func (h *BlogHandler) List(c *gin.Context) {
	var posts []models.Post
	if err := db.DB.Order("created_at DESC").Limit(50).Find(&posts).Error; err != nil {
		h.app.Log.Error().Err(err).Msg("Failed to list posts")
		RenderError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}
	Render(c, http.StatusOK, "blog/list.html", gin.H{"Title": "Blog", "Posts": posts})
}

// Detail shows a post with its comments, rating form and a comment form
// pre-populated for returning visitors.
func (h *BlogHandler) Detail(c *gin.Context) {
	var post models.Post
	if err := db.DB.Preload("User").Where("slug = ?", c.Param("slug")).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	// Comments and keywords are shared by every visitor; a cache-bypass
	// marker (?t=) forces a fresh copy after a write.
	cacheKey := utils.ObjectKey(models.PostContentType, post.ID)
	shared, _ := utils.GetCache().Get(cacheKey).(gin.H)
	if shared == nil || c.Query("t") != "" {
		ctx := c.Request.Context()
		comments, err := h.app.Comments.Thread(ctx, models.PostContentType, post.ID)
		if err != nil {
			h.app.Log.Error().Err(err).Uint("post_id", post.ID).Msg("Failed to load comments")
			RenderError(c, http.StatusInternalServerError, "Failed to load comments")
			return
		}
		keywords, err := h.app.Keywords.Assigned(ctx, models.PostContentType, post.ID)
		if err != nil {
			h.app.Log.Error().Err(err).Uint("post_id", post.ID).Msg("Failed to load keywords")
			RenderError(c, http.StatusInternalServerError, "Failed to load keywords")
			return
		}
		shared = gin.H{"Comments": comments, "Keywords": keywords}
		utils.GetCache().Set(cacheKey, shared, 5*time.Minute)
	}

	cookie := func(name string) string {
		v, _ := c.Cookie(name)
		return v
	}
	initial := forms.InitialCommentValues(cookie, middleware.CurrentUser(c))

	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Title":         post.Title,
		"Post":          &post,
		"ContentType":   models.PostContentType,
		"Comments":      shared["Comments"],
		"Keywords":      shared["Keywords"],
		"CommentForm":   forms.NewCommentForm(&post, models.PostContentType, initial),
		"RatingChoices": h.app.Config.Ratings.Range,
	})
}
