package handlers

import (
	"net/http"

	"myblog/internal/db"
	"myblog/internal/models"
	"myblog/internal/services"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
)

// KeywordHandler backs the keywords field of the admin forms.
type KeywordHandler struct {
	app *App
}

func NewKeywordHandler(app *App) *KeywordHandler {
	return &KeywordHandler{app: app}
}

// Submit creates any new keywords typed into the keywords field and returns
// "ids|titles" for the form to save with.
func (h *KeywordHandler) Submit(c *gin.Context) {
	ids, titles, err := h.app.Keywords.Resolve(c.Request.Context(), c.PostForm("text_keywords"))
	if err != nil {
		h.app.Log.Error().Err(err).Msg("Failed to resolve keywords")
		c.String(http.StatusInternalServerError, "Failed to save keywords")
		return
	}
	c.String(http.StatusOK, services.EncodeKeywords(ids, titles))
}

// Choices lists every keyword, flagging those assigned to the object named by
// ?content_type=&object_pk=.
func (h *KeywordHandler) Choices(c *gin.Context) {
	label := c.Query("content_type")
	pk, _ := utils.StringToUint(c.Query("object_pk"))
	if t, ok := h.app.Registry.Lookup(label); ok {
		label = t.Label
	}

	choices, err := h.app.Keywords.Choices(c.Request.Context(), label, pk)
	if err != nil {
		h.app.Log.Error().Err(err).Msg("Failed to list keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list keywords"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": choices})
}

// AssignPost replaces the keywords of a blog post with the posted id list.
func (h *KeywordHandler) AssignPost(c *gin.Context) {
	pk, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.app.Registry.Resolve(ctx, db.DB, models.PostContentType, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.app.Keywords.Assign(ctx, models.PostContentType, pk, c.PostForm("keywords")); err != nil {
		h.app.Log.Error().Err(err).Uint("post_id", pk).Msg("Failed to assign keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign keywords"})
		return
	}
	utils.GetCache().Delete(utils.ObjectKey(models.PostContentType, pk))

	keywords, err := h.app.Keywords.Assigned(ctx, models.PostContentType, pk)
	if err != nil {
		h.app.Log.Error().Err(err).Uint("post_id", pk).Msg("Failed to load keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load keywords"})
		return
	}
	ids, titles := services.SplitAssigned(keywords)
	c.JSON(http.StatusOK, gin.H{"ids": ids, "titles": titles})
}
