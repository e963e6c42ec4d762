package handlers

import (
	"fmt"
	"net/http"

	"myblog/internal/forms"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	app *App
}

func NewRatingHandler(app *App) *RatingHandler {
	return &RatingHandler{app: app}
}

// Post records a rating. Asynchronous requests get the new aggregates as
// JSON; everyone else is sent back to the object's rating anchor.
func (h *RatingHandler) Post(c *gin.Context) {
	sub, ok := h.app.gate(c, "rating", "/rating/")
	if !ok {
		return
	}

	redirectURL := utils.AddCacheBypass(utils.StripFragment(sub.target.AbsoluteURL())) +
		fmt.Sprintf("#rating-%d", sub.target.ContentID())

	history, _ := c.Cookie(forms.RatingCookie)
	form := forms.BindRating(sub.data, sub.label, sub.target, h.app.Config.Ratings.Range, history, sub.user != nil)
	if !form.Valid() {
		if isAjax(c) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": form.Errors})
			return
		}
		for _, msgs := range form.Errors {
			for _, msg := range msgs {
				addFlash(c, msg)
			}
		}
		c.Redirect(http.StatusFound, redirectURL)
		return
	}

	_, summary, err := h.app.Ratings.Save(c.Request.Context(), sub.label, sub.target, form.Value, sub.user)
	if err != nil {
		h.app.Log.Error().Err(err).Str("content_type", sub.label).Uint("object_pk", sub.target.ContentID()).Msg("Failed to save rating")
		if isAjax(c) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Your rating could not be saved.")
		return
	}

	setCookie(c, forms.RatingCookie, form.History(), forms.CookieMaxAge)
	if isAjax(c) {
		c.JSON(http.StatusOK, summary)
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}
