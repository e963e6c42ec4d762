package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"myblog/internal/contenttypes"
	"myblog/internal/db"
	"myblog/internal/gatekeeper"
	"myblog/internal/middleware"
	"myblog/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginRequiredMessage = "You must be logged in. Please log in or sign up to complete this action."

// submission is a gated request ready for its feature handler.
type submission struct {
	data   url.Values
	target contenttypes.Object
	label  string
	user   *models.User
}

// gate applies the feature's login policy and resolves the target object.
// It returns false once it has written the response itself: the login
// redirect for a parked submission, or "/" for an unknown target.
func (a *App) gate(c *gin.Context, feature, returnPath string) (*submission, bool) {
	if err := c.Request.ParseForm(); err != nil {
		c.Redirect(http.StatusFound, "/")
		return nil, false
	}

	user := middleware.CurrentUser(c)
	policy := gatekeeper.Policy{
		Feature:    feature,
		Required:   a.Config.AccountRequired(feature),
		LoginURL:   a.Config.LoginURL,
		ReturnPath: returnPath,
	}
	decision, err := policy.Check(user != nil, c.Request.PostForm, gatekeeper.NewSessionMailbox(sessions.Default(c)))
	if err != nil {
		a.Log.Error().Err(err).Str("feature", feature).Msg("Gatekeeper failed")
		RenderError(c, http.StatusInternalServerError, "Could not process your submission.")
		return nil, false
	}

	switch decision.Outcome {
	case gatekeeper.Buffered:
		addFlash(c, loginRequiredMessage)
		c.Redirect(http.StatusFound, decision.RedirectURL)
		return nil, false
	case gatekeeper.Recovered:
		a.Log.Info().Str("feature", feature).Uint("user_id", user.ID).Msg("Replaying submission parked before login")
	}

	label := decision.Data.Get("content_type")
	target, err := a.Registry.Resolve(c.Request.Context(), db.DB, label, decision.Data.Get("object_pk"))
	if err != nil {
		if !errors.Is(err, contenttypes.ErrUnknownType) && !errors.Is(err, contenttypes.ErrNotFound) {
			a.Log.Error().Err(err).Str("feature", feature).Msg("Failed to resolve target")
		}
		c.Redirect(http.StatusFound, "/")
		return nil, false
	}

	t, _ := a.Registry.Lookup(label)
	return &submission{data: decision.Data, target: target, label: t.Label, user: user}, true
}
