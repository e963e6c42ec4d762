package handlers

import (
	"net/http"
	"strings"

	"myblog/internal/db"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	app *App
}

func NewAuthHandler(app *App) *AuthHandler {
	return &AuthHandler{app: app}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title": "Log in",
		"Next":  c.Query("next"),
	})
}

// Login accepts a username or e-mail address. After logging in the visitor
// is sent to ?next=, which for a gated submission replays the parked data.
func (h *AuthHandler) Login(c *gin.Context) {
	login := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	var user models.User
	if err := db.DB.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username or password", "Next": next, "Username": login})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username or password", "Next": next, "Username": login})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.Save()

	h.app.Log.Info().Uint("user_id", user.ID).Msg("User logged in")
	c.Redirect(http.StatusFound, utils.SafeRedirect(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
