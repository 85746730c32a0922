package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/middlewares"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/store"
	"github.com/yeremiapane/restaurant-console/utils"
)

type AuthController struct {
	client      *services.Client
	registry    *store.Registry
	frontendURL string
}

func NewAuthController(client *services.Client, registry *store.Registry, frontendURL string) *AuthController {
	return &AuthController{client: client, registry: registry, frontendURL: frontendURL}
}

func (ac *AuthController) auth(c *gin.Context) *services.AuthService {
	return services.NewAuthService(sessionClient(c, ac.client))
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ac.auth(c).Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	utils.InfoLogger.WithField("user_id", res.User.ID).Info("staff signed in")
	utils.RespondJSON(c, http.StatusOK, "Login successful", res)
}

// Logout forgets the session locally. The remote API has no logout endpoint; the token is
// refused by this console until it expires and the session's reservation store is dropped.
func (ac *AuthController) Logout(c *gin.Context) {
	session := middlewares.SessionFrom(c)
	if session.Authenticated() {
		utils.RevokeToken(session.Token)
		ac.registry.Drop(session.Token)
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (ac *AuthController) BootstrapStatus(c *gin.Context) {
	needed, err := ac.auth(c).BootstrapNeeded(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bootstrap status", gin.H{"bootstrapNeeded": needed})
}

func (ac *AuthController) BootstrapAdmin(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	msg, err := ac.auth(c).BootstrapAdmin(c.Request.Context(), input.Email, input.Name, ac.frontendURL)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	msg, err := ac.auth(c).ForgotPassword(c.Request.Context(), input.Email, ac.frontendURL)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	msg, err := ac.auth(c).ResetPassword(c.Request.Context(), input.Token, input.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	msg, err := ac.auth(c).ChangePassword(c.Request.Context(), input.CurrentPassword, input.NewPassword)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, msg, nil)
}
