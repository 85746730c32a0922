package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-console/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTTL          = time.Hour
	minPasswordLength = 6
)

// login answers with the enveloped {status, message, data: {token, user}} shape.
func (s *server) login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user User
	if err := s.db.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(s.opts.JWTSecret, user.ID, user.Email, user.Role, s.opts.TokenTTL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	s.record(&user, "LOGIN", "USER", fmt.Sprint(user.ID), fmt.Sprintf("%s signed in", user.Email))
	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Login successful",
		"data": gin.H{
			"token": token,
			"user":  user,
		},
	})
}

// issueReset stores a one-hour reset ticket and returns the link a mailer would send.
func (s *server) issueReset(user User, frontendURL string) string {
	token := uuid.NewString()
	s.resetMu.Lock()
	s.resets[token] = resetTicket{userID: user.ID, expires: s.opts.Now().Add(resetTTL)}
	s.resetMu.Unlock()

	link := strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + token
	utils.InfoLogger.WithField("email", user.Email).Infof("Password reset link: %s", link)
	return token
}

// forgotPassword always answers with the same plain-text sentence so the response does not tell
// whether the email is registered.
func (s *server) forgotPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required"`
		FrontendURL string `json:"frontendUrl"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user User
	if err := s.db.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error; err == nil {
		s.issueReset(user, input.FrontendURL)
	}
	c.String(http.StatusOK, "If the email is registered, a reset link has been sent.")
}

func (s *server) takeReset(token string) (resetTicket, bool) {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()
	t, ok := s.resets[token]
	if !ok {
		return resetTicket{}, false
	}
	delete(s.resets, token)
	if s.opts.Now().After(t.expires) {
		return resetTicket{}, false
	}
	return t, true
}

func (s *server) setPassword(userID uint, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&User{}).Where("id = ?", userID).Update("password", string(hashed)).Error
}

func (s *server) resetPassword(c *gin.Context) {
	var input struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(input.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("password must be at least %d characters", minPasswordLength)})
		return
	}

	ticket, ok := s.takeReset(input.Token)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Reset link is invalid or has expired"})
		return
	}
	if err := s.setPassword(ticket.userID, input.Password); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var user User
	if err := s.db.First(&user, ticket.userID).Error; err == nil {
		s.record(&user, "UPDATE", "USER", fmt.Sprint(user.ID), "Password reset")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (s *server) userCount(c *gin.Context) {
	var count int64
	if err := s.db.Model(&User{}).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userCount": count})
}

// bootstrapAdmin creates the first admin account with an unusable password and issues a reset
// link for it. It refuses once any user exists.
func (s *server) bootstrapAdmin(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		Name        string `json:"name" binding:"required"`
		FrontendURL string `json:"frontendUrl"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	if err := s.db.Model(&User{}).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "An admin account already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	admin := User{Name: input.Name, Email: strings.TrimSpace(input.Email), Password: string(hashed), Role: "admin"}
	if err := s.db.Create(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	s.issueReset(admin, input.FrontendURL)
	s.record(&admin, "CREATE", "USER", fmt.Sprint(admin.ID), "Initial admin account created")

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Admin account created. A link to set the password was sent to %s.", admin.Email),
	})
}

func (s *server) changePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user := s.actor(c)
	if user == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not found"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("current password is incorrect"))
		return
	}
	if len(input.NewPassword) < minPasswordLength {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("password must be at least %d characters", minPasswordLength))
		return
	}
	if err := s.setPassword(user.ID, input.NewPassword); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	s.record(user, "UPDATE", "USER", fmt.Sprint(user.ID), "Password changed")
	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}
