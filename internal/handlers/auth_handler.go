package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/denverparsonswork-debug/dockside-helper/internal/middleware"
	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

type AuthHandler struct {
	driverService services.DriverService
	authService   services.AuthService
	twoFactor     *services.TwoFactorService
}

func NewAuthHandler(driverService services.DriverService, authService services.AuthService, twoFactor *services.TwoFactorService) *AuthHandler {
	return &AuthHandler{driverService: driverService, authService: authService, twoFactor: twoFactor}
}

// @Summary      Вход: пароль + отправка кода
// @Description  Проверяет email и пароль, при успехе отправляет 6-значный код на почту
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      429    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Logger.Infof("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)

	driver, err := h.driverService.GetDriverByEmail(email)
	if err != nil {
		utils.Logger.Warnf("[auth][login] lookup failed email=%q: err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if driver == nil || !h.authService.CheckPassword(driver.PasswordHash, strings.TrimSpace(req.Password)) {
		utils.Logger.Infof("[auth][login] invalid credentials email=%q", email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// Пароль принят — дальше второй фактор.
	if err := h.twoFactor.RequestCode(email); err != nil {
		h.respondRequestCodeError(c, email, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// @Summary      Повторная отправка кода
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /login/resend [post]
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.twoFactor.RequestCode(req.Email); err != nil {
		h.respondRequestCodeError(c, req.Email, err)
		return
	}
	// Для неизвестного адреса ответ такой же: наружу существование
	// аккаунта не выдаём.
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// @Summary      Подтверждение кода и выдача токенов
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        verify  body      models.VerifyLoginRequest  true  "Email и код"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  map[string]string
// @Failure      429     {object}  map[string]string
// @Router       /login/verify [post]
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req models.VerifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver, err := h.twoFactor.VerifyCode(req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try later"})
		case errors.Is(err, services.ErrCodeInvalid):
			// Один ответ на все случаи: нет аккаунта, нет кода, код не тот.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		default:
			utils.Logger.Warnf("[auth][verify] failed email=%q: err=%v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	// Access JWT
	accessClaims := &middleware.Claims{
		DriverID: driver.ID,
		RoleID:   driver.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(middleware.JWTKey)
	if err != nil {
		utils.Logger.Warnf("[auth][verify] sign access token failed driver_id=%d: err=%v", driver.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	// Refresh (opaque) -> хранится в БД
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	rtExp := time.Now().Add(30 * 24 * time.Hour)
	if err := h.driverService.UpdateRefresh(driver.ID, rt, rtExp); err != nil {
		utils.Logger.Warnf("[auth][verify] store refresh token failed driver_id=%d: err=%v", driver.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	utils.Logger.Infof("[auth][verify] success driver_id=%d role=%d", driver.ID, driver.RoleID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"driver":  driver, // PasswordHash помечен json:"-", наружу не уйдет
		"tokens": gin.H{
			"access_token":  accessTokenString,
			"refresh_token": rt, // значение отдаём клиенту, но не логируем
		},
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	driver, err := h.driverService.GetByRefreshToken(old)
	if err != nil || driver == nil || driver.RefreshToken == nil || driver.RefreshExpiresAt == nil || driver.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*driver.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate refresh
	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	newExp := time.Now().Add(30 * 24 * time.Hour)
	rotated, err := h.driverService.RotateRefresh(old, newRT, newExp)
	if err != nil || rotated == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessClaims := &middleware.Claims{
		DriverID: rotated.ID,
		RoleID:   rotated.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(middleware.JWTKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessTokenString,
		"refresh_token": newRT, // возвращаем новый (ротация)
	})
}

func (h *AuthHandler) respondRequestCodeError(c *gin.Context, email string, err error) {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try later"})
	case errors.Is(err, services.ErrDispatchFailed):
		// Отличаем от "неверного кода": клиент может повторить отправку.
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send verification code"})
	default:
		utils.Logger.Warnf("[auth][request-code] failed email=%q: err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send verification code"})
	}
}
