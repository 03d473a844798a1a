package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/config"
	"github.com/venuevibe/vibecheck/internal/utils"
)

// adminSubject is the sub claim of tokens issued by Login.
const adminSubject = "admin"

// AuthHandler issues admin tokens. There are no user accounts; the
// operator password is checked against ADMIN_PASSWORD_HASH.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

type loginReq struct {
	Password string `json:"password"`
}

type loginResp struct {
	Access utils.AccessToken `json:"access"`
}

// Login handles POST /api/auth/login. It answers 404 while admin login is
// not configured.
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.Cfg.AdminEnabled() || h.Cfg.AdminPasswordHash == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "admin login disabled"})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, adminSubject, utils.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, loginResp{Access: tok})
}
