// Package handler contains the HTTP handlers for the application.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cliptube/config"
	"cliptube/internal/delivery/http/middleware"
	"cliptube/internal/delivery/http/response"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account and session handlers.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	sessionUC usecase.SessionUsecase
	tokenSvc  service.TokenService
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(
	accountUC usecase.AccountUsecase,
	sessionUC usecase.SessionUsecase,
	tokenSvc service.TokenService,
	cfg *config.Config,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		sessionUC: sessionUC,
		tokenSvc:  tokenSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

type registerRequest struct {
	Username string `form:"username" validate:"required,min=3,max=32"`
	Email    string `form:"email" validate:"required,email"`
	FullName string `form:"fullName" validate:"required,max=128"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName" validate:"omitempty,max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Register handles the multipart registration request. The avatar file is
// mandatory, the cover image is optional.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	avatar, closeAvatar, err := formMediaUpload(c, "avatar")
	if err != nil {
		return errors.Wrap(domainerrors.ErrMediaFileMissing, "avatar file is required")
	}
	defer closeAvatar()

	input := &usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Avatar:   avatar,
	}

	cover, closeCover, err := formMediaUpload(c, "coverImage")
	if err == nil {
		defer closeCover()
		input.CoverImage = cover
	}

	output, err := h.accountUC.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.Account, "Account registered successfully")
}

// Login handles the login request and sets the session cookies.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.sessionUC.Login(c.Request().Context(), &usecase.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, &output.Tokens)

	return response.Success(c, http.StatusOK, sessionPayload(output), "Login successful")
}

// RefreshToken rotates the refresh token. The presented token is read from
// the refreshToken cookie first, then from the request body.
func (h *AccountHandler) RefreshToken(c echo.Context) error {
	presented := ""
	if cookie, err := c.Cookie(middleware.RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	output, err := h.sessionUC.Refresh(c.Request().Context(), presented)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, &output.Tokens)

	return response.Success(c, http.StatusOK, sessionPayload(output), "Token refreshed successfully")
}

// Logout revokes the live session and clears the session cookies.
func (h *AccountHandler) Logout(c echo.Context) error {
	accountID, err := authenticatedAccountID(c)
	if err != nil {
		return err
	}

	if err := h.sessionUC.Logout(c.Request().Context(), accountID); err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookies(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// ChangePassword verifies the old password and stores the new one. The live
// session is revoked, so the client has to log in again.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	accountID, err := authenticatedAccountID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password change input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err = h.sessionUC.ChangePassword(c.Request().Context(), accountID, &usecase.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookies(c)

	return response.Success(c, http.StatusOK, nil, "Password changed successfully")
}

// Me returns the authenticated account's sanitized view.
func (h *AccountHandler) Me(c echo.Context) error {
	account := c.Get(middleware.ContextKeyAccount)
	if account == nil {
		return errors.Wrap(domainerrors.ErrUnauthorized, "no authenticated account on request")
	}

	return response.Success(c, http.StatusOK, account, "Account retrieved successfully")
}

// UpdateDetails patches the authenticated account's full name and/or email.
func (h *AccountHandler) UpdateDetails(c echo.Context) error {
	accountID, err := authenticatedAccountID(c)
	if err != nil {
		return err
	}

	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account details input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	view, err := h.accountUC.UpdateDetails(c.Request().Context(), accountID, &usecase.UpdateDetailsInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Account details updated successfully")
}

// UpdateAvatar replaces the authenticated account's avatar.
func (h *AccountHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", h.accountUC.UpdateAvatar)
}

// UpdateCoverImage replaces the authenticated account's cover image.
func (h *AccountHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", h.accountUC.UpdateCoverImage)
}

// ProfileQR renders a QR code PNG linking to the account's public profile.
func (h *AccountHandler) ProfileQR(c echo.Context) error {
	accountID, err := authenticatedAccountID(c)
	if err != nil {
		return err
	}

	png, err := h.accountUC.ProfileQR(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

type updateImageFunc func(ctx context.Context, id uuid.UUID, upload *service.MediaUpload) (*entity.AccountView, error)

func (h *AccountHandler) updateImage(c echo.Context, field string, update updateImageFunc) error {
	accountID, err := authenticatedAccountID(c)
	if err != nil {
		return err
	}

	upload, closeUpload, err := formMediaUpload(c, field)
	if err != nil {
		return errors.Wrap(domainerrors.ErrMediaFileMissing, field+" file is required")
	}
	defer closeUpload()

	view, err := update(c.Request().Context(), accountID, upload)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Account image updated successfully")
}

// sessionPayload shapes the login/refresh response body.
func sessionPayload(output *usecase.SessionOutput) map[string]any {
	return map[string]any{
		"accessToken":  output.Tokens.AccessToken,
		"refreshToken": output.Tokens.RefreshToken,
		"account":      output.Account,
	}
}

// authenticatedAccountID reads the account ID the auth middleware stored.
func authenticatedAccountID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(middleware.ContextKeyAccountID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.Wrap(domainerrors.ErrUnauthorized, "no authenticated account on request")
	}

	return id, nil
}

// formMediaUpload opens a multipart file field as a media upload. The returned
// close function must be called after the upload has been consumed.
func formMediaUpload(c echo.Context, field string) (*service.MediaUpload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "form file %q", field)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open form file %q", field)
	}

	upload := &service.MediaUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:        fileHeader.Size,
		Content:     file,
	}

	return upload, func() { _ = file.Close() }, nil
}

// setSessionCookies stores the freshly issued token pair as httpOnly cookies.
func (h *AccountHandler) setSessionCookies(c echo.Context, tokens *usecase.TokenPair) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, tokens.AccessToken, h.tokenSvc.AccessTokenDuration()))
	c.SetCookie(h.sessionCookie(middleware.RefreshTokenCookie, tokens.RefreshToken, h.tokenSvc.RefreshTokenDuration()))
}

// clearSessionCookies expires both session cookies.
func (h *AccountHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, "", -time.Hour))
	c.SetCookie(h.sessionCookie(middleware.RefreshTokenCookie, "", -time.Hour))
}

func (h *AccountHandler) sessionCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.HTTP.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
