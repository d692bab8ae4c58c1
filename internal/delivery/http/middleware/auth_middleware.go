package middleware

import (
	"strings"

	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"
	"cliptube/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// AccessTokenCookie is the cookie holding the access token.
	AccessTokenCookie = "accessToken"

	// RefreshTokenCookie is the cookie holding the refresh token.
	RefreshTokenCookie = "refreshToken"

	// ContextKeyAccountID carries the authenticated account's UUID on echo.Context.
	ContextKeyAccountID = "accountID"

	// ContextKeyAccount carries the authenticated account's sanitized view on echo.Context.
	ContextKeyAccount = "account"
)

// AuthMiddleware guards routes behind a valid access token.
type AuthMiddleware struct {
	tokenSvc  service.TokenService
	accountUC usecase.AccountUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, accountUC usecase.AccountUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, accountUC: accountUC}
}

// Authenticate validates the access token and loads the account it belongs to.
// The token is read from the accessToken cookie first, then from the
// Authorization header as a Bearer token. Every failure mode collapses into
// the same unauthorized error so callers cannot probe for accounts.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return errors.Wrap(domainerrors.ErrUnauthorized, "missing access token")
		}

		claims, err := m.tokenSvc.VerifyAccessToken(tokenString)
		if err != nil {
			return errors.Wrap(domainerrors.ErrUnauthorized, "access token rejected")
		}

		// The token may outlive the account it was issued for.
		account, err := m.accountUC.GetAccount(c.Request().Context(), claims.AccountID)
		if err != nil {
			return errors.Wrap(domainerrors.ErrUnauthorized, "account for access token is gone")
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyAccount, account)

		return next(c)
	}
}

// extractAccessToken reads the token from the cookie, falling back to the
// Authorization header.
func extractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		// Not a Bearer scheme.
		return ""
	}

	return tokenString
}
