package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid username or password")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrGoogleAccountNotLinked     = errors.New("no account is registered for this google email")
	ErrGoogleEmailNotVerified     = errors.New("google email is not verified")
	ErrGoogleLoginDisabled        = errors.New("google login is not configured")
	ErrGoogleAccessDeniedByUser   = errors.New("google access denied by user")
	ErrStateMismatch              = errors.New("oauth state mismatch")
)
