// Package auth holds the credential checks and request guards of the API.
//
// Users authenticate with email and password; there are no sessions or
// tokens. Passwords are stored as bcrypt hashes:
//
//	hash, err := auth.HashPassword(plaintext, cfg.Auth.BcryptCost)
//	err = auth.CheckPassword(plaintext, hash) // ErrInvalidPassword on mismatch
//
// Service.Authenticate performs the full lookup-and-compare for the login
// endpoint. LoginLimiter throttles repeated failures per client IP and email:
//
//	limiter := auth.NewLoginLimiter(auth.LoginLimitConfig{MaxAttempts: 5})
//	defer limiter.Stop()
//	api.POST("/login", limiter.Middleware(), loginController.Login)
//
// # Configuration
//
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # failures before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m     # window for counting failures
//	AUTH_LOCKOUT_DURATION=30m      # lockout length
//	CORS_ALLOWED_ORIGINS=https://a.example,https://b.example
package auth
