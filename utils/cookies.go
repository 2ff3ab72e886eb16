package utils

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// cookieDomain is empty in development (host-only cookie) and the configured
// parent domain in production so subdomains share the session.
func cookieDomain() string {
	if os.Getenv("APP_ENV") == "production" {
		return os.Getenv("COOKIE_DOMAIN")
	}
	return ""
}

func isProduction() bool {
	return os.Getenv("APP_ENV") == "production"
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", cookieDomain(), isProduction(), true)
}

func SetAccessCookie(c *gin.Context, token string) {
	setCookie(c, AccessCookieName, token, int(AccessTokenTTL.Seconds()))
}

func SetRefreshCookie(c *gin.Context, token string) {
	setCookie(c, RefreshCookieName, token, int(RefreshTokenTTL.Seconds()))
}

func ClearAuthCookies(c *gin.Context) {
	setCookie(c, AccessCookieName, "", -1)
	setCookie(c, RefreshCookieName, "", -1)
}
