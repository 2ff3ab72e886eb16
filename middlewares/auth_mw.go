package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

const (
	ContextUser         = "currentUser"
	ContextAdminProfile = "adminProfile"
)

// CurrentUser returns the identity attached by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// AdminProfileFromContext returns the profile attached by RequireAdminAccess.
func AdminProfileFromContext(c *gin.Context) (*models.AdminProfile, bool) {
	v, ok := c.Get(ContextAdminProfile)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*models.AdminProfile)
	return profile, ok
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(utils.AccessCookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// Authenticate validates the access token and attaches the user to the
// context. An expired access token triggers exactly one refresh attempt: the
// refresh cookie must verify and match the token stored on the user row, in
// which case a fresh access token is set on the response and the request
// proceeds. Every other outcome is a terminal 401.
func Authenticate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No access token provided"})
			return
		}

		claims, err := utils.ValidateAccessToken(tokenStr)
		if err == nil {
			var user models.User
			if err := db.First(&user, claims.UserID).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found for this token"})
				return
			}
			c.Set(ContextUser, &user)
			c.Next()
			return
		}

		if !errors.Is(err, utils.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			return
		}

		// Access token expired: try the refresh cookie.
		refreshToken, cookieErr := c.Cookie(utils.RefreshCookieName)
		if cookieErr != nil || refreshToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not provided"})
			return
		}

		refreshClaims, err := utils.ValidateRefreshToken(refreshToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}

		var user models.User
		if err := db.First(&user, refreshClaims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found for this token"})
			return
		}

		// A token that no longer matches the stored value was superseded by a
		// later login or refresh.
		if user.RefreshToken != refreshToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}

		newAccessToken, err := utils.CreateAccessToken(user.ID, user.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Failed to refresh access token"})
			return
		}
		utils.SetAccessCookie(c, newAccessToken)

		c.Set(ContextUser, &user)
		c.Next()
	}
}

// AuthorizeRoles allows the request through only when the authenticated
// user's role is in the allow-set. Must run after Authenticate.
func AuthorizeRoles(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// RequireAdminAccess gates the admin surface: customers are always denied,
// SUPER_ADMIN always passes, ADMIN/SUB_ADMIN need an active admin profile.
// The resolved profile is attached to the context for RequirePermission.
func RequireAdminAccess(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if user.Role == models.RoleCustomer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Customers cannot access admin dashboard"})
			return
		}

		if user.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		var profile models.AdminProfile
		err := db.Preload("Permissions").Where("user_id = ?", user.ID).First(&profile).Error
		if err != nil || !profile.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Your admin account is inactive or not configured"})
			return
		}

		c.Set(ContextAdminProfile, &profile)
		c.Next()
	}
}

// RequirePermission checks a module/right pair against the admin profile,
// case-insensitively. SUPER_ADMIN bypasses. Pass an empty right for the
// default "VIEW".
func RequirePermission(db *gorm.DB, module, right string) gin.HandlerFunc {
	if right == "" {
		right = "VIEW"
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if user.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		profile, ok := AdminProfileFromContext(c)
		if !ok {
			var loaded models.AdminProfile
			if err := db.Preload("Permissions").Where("user_id = ?", user.ID).First(&loaded).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin profile not found"})
				return
			}
			if !loaded.IsActive {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Your admin account is inactive"})
				return
			}
			profile = &loaded
		}

		if !profile.HasPermission(module, right) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("Missing permission %s:%s", module, right),
			})
			return
		}

		c.Next()
	}
}
