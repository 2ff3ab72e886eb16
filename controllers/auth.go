package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/services"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

// Register handles new customer registration and mails a verification link.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserName    string `json:"user_name" binding:"required,min=3"`
			FullName    string `json:"full_name" binding:"required"`
			Email       string `json:"email" binding:"required,email"`
			Password    string `json:"password" binding:"required,min=6"`
			PhoneNumber string `json:"phone_number"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		input.UserName = strings.ToLower(strings.TrimSpace(input.UserName))
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))

		var existing models.User
		if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		if err := db.Where("user_name = ?", input.UserName).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}

		hashedPassword, err := utils.HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		verifyToken, verifyHash, verifyExpiry, err := utils.GenerateTemporaryToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
			return
		}

		user := models.User{
			UserName:                input.UserName,
			FullName:                input.FullName,
			Email:                   input.Email,
			PhoneNumber:             input.PhoneNumber,
			Password:                hashedPassword,
			Role:                    models.RoleCustomer,
			EmailVerificationToken:  verifyHash,
			EmailVerificationExpiry: &verifyExpiry,
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while registering the user"})
			return
		}

		services.SendVerificationEmail(user.Email, verifyToken)

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, user, "User registered successfully"))
	}
}

// VerifyEmail consumes the mailed verification token.
func VerifyEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required to verify email"})
			return
		}

		// The stored form is a bcrypt hash, so candidates with a live token
		// are compared one by one.
		var candidates []models.User
		db.Where("email_verification_token <> '' AND email_verification_expiry > ?", time.Now()).
			Find(&candidates)

		for i := range candidates {
			user := &candidates[i]
			if !utils.CheckTemporaryToken(token, user.EmailVerificationToken) {
				continue
			}

			updates := map[string]interface{}{
				"is_email_verified":         true,
				"email_verification_token":  "",
				"email_verification_expiry": nil,
			}
			if err := db.Model(user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
				return
			}

			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "User verified successfully"))
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	}
}

// ResendVerification issues a fresh verification token for the current user.
func ResendVerification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)

		if user.IsEmailVerified {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already verified"})
			return
		}

		token, hash, expiry, err := utils.GenerateTemporaryToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
			return
		}

		updates := map[string]interface{}{
			"email_verification_token":  hash,
			"email_verification_expiry": expiry,
		}
		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save verification token"})
			return
		}

		services.SendVerificationEmail(user.Email, token)

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Mail has been sent to your mail ID"))
	}
}

// Login checks credentials and issues the access/refresh cookie pair.
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if !utils.CheckPasswordHash(input.Password, user.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		accessToken, refreshToken, err := utils.GenerateTokenPair(db, &user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while generating tokens"})
			return
		}

		utils.SetAccessCookie(c, accessToken)
		utils.SetRefreshCookie(c, refreshToken)

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}, "User logged in successfully"))
	}
}

// Logout unsets the stored refresh token and clears both cookies.
func Logout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)

		if err := db.Model(user).Update("refresh_token", "").Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}

		utils.ClearAuthCookies(c)

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "User logged out successfully"))
	}
}

// RefreshToken rotates the token pair from the refresh cookie (or body).
func RefreshToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		incoming, err := c.Cookie(utils.RefreshCookieName)
		if err != nil || incoming == "" {
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token required"})
				return
			}
			incoming = body.RefreshToken
		}

		claims, err := utils.ValidateRefreshToken(incoming)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		if user.RefreshToken != incoming {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is expired or used"})
			return
		}

		accessToken, refreshToken, err := utils.GenerateTokenPair(db, &user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while generating tokens"})
			return
		}

		utils.SetAccessCookie(c, accessToken)
		utils.SetRefreshCookie(c, refreshToken)

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}, "Access token refreshed"))
	}
}

// ForgotPassword mails a reset link. The response never reveals whether the
// account exists.
func ForgotPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		const message = "Password reset mail has been sent on your mail id"

		var user models.User
		if err := db.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, message))
			return
		}

		token, hash, expiry, err := utils.GenerateTemporaryToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
			return
		}

		updates := map[string]interface{}{
			"forgot_password_token":  hash,
			"forgot_password_expiry": expiry,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save reset token"})
			return
		}

		services.SendPasswordResetEmail(user.Email, token)

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, message))
	}
}

// ResetPassword consumes a reset token and stores the new password hash.
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		var input struct {
			NewPassword string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var candidates []models.User
		db.Where("forgot_password_token <> '' AND forgot_password_expiry > ?", time.Now()).
			Find(&candidates)

		for i := range candidates {
			user := &candidates[i]
			if !utils.CheckTemporaryToken(token, user.ForgotPasswordToken) {
				continue
			}

			hashed, err := utils.HashPassword(input.NewPassword)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}

			updates := map[string]interface{}{
				"password":               hashed,
				"forgot_password_token":  "",
				"forgot_password_expiry": nil,
			}
			if err := db.Model(user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
				return
			}

			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Password reset successfully"))
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is invalid or expired"})
	}
}

// ChangePassword verifies the old password before replacing it.
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			OldPassword string `json:"old_password" binding:"required"`
			NewPassword string `json:"new_password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		if !utils.CheckPasswordHash(input.OldPassword, user.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid old password"})
			return
		}

		hashed, err := utils.HashPassword(input.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		if err := db.Model(user).Update("password", hashed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Password changed successfully"))
	}
}

// GetCurrentUser returns the authenticated user.
func GetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)
		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, user, "Current user fetched successfully"))
	}
}

// UpdateAccount patches the mutable profile fields.
func UpdateAccount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FullName    string `json:"full_name"`
			Email       string `json:"email"`
			PhoneNumber string `json:"phone_number"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.FullName == "" && input.Email == "" && input.PhoneNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required to update"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		updates := map[string]interface{}{}
		if input.FullName != "" {
			updates["full_name"] = input.FullName
		}
		if input.Email != "" {
			email := strings.ToLower(input.Email)
			var taken models.User
			if err := db.Where("email = ? AND id <> ?", email, user.ID).First(&taken).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
				return
			}
			updates["email"] = email
		}
		if input.PhoneNumber != "" {
			updates["phone_number"] = input.PhoneNumber
		}

		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account details"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, user, "Account details updated successfully"))
	}
}

// UpdateAvatar stores a new avatar image for the current user.
func UpdateAvatar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is missing"})
			return
		}

		url, err := utils.SaveUploadedImage(c, file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, _ := middlewares.CurrentUser(c)
		if err := db.Model(user).Update("avatar", url).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, user, "Avatar updated successfully"))
	}
}
