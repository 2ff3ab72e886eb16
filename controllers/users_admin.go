package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

// GetAllUsers lists users with search (name/username/email) and role filter.
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := utils.ParsePagination(c)

		query := db.Model(&models.User{})
		if q := c.Query("q"); q != "" {
			like := "%" + q + "%"
			query = query.Where("full_name LIKE ? OR user_name LIKE ? OR email LIKE ?", like, like, like)
		}
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", strings.ToUpper(role))
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}

		var users []models.User
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"users":      users,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Users fetched successfully"))
	}
}

// UpsertAdminProfile promotes a user to ADMIN/SUB_ADMIN and replaces their
// permission entries. Module and right names are stored uppercase.
func UpsertAdminProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid user ID required"})
			return
		}

		var input struct {
			Role        models.Role `json:"role" binding:"required"`
			IsActive    *bool       `json:"is_active"`
			Permissions []struct {
				Module string   `json:"module" binding:"required"`
				Rights []string `json:"rights" binding:"required"`
			} `json:"permissions"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Role != models.RoleAdmin && input.Role != models.RoleSubAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be ADMIN or SUB_ADMIN"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		isActive := true
		if input.IsActive != nil {
			isActive = *input.IsActive
		}

		var profile models.AdminProfile
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&user).Update("role", input.Role).Error; err != nil {
				return err
			}

			if err := tx.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
				profile = models.AdminProfile{UserID: user.ID, IsActive: isActive}
				if err := tx.Create(&profile).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Model(&profile).Update("is_active", isActive).Error; err != nil {
					return err
				}
				if err := tx.Where("admin_profile_id = ?", profile.ID).Delete(&models.Permission{}).Error; err != nil {
					return err
				}
			}

			for _, p := range input.Permissions {
				rights := make([]string, 0, len(p.Rights))
				for _, r := range p.Rights {
					rights = append(rights, strings.ToUpper(r))
				}
				perm := models.Permission{
					AdminProfileID: profile.ID,
					Module:         strings.ToUpper(p.Module),
					Rights:         rights,
				}
				if err := tx.Create(&perm).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save admin profile"})
			return
		}

		db.Preload("Permissions").First(&profile, profile.ID)
		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, profile, "Admin profile saved"))
	}
}

// GetAdminProfile returns a user's admin profile with permissions.
func GetAdminProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid user ID required"})
			return
		}

		var profile models.AdminProfile
		if err := db.Preload("Permissions").Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin profile not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, profile, "Admin profile fetched"))
	}
}
