package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

// GetContactSetting is the public read: the newest active row, or an empty
// object when none is configured.
func GetContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var setting models.ContactSetting
		err := db.Where("is_active = ?", true).Order("created_at DESC").First(&setting).Error
		if err != nil {
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{}, "Contact settings fetched"))
			return
		}
		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, setting, "Contact settings fetched"))
	}
}

// ListContactSettings returns the full history, paginated.
func ListContactSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := utils.ParsePagination(c)

		var total int64
		if err := db.Model(&models.ContactSetting{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contact settings"})
			return
		}

		var items []models.ContactSetting
		if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contact settings"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"items":      items,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Contact settings fetched"))
	}
}

type contactSettingInput struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	MapURL  string `json:"map_url"`
}

// CreateContactSetting adds a setting; refuses a second active one.
func CreateContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input contactSettingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.ContactSetting
		if err := db.Where("is_active = ?", true).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An active contact setting already exists"})
			return
		}

		setting := models.ContactSetting{
			Email:    input.Email,
			Phone:    input.Phone,
			Address:  input.Address,
			MapURL:   input.MapURL,
			IsActive: true,
		}
		if err := db.Create(&setting).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact setting"})
			return
		}

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, setting, "Contact setting created"))
	}
}

func UpdateContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid setting ID required"})
			return
		}

		var setting models.ContactSetting
		if err := db.First(&setting, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact setting not found"})
			return
		}

		var input contactSettingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Email != "" {
			updates["email"] = input.Email
		}
		if input.Phone != "" {
			updates["phone"] = input.Phone
		}
		if input.Address != "" {
			updates["address"] = input.Address
		}
		if input.MapURL != "" {
			updates["map_url"] = input.MapURL
		}

		if len(updates) > 0 {
			if err := db.Model(&setting).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact setting"})
				return
			}
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, setting, "Contact setting updated"))
	}
}

// ToggleContactSetting flips the active flag.
func ToggleContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid setting ID required"})
			return
		}

		var setting models.ContactSetting
		if err := db.First(&setting, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact setting not found"})
			return
		}

		if err := db.Model(&setting).Update("is_active", !setting.IsActive).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle contact setting"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, setting, "Contact setting toggled"))
	}
}

func DeleteContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid setting ID required"})
			return
		}

		res := db.Delete(&models.ContactSetting{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact setting"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact setting not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Contact setting deleted"))
	}
}

// UpsertContactSetting is the legacy dashboard endpoint: update the newest
// active setting or create one when absent.
func UpsertContactSetting(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input contactSettingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var setting models.ContactSetting
		err := db.Where("is_active = ?", true).Order("created_at DESC").First(&setting).Error
		if err != nil {
			setting = models.ContactSetting{
				Email:    input.Email,
				Phone:    input.Phone,
				Address:  input.Address,
				MapURL:   input.MapURL,
				IsActive: true,
			}
			if err := db.Create(&setting).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contact setting"})
				return
			}
		} else {
			setting.Email = input.Email
			setting.Phone = input.Phone
			setting.Address = input.Address
			setting.MapURL = input.MapURL
			if err := db.Save(&setting).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contact setting"})
				return
			}
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, setting, "Contact setting saved"))
	}
}

// CreateMessage is the public contact-form submission endpoint.
func CreateMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name    string `json:"name" form:"name" binding:"required"`
			Email   string `json:"email" form:"email" binding:"required,email"`
			Phone   string `json:"phone" form:"phone"`
			Subject string `json:"subject" form:"subject"`
			Body    string `json:"body" form:"body" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		message := models.ContactMessage{
			Name:    input.Name,
			Email:   input.Email,
			Phone:   input.Phone,
			Subject: input.Subject,
			Body:    input.Body,
			Status:  models.MessageStatusNew,
		}
		if err := db.Create(&message).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
			return
		}

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, message, "Message submitted successfully"))
	}
}

// GetMessages lists contact messages with status filter and pagination.
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := utils.ParsePagination(c)

		query := db.Model(&models.ContactMessage{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			return
		}

		var messages []models.ContactMessage
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"messages":   messages,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Messages fetched"))
	}
}

func GetMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid message ID required"})
			return
		}

		var message models.ContactMessage
		if err := db.First(&message, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, message, "Message fetched"))
	}
}

// UpdateMessage edits subject/body/status.
func UpdateMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid message ID required"})
			return
		}

		var message models.ContactMessage
		if err := db.First(&message, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}

		var input struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
			Status  string `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Subject != "" {
			updates["subject"] = input.Subject
		}
		if input.Body != "" {
			updates["body"] = input.Body
		}
		if input.Status != "" {
			updates["status"] = input.Status
		}

		if len(updates) > 0 {
			if err := db.Model(&message).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
				return
			}
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, message, "Message updated"))
	}
}

func setMessageStatus(db *gorm.DB, c *gin.Context, status, okMessage string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid message ID required"})
		return
	}

	var message models.ContactMessage
	if err := db.First(&message, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	updates := map[string]interface{}{"status": status}
	if user, ok := middlewares.CurrentUser(c); ok {
		updates["handled_by"] = user.ID
	}

	if err := db.Model(&message).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		return
	}

	c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, message, okMessage))
}

func MarkMessageRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		setMessageStatus(db, c, models.MessageStatusRead, "Message marked as read")
	}
}

func ArchiveMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		setMessageStatus(db, c, models.MessageStatusArchived, "Message archived")
	}
}

func DeleteMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid message ID required"})
			return
		}

		res := db.Delete(&models.ContactMessage{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Message deleted"))
	}
}
