package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

// GetStories lists stories with pagination and search.
func GetStories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := utils.ParsePagination(c)

		query := db.Model(&models.Story{})
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			query = query.Where("title LIKE ? OR content LIKE ?", like, like)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
			return
		}

		var stories []models.Story
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&stories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"stories":    stories,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Stories fetched"))
	}
}

func GetStoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Story ID required"})
			return
		}

		var story models.Story
		if err := db.First(&story, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, story, "Story fetched successfully"))
	}
}

// CreateStory creates a story (multipart, optional image), unique by title.
func CreateStory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := strings.TrimSpace(c.PostForm("title"))
		content := strings.TrimSpace(c.PostForm("content"))

		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		if content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
			return
		}

		var existing models.Story
		if err := db.Where("title = ?", title).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Title already exists"})
			return
		}

		date := time.Now()
		if d := c.PostForm("date"); d != "" {
			if parsed, err := time.Parse("2006-01-02", d); err == nil {
				date = parsed
			}
		}

		var image string
		if file, err := c.FormFile("image"); err == nil {
			url, err := utils.SaveUploadedImage(c, file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			image = url
		}

		story := models.Story{
			Title:    title,
			Content:  content,
			Date:     date,
			Image:    image,
			IsActive: true,
		}

		if err := db.Create(&story).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create story"})
			return
		}

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, story, "Story created successfully"))
	}
}

// UpdateStory patches a story, keeping the title unique.
func UpdateStory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Story ID required"})
			return
		}

		var story models.Story
		if err := db.First(&story, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}

		updates := map[string]interface{}{}

		if title := strings.TrimSpace(c.PostForm("title")); title != "" && title != story.Title {
			var exists models.Story
			if err := db.Where("title = ? AND id <> ?", title, id).First(&exists).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Title already exists"})
				return
			}
			updates["title"] = title
		}
		if content := strings.TrimSpace(c.PostForm("content")); content != "" {
			updates["content"] = content
		}
		if d := c.PostForm("date"); d != "" {
			if parsed, err := time.Parse("2006-01-02", d); err == nil {
				updates["date"] = parsed
			}
		}
		if active := c.PostForm("is_active"); active != "" {
			updates["is_active"] = active == "true"
		}

		if file, err := c.FormFile("image"); err == nil {
			url, err := utils.SaveUploadedImage(c, file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates["image"] = url
		}

		if len(updates) > 0 {
			if err := db.Model(&story).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update story"})
				return
			}
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, story, "Story updated successfully"))
	}
}

func DeleteStory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Story ID required"})
			return
		}

		res := db.Delete(&models.Story{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete story"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Story deleted successfully"))
	}
}
