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

// GetProducts lists products with pagination, search and category/brand filters.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := utils.ParsePagination(c)

		query := db.Model(&models.Product{})

		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			query = query.Where("name LIKE ? OR description LIKE ? OR sku LIKE ?", like, like, like)
		}
		if category := c.Query("category"); category != "" {
			if id, err := strconv.ParseUint(category, 10, 64); err == nil {
				query = query.Where("category_id = ?", id)
			}
		}
		if brand := c.Query("brand"); brand != "" {
			if id, err := strconv.ParseUint(brand, 10, 64); err == nil {
				query = query.Where("brand_id = ?", id)
			}
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		var products []models.Product
		err := query.Preload("Category").Preload("Brand").
			Order("created_at DESC").Offset(offset).Limit(limit).
			Find(&products).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"products":   products,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Products fetched successfully"))
	}
}

// GetProductByID returns one product with category and brand expanded.
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Product ID is required"})
			return
		}

		var product models.Product
		if err := db.Preload("Category").Preload("Brand").First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, product, "Product fetched successfully"))
	}
}

func parseOptionalID(s string) *uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

// CreateProduct creates a product from multipart form data, enforcing SKU and
// product_id uniqueness and assigning the next product_id when absent.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		sku := strings.TrimSpace(c.PostForm("sku"))
		priceStr := c.PostForm("price")

		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
			return
		}
		if priceStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price is required"})
			return
		}
		if sku == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "SKU is required"})
			return
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a number"})
			return
		}
		discount, _ := strconv.ParseFloat(c.DefaultPostForm("discount", "0"), 64)
		stock, _ := strconv.Atoi(c.DefaultPostForm("stock_quantity", "0"))

		var productID int
		if pidStr := c.PostForm("product_id"); pidStr != "" {
			productID, err = strconv.Atoi(pidStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "product_id must be a number"})
				return
			}
		} else {
			var latest models.Product
			if err := db.Order("product_id DESC").First(&latest).Error; err == nil {
				productID = latest.ProductID + 1
			} else {
				productID = 1
			}
		}

		var conflict models.Product
		if err := db.Where("sku = ? OR product_id = ?", sku, productID).First(&conflict).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "SKU or product_id already exists"})
			return
		}

		var mainImage string
		gallery := []string{}

		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["image_url"]; len(files) > 0 {
				url, err := utils.SaveUploadedImage(c, files[0])
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				mainImage = url
			}
			files := form.File["additional_images"]
			if len(files) > 5 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "A maximum of 5 additional images is allowed"})
				return
			}
			for _, file := range files {
				url, err := utils.SaveUploadedImage(c, file)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				gallery = append(gallery, url)
			}
		}

		product := models.Product{
			ProductID:        productID,
			Name:             name,
			Description:      strings.TrimSpace(c.PostForm("description")),
			SKU:              sku,
			Price:            price,
			Discount:         discount,
			StockQuantity:    stock,
			CategoryID:       parseOptionalID(c.PostForm("category")),
			BrandID:          parseOptionalID(c.PostForm("brand")),
			ImageURL:         mainImage,
			AdditionalImages: gallery,
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, product, "Product created successfully"))
	}
}

// UpdateProduct patches product fields, keeping SKU unique across other rows.
// product_id is immutable after creation.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Product ID is required"})
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		updates := map[string]interface{}{}

		if sku := strings.TrimSpace(c.PostForm("sku")); sku != "" {
			var conflict models.Product
			if err := db.Where("sku = ? AND id <> ?", sku, id).First(&conflict).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "SKU already exists"})
				return
			}
			updates["sku"] = sku
		}
		if name := strings.TrimSpace(c.PostForm("name")); name != "" {
			updates["name"] = name
		}
		if description := strings.TrimSpace(c.PostForm("description")); description != "" {
			updates["description"] = description
		}
		if priceStr := c.PostForm("price"); priceStr != "" {
			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a number"})
				return
			}
			updates["price"] = price
		}
		if discountStr := c.PostForm("discount"); discountStr != "" {
			discount, err := strconv.ParseFloat(discountStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Discount must be a number"})
				return
			}
			updates["discount"] = discount
		}
		if stockStr := c.PostForm("stock_quantity"); stockStr != "" {
			stock, err := strconv.Atoi(stockStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock_quantity must be a number"})
				return
			}
			updates["stock_quantity"] = stock
		}
		if category := c.PostForm("category"); category != "" {
			updates["category_id"] = parseOptionalID(category)
		}
		if brand := c.PostForm("brand"); brand != "" {
			updates["brand_id"] = parseOptionalID(brand)
		}

		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["image_url"]; len(files) > 0 {
				url, err := utils.SaveUploadedImage(c, files[0])
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["image_url"] = url
			}
			if files := form.File["additional_images"]; len(files) > 0 {
				gallery := []string{}
				for _, file := range files {
					url, err := utils.SaveUploadedImage(c, file)
					if err != nil {
						c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
						return
					}
					gallery = append(gallery, url)
				}
				product.AdditionalImages = append(product.AdditionalImages, gallery...)
				updates["additional_images"] = product.AdditionalImages
			}
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required to update"})
			return
		}

		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, product, "Product updated successfully"))
	}
}

// DeleteProduct removes a product.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid Product ID is required"})
			return
		}

		res := db.Delete(&models.Product{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Product deleted successfully"))
	}
}
