package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

var errCartConflict = errors.New("cart modified concurrently")

const cartWriteRetries = 3

// replaceCartItems writes the full item list under the revision guard: the
// update only lands when the cart row still carries the revision we read.
func replaceCartItems(db *gorm.DB, cart *models.Cart, items []models.CartItem) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND revision = ?", cart.ID, cart.Revision).
			Update("revision", cart.Revision+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCartConflict
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].CartID = cart.ID
			items[i].Product = nil
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func loadCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func loadCartExpanded(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart returns the user's cart, or an empty item list when none exists yet.
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)

		cart, err := loadCartExpanded(db, user.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{"items": []models.CartItem{}}, "Cart fetched successfully"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, cart, "Cart fetched successfully"))
	}
}

// AddToCart adds a product, accumulating quantity onto an existing line.
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ProductID uint `json:"product_id" binding:"required"`
			Quantity  int  `json:"quantity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID and quantity are required"})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		for attempt := 0; attempt < cartWriteRetries; attempt++ {
			cart, err := loadCart(db, user.ID)
			if err != nil {
				cart = &models.Cart{
					UserID: user.ID,
					Items:  []models.CartItem{{ProductID: input.ProductID, Quantity: input.Quantity}},
				}
				if err := db.Create(cart).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
					return
				}
				c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, cart, "Item added to cart"))
				return
			}

			items := cart.Items
			found := false
			for i := range items {
				if items[i].ProductID == input.ProductID {
					items[i].Quantity += input.Quantity
					found = true
					break
				}
			}
			if !found {
				items = append(items, models.CartItem{ProductID: input.ProductID, Quantity: input.Quantity})
			}

			err = replaceCartItems(db, cart, items)
			if errors.Is(err, errCartConflict) {
				continue
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
				return
			}

			updated, _ := loadCart(db, user.ID)
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, updated, "Item added to cart"))
			return
		}

		c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
	}
}

// UpdateCartItem sets the quantity of an existing line item.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid product ID is required"})
			return
		}

		var input struct {
			Quantity int `json:"quantity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity is required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		for attempt := 0; attempt < cartWriteRetries; attempt++ {
			cart, err := loadCart(db, user.ID)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
				return
			}

			items := cart.Items
			found := false
			for i := range items {
				if items[i].ProductID == uint(productID) {
					items[i].Quantity = input.Quantity
					found = true
					break
				}
			}
			if !found {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in cart"})
				return
			}

			err = replaceCartItems(db, cart, items)
			if errors.Is(err, errCartConflict) {
				continue
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
				return
			}

			updated, _ := loadCart(db, user.ID)
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, updated, "Cart updated"))
			return
		}

		c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
	}
}

// RemoveFromCart drops a product's line item.
func RemoveFromCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid product ID is required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		for attempt := 0; attempt < cartWriteRetries; attempt++ {
			cart, err := loadCart(db, user.ID)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
				return
			}

			items := make([]models.CartItem, 0, len(cart.Items))
			for _, item := range cart.Items {
				if item.ProductID != uint(productID) {
					items = append(items, item)
				}
			}

			err = replaceCartItems(db, cart, items)
			if errors.Is(err, errCartConflict) {
				continue
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
				return
			}

			updated, _ := loadCart(db, user.ID)
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, updated, "Item removed from cart"))
			return
		}

		c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
	}
}

// ClearCart deletes the cart and its items.
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)

		cart, err := loadCart(db, user.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Cart{}, cart.ID).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Cart cleared"))
	}
}

// MergeCarts reconciles a client-held cart into the persisted one at login.
//
// When no cart exists, the line items become exactly the client list, in
// order, with no deduplication of client-side duplicates. When a cart exists,
// quantities accumulate per product and unknown products are appended. The
// operation is deliberately NOT idempotent: replaying the same client list
// adds the quantities again.
func MergeCarts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// local_cart must be present but may be empty: merging a pristine
		// client cart yields an empty server cart.
		var input struct {
			LocalCart []struct {
				ProductID uint `json:"product_id" binding:"required"`
				Quantity  int  `json:"quantity" binding:"required,min=1"`
			} `json:"local_cart"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.LocalCart == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Local cart data is required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		for attempt := 0; attempt < cartWriteRetries; attempt++ {
			cart, err := loadCart(db, user.ID)
			if err != nil {
				items := make([]models.CartItem, 0, len(input.LocalCart))
				for _, li := range input.LocalCart {
					items = append(items, models.CartItem{ProductID: li.ProductID, Quantity: li.Quantity})
				}
				cart = &models.Cart{UserID: user.ID, Items: items}
				if err := db.Create(cart).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
					return
				}
			} else {
				items := cart.Items
				for _, li := range input.LocalCart {
					found := false
					for i := range items {
						if items[i].ProductID == li.ProductID {
							items[i].Quantity += li.Quantity
							found = true
							break
						}
					}
					if !found {
						items = append(items, models.CartItem{ProductID: li.ProductID, Quantity: li.Quantity})
					}
				}

				err = replaceCartItems(db, cart, items)
				if errors.Is(err, errCartConflict) {
					continue
				}
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge carts"})
					return
				}
			}

			merged, err := loadCartExpanded(db, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load merged cart"})
				return
			}
			c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, merged, "Carts merged successfully"))
			return
		}

		c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
	}
}
