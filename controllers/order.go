package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateOrder turns the user's cart into an order, snapshotting product
// prices, then clears the cart.
func CreateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ShippingAddress string `json:"shipping_address" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		var cart models.Cart
		if err := db.Preload("Items.Product").Where("user_id = ?", user.ID).First(&cart).Error; err != nil || len(cart.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		order := models.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          user.ID,
			Status:          models.OrderStatusPending,
			ShippingAddress: input.ShippingAddress,
		}

		var total float64
		for _, item := range cart.Items {
			if item.Product == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart references a missing product"})
				return
			}
			unit := item.Product.Price - item.Product.Discount
			if unit < 0 {
				unit = 0
			}
			total += unit * float64(item.Quantity)
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unit,
			})
		}
		order.TotalAmount = total

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Cart{}, cart.ID).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			return
		}

		c.JSON(http.StatusCreated, utils.NewApiResponse(http.StatusCreated, order, "Order created successfully"))
	}
}

// GetUserOrders lists the current user's orders, newest first.
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middlewares.CurrentUser(c)
		page, limit, offset := utils.ParsePagination(c)

		var total int64
		if err := db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		var orders []models.Order
		err := db.Preload("Items.Product").Where("user_id = ?", user.ID).
			Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, gin.H{
			"orders":     orders,
			"pagination": utils.NewPagination(page, limit, total),
		}, "Orders fetched successfully"))
	}
}

func isAdminRole(role models.Role) bool {
	for _, r := range models.AdminRoles {
		if role == r {
			return true
		}
	}
	return false
}

// GetOrderByID returns one order. Customers only see their own.
func GetOrderByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid order ID required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		var order models.Order
		if err := db.Preload("Items.Product").First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}

		if order.UserID != user.ID && !isAdminRole(user.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, order, "Order fetched successfully"))
	}
}

func transitionOwnOrder(db *gorm.DB, c *gin.Context, allowedFrom []string, to, okMessage string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid order ID required"})
		return
	}

	user, _ := middlewares.CurrentUser(c)

	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	allowed := false
	for _, s := range allowedFrom {
		if order.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order cannot be " + strings.ToLower(to) + " in status " + order.Status})
		return
	}

	if err := db.Model(&order).Update("status", to).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, order, okMessage))
}

// CancelOrder cancels a pending or confirmed order of the current user.
func CancelOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		transitionOwnOrder(db, c,
			[]string{models.OrderStatusPending, models.OrderStatusConfirmed},
			models.OrderStatusCancelled, "Order cancelled successfully")
	}
}

// ReturnOrder requests a return on a delivered order.
func ReturnOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		transitionOwnOrder(db, c,
			[]string{models.OrderStatusDelivered},
			models.OrderStatusReturned, "Order return requested")
	}
}

// DeleteOrder removes an order owned by the current user.
func DeleteOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid order ID required"})
			return
		}

		user, _ := middlewares.CurrentUser(c)

		var order models.Order
		if err := db.First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if order.UserID != user.ID && !isAdminRole(user.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Order{}, order.ID).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, nil, "Order deleted successfully"))
	}
}

// UpdateOrderStatus is the admin-side status transition.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	valid := map[string]bool{
		models.OrderStatusPending:   true,
		models.OrderStatusConfirmed: true,
		models.OrderStatusShipped:   true,
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
		models.OrderStatusReturned:  true,
	}
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid order ID required"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		input.Status = strings.ToUpper(input.Status)
		if !valid[input.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}

		var order models.Order
		if err := db.First(&order, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}

		if err := db.Model(&order).Update("status", input.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}

		c.JSON(http.StatusOK, utils.NewApiResponse(http.StatusOK, order, "Order status updated"))
	}
}
