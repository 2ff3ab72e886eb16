package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	os.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.AdminProfile{}, &models.Permission{},
		&models.Category{}, &models.Brand{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.Story{}, &models.ContactSetting{}, &models.ContactMessage{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		UserName: name,
		FullName: "Test " + name,
		Email:    name + "@example.com",
		Password: "hash",
		Role:     models.RoleCustomer,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, n int) *models.Product {
	t.Helper()
	product := &models.Product{
		ProductID: n,
		Name:      fmt.Sprintf("Product %d", n),
		SKU:       fmt.Sprintf("SKU-%d", n),
		Price:     float64(n) * 10,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// cartRouter mounts the cart endpoints behind an injected identity, the same
// shape the real router builds with Authenticate in front.
func cartRouter(db *gorm.DB, user *models.User) *gin.Engine {
	r := gin.New()
	inject := func(c *gin.Context) { c.Set(middlewares.ContextUser, user) }
	r.GET("/cart", inject, GetCart(db))
	r.POST("/cart/add-cart", inject, AddToCart(db))
	r.POST("/cart/merge-carts", inject, MergeCarts(db))
	r.PATCH("/cart/update-cart/:id", inject, UpdateCartItem(db))
	r.DELETE("/cart/delete-cart/:id", inject, RemoveFromCart(db))
	r.DELETE("/cart/clear-cart", inject, ClearCart(db))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cartItems(t *testing.T, db *gorm.DB, userID uint) []models.CartItem {
	t.Helper()
	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return cart.Items
}

func TestAddToCartAccumulates(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	product := seedProduct(t, db, 1)
	r := cartRouter(db, user)

	add := map[string]interface{}{"product_id": product.ID, "quantity": 2}
	if w := doJSON(t, r, http.MethodPost, "/cart/add-cart", add); w.Code != http.StatusOK {
		t.Fatalf("first add: status = %d, body %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/cart/add-cart", add); w.Code != http.StatusOK {
		t.Fatalf("second add: status = %d", w.Code)
	}

	items := cartItems(t, db, user.ID)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", items[0].Quantity)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	r := cartRouter(db, user)

	w := doJSON(t, r, http.MethodPost, "/cart/add-cart", map[string]interface{}{"product_id": 999, "quantity": 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestMergeIntoEmptyCartKeepsOrder(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	a := seedProduct(t, db, 1)
	b := seedProduct(t, db, 2)
	r := cartRouter(db, user)

	body := map[string]interface{}{"local_cart": []map[string]interface{}{
		{"product_id": a.ID, "quantity": 2},
		{"product_id": b.ID, "quantity": 1},
	}}
	if w := doJSON(t, r, http.MethodPost, "/cart/merge-carts", body); w.Code != http.StatusOK {
		t.Fatalf("merge: status = %d, body %s", w.Code, w.Body.String())
	}

	items := cartItems(t, db, user.ID)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ProductID != a.ID || items[0].Quantity != 2 {
		t.Errorf("item 0 = {%d %d}, want {%d 2}", items[0].ProductID, items[0].Quantity, a.ID)
	}
	if items[1].ProductID != b.ID || items[1].Quantity != 1 {
		t.Errorf("item 1 = {%d %d}, want {%d 1}", items[1].ProductID, items[1].Quantity, b.ID)
	}
}

// Replaying the same client list adds the quantities again: merge is
// accumulation, not reconciliation to a target state.
func TestMergeIsNotIdempotent(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	a := seedProduct(t, db, 1)
	r := cartRouter(db, user)

	// Existing cart holds {a, 1}.
	if w := doJSON(t, r, http.MethodPost, "/cart/add-cart", map[string]interface{}{"product_id": a.ID, "quantity": 1}); w.Code != http.StatusOK {
		t.Fatalf("seed add: status = %d", w.Code)
	}

	body := map[string]interface{}{"local_cart": []map[string]interface{}{
		{"product_id": a.ID, "quantity": 2},
	}}
	for i := 0; i < 2; i++ {
		if w := doJSON(t, r, http.MethodPost, "/cart/merge-carts", body); w.Code != http.StatusOK {
			t.Fatalf("merge %d: status = %d", i, w.Code)
		}
	}

	items := cartItems(t, db, user.ID)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Quantity != 5 { // 1 + 2 + 2
		t.Errorf("quantity = %d, want 5", items[0].Quantity)
	}
}

// Duplicate product references in the client list are not collapsed when the
// merge creates a fresh cart.
func TestMergeFreshCartKeepsClientDuplicates(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	a := seedProduct(t, db, 1)
	r := cartRouter(db, user)

	body := map[string]interface{}{"local_cart": []map[string]interface{}{
		{"product_id": a.ID, "quantity": 2},
		{"product_id": a.ID, "quantity": 3},
	}}
	if w := doJSON(t, r, http.MethodPost, "/cart/merge-carts", body); w.Code != http.StatusOK {
		t.Fatalf("merge: status = %d", w.Code)
	}

	items := cartItems(t, db, user.ID)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (duplicates preserved)", len(items))
	}
	if items[0].Quantity != 2 || items[1].Quantity != 3 {
		t.Errorf("quantities = %d,%d want 2,3", items[0].Quantity, items[1].Quantity)
	}
}

func TestUpdateRemoveClearCart(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	a := seedProduct(t, db, 1)
	b := seedProduct(t, db, 2)
	r := cartRouter(db, user)

	doJSON(t, r, http.MethodPost, "/cart/add-cart", map[string]interface{}{"product_id": a.ID, "quantity": 1})
	doJSON(t, r, http.MethodPost, "/cart/add-cart", map[string]interface{}{"product_id": b.ID, "quantity": 1})

	// Update sets, not accumulates.
	path := fmt.Sprintf("/cart/update-cart/%d", a.ID)
	if w := doJSON(t, r, http.MethodPatch, path, map[string]interface{}{"quantity": 7}); w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", w.Code, w.Body.String())
	}
	items := cartItems(t, db, user.ID)
	for _, item := range items {
		if item.ProductID == a.ID && item.Quantity != 7 {
			t.Errorf("quantity = %d, want 7", item.Quantity)
		}
	}

	// Updating a product that is not in the cart is a 404.
	if w := doJSON(t, r, http.MethodPatch, "/cart/update-cart/999", map[string]interface{}{"quantity": 1}); w.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d, want 404", w.Code)
	}

	// Remove one line.
	if w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/cart/delete-cart/%d", a.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("remove: status = %d", w.Code)
	}
	items = cartItems(t, db, user.ID)
	if len(items) != 1 || items[0].ProductID != b.ID {
		t.Fatalf("items after remove = %+v, want only product %d", items, b.ID)
	}

	// Clear deletes the cart entirely.
	if w := doJSON(t, r, http.MethodDelete, "/cart/clear-cart", nil); w.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", w.Code)
	}
	var count int64
	db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("cart rows after clear = %d, want 0", count)
	}

	// And the empty-cart read shape.
	if w := doJSON(t, r, http.MethodGet, "/cart", nil); w.Code != http.StatusOK {
		t.Errorf("get empty cart: status = %d, want 200", w.Code)
	}
}

// An empty client list is a valid merge and produces an empty cart; a body
// without the field is not.
func TestMergeEmptyClientCart(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	r := cartRouter(db, user)

	if w := doJSON(t, r, http.MethodPost, "/cart/merge-carts", map[string]interface{}{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing local_cart: status = %d, want 400", w.Code)
	}

	body := map[string]interface{}{"local_cart": []map[string]interface{}{}}
	if w := doJSON(t, r, http.MethodPost, "/cart/merge-carts", body); w.Code != http.StatusOK {
		t.Fatalf("empty local_cart: status = %d, body %s", w.Code, w.Body.String())
	}

	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
		t.Fatalf("cart not created for empty merge: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(cart.Items))
	}
}

// Only a missing cart reads as empty; a broken store must surface as a 500.
func TestGetCartDistinguishesMissingFromFailure(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	r := cartRouter(db, user)

	if w := doJSON(t, r, http.MethodGet, "/cart", nil); w.Code != http.StatusOK {
		t.Fatalf("missing cart: status = %d, want 200", w.Code)
	}

	if err := db.Migrator().DropTable(&models.Cart{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if w := doJSON(t, r, http.MethodGet, "/cart", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("broken store: status = %d, want 500", w.Code)
	}
}

func TestCartRevisionGuard(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "buyer")
	a := seedProduct(t, db, 1)

	cart := &models.Cart{UserID: user.ID, Items: []models.CartItem{{ProductID: a.ID, Quantity: 1}}}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart: %v", err)
	}

	stale, err := loadCart(db, user.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}

	// Another writer bumps the revision in between.
	if err := replaceCartItems(db, stale, []models.CartItem{{ProductID: a.ID, Quantity: 5}}); err != nil {
		t.Fatalf("first write: %v", err)
	}

	// The stale snapshot must now be refused.
	err = replaceCartItems(db, stale, []models.CartItem{{ProductID: a.ID, Quantity: 9}})
	if err == nil {
		t.Fatal("stale write accepted")
	}
}
