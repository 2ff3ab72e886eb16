package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

func authTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", Register(db))
	r.POST("/auth/login", Login(db))
	r.POST("/auth/refresh-token", RefreshToken(db))
	return r
}

type tokenEnvelope struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"data"`
	Success bool `json:"success"`
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) tokenEnvelope {
	t.Helper()
	var env tokenEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	r := authTestRouter(db)

	register := map[string]interface{}{
		"user_name": "Alice",
		"full_name": "Alice Example",
		"email":     "Alice@Example.com",
		"password":  "secret123",
	}
	if w := doJSON(t, r, http.MethodPost, "/auth/register", register); w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", w.Code, w.Body.String())
	}

	// Username and email are stored lowercased.
	var user models.User
	if err := db.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.UserName != "alice" {
		t.Errorf("user_name = %q, want %q", user.UserName, "alice")
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("role = %q, want CUSTOMER", user.Role)
	}
	if user.Password == "secret123" {
		t.Error("password stored in plaintext")
	}

	// Duplicate email and duplicate username both conflict.
	if w := doJSON(t, r, http.MethodPost, "/auth/register", register); w.Code != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", w.Code)
	}
	register["email"] = "other@example.com"
	if w := doJSON(t, r, http.MethodPost, "/auth/register", register); w.Code != http.StatusConflict {
		t.Errorf("duplicate username: status = %d, want 409", w.Code)
	}

	// Wrong password is a 401 with no cookie.
	bad := map[string]interface{}{"email": "alice@example.com", "password": "wrong"}
	if w := doJSON(t, r, http.MethodPost, "/auth/login", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", w.Code)
	}

	login := map[string]interface{}{"email": "alice@example.com", "password": "secret123"}
	w := doJSON(t, r, http.MethodPost, "/auth/login", login)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", w.Code, w.Body.String())
	}

	env := decodeTokens(t, w)
	if env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
		t.Fatal("login response missing tokens")
	}
	if ck := responseCookie(w, utils.AccessCookieName); ck == nil || ck.Value != env.Data.AccessToken {
		t.Error("access cookie missing or does not match body token")
	}
	if ck := responseCookie(w, utils.RefreshCookieName); ck == nil || ck.Value != env.Data.RefreshToken {
		t.Error("refresh cookie missing or does not match body token")
	}

	// The issued refresh token is persisted on the user row.
	db.First(&user, user.ID)
	if user.RefreshToken != env.Data.RefreshToken {
		t.Error("stored refresh token does not match issued token")
	}
}

func TestRefreshRotation(t *testing.T) {
	db := openTestDB(t)
	r := authTestRouter(db)

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{
		UserName: "bob", FullName: "Bob", Email: "bob@example.com",
		Password: hash, Role: models.RoleCustomer,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	login := map[string]interface{}{"email": "bob@example.com", "password": "secret123"}
	w := doJSON(t, r, http.MethodPost, "/auth/login", login)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d", w.Code)
	}
	first := decodeTokens(t, w)

	// Refresh via cookie.
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: first.Data.RefreshToken})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body %s", w2.Code, w2.Body.String())
	}
	rotated := decodeTokens(t, w2)
	if rotated.Data.AccessToken == "" || rotated.Data.RefreshToken == "" {
		t.Fatal("refresh response missing tokens")
	}

	db.First(user, user.ID)
	if user.RefreshToken != rotated.Data.RefreshToken {
		t.Error("stored refresh token not rotated to the new value")
	}

	// Refresh accepts the token in the body too.
	body := map[string]interface{}{"refresh_token": rotated.Data.RefreshToken}
	if w3 := doJSON(t, r, http.MethodPost, "/auth/refresh-token", body); w3.Code != http.StatusOK {
		t.Errorf("body refresh: status = %d", w3.Code)
	}
}

func TestRefreshRejectsSupersededToken(t *testing.T) {
	db := openTestDB(t)
	r := authTestRouter(db)

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{
		UserName: "carol", FullName: "Carol", Email: "carol@example.com",
		Password: hash, Role: models.RoleCustomer,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	login := map[string]interface{}{"email": "carol@example.com", "password": "secret123"}
	w := doJSON(t, r, http.MethodPost, "/auth/login", login)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d", w.Code)
	}
	old := decodeTokens(t, w).Data.RefreshToken

	// A later login from another device replaces the stored token.
	if err := db.Model(user).Update("refresh_token", "a-newer-refresh-token").Error; err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: old})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("superseded refresh: status = %d, want 401", w2.Code)
	}
}

func TestUpdateAccountEmailConflict(t *testing.T) {
	db := openTestDB(t)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	r := gin.New()
	r.PATCH("/users/update-account",
		func(c *gin.Context) { c.Set(middlewares.ContextUser, owner) },
		UpdateAccount(db))

	// Claiming another user's email is a conflict, not a server error.
	w := doJSON(t, r, http.MethodPatch, "/users/update-account", map[string]interface{}{"email": other.Email})
	if w.Code != http.StatusConflict {
		t.Fatalf("taken email: status = %d, want 409, body %s", w.Code, w.Body.String())
	}

	// A free email plus a name change goes through.
	body := map[string]interface{}{"email": "Owner-New@Example.com", "full_name": "Owner Renamed"}
	if w := doJSON(t, r, http.MethodPatch, "/users/update-account", body); w.Code != http.StatusOK {
		t.Fatalf("free email: status = %d, body %s", w.Code, w.Body.String())
	}

	var stored models.User
	db.First(&stored, owner.ID)
	if stored.Email != "owner-new@example.com" {
		t.Errorf("email = %q, want lowercased new address", stored.Email)
	}
	if stored.FullName != "Owner Renamed" {
		t.Errorf("full_name = %q, want %q", stored.FullName, "Owner Renamed")
	}

	// Keeping your own email is not a conflict.
	if w := doJSON(t, r, http.MethodPatch, "/users/update-account", map[string]interface{}{"email": "owner-new@example.com"}); w.Code != http.StatusOK {
		t.Errorf("own email: status = %d, want 200", w.Code)
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	db := openTestDB(t)
	r := authTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/auth/refresh-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRefreshWithGarbageToken(t *testing.T) {
	db := openTestDB(t)
	r := authTestRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: utils.RefreshCookieName, Value: "not.a.jwt"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
