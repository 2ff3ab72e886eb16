package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/config"
	"github.com/KrishnaWeb0104/backendv1/models"
	"github.com/KrishnaWeb0104/backendv1/routes"
	"github.com/KrishnaWeb0104/backendv1/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	config.ConnectDatabase()
	db := config.DB

	if err := Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if err := seedSuperAdmin(db); err != nil {
		log.Printf("super admin seed skipped: %v", err)
	}

	r := routes.SetupRouter(db)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	log.Printf("server running on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// Migrate creates/updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{}, &models.AdminProfile{}, &models.Permission{},
		&models.Category{}, &models.Brand{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.Story{}, &models.ContactSetting{}, &models.ContactMessage{},
	)
}

// seedSuperAdmin creates the bootstrap SUPER_ADMIN account from env once.
func seedSuperAdmin(db *gorm.DB) error {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set")
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		UserName:        "superadmin",
		FullName:        "Super Admin",
		Email:           email,
		Password:        hashed,
		Role:            models.RoleSuperAdmin,
		IsEmailVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("seeded super admin %s", email)
	return nil
}
