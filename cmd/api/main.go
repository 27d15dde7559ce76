// server/cmd/api/main.go
package main

import (
	"log"

	"epa-asset-api-server/config"
	"epa-asset-api-server/internal/api/routes"
	"epa-asset-api-server/internal/auth"
	"epa-asset-api-server/internal/database"
	"epa-asset-api-server/internal/s3"
	"epa-asset-api-server/internal/services"
	"epa-asset-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env (nếu có) rồi load configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.SetSecret(cfg.JWT.Secret)

	// 2. Kết nối MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}

	// 3. Seed tài khoản superadmin
	if err := database.SeedSuperAdmin(db); err != nil {
		log.Fatalf("Could not seed super admin: %v", err)
	}

	// 4. Khởi tạo S3 uploader cho document đã ký
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Could not initialize S3 uploader: %v", err)
	}

	// 5. Khởi tạo WebSocket Hub và các service dùng chung
	wsHub := socket.NewHub()
	documentService := &services.DocumentService{DB: db, Uploader: s3Uploader}
	registerService := &services.RegisterService{DB: db}
	auditService := &services.AuditService{DB: db}
	notificationService := &services.NotificationService{Hub: wsHub}

	// 6. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, documentService, registerService, auditService, notificationService, wsHub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
