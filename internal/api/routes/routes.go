// server/internal/api/routes/routes.go
package routes

import (
	"epa-asset-api-server/config"
	"epa-asset-api-server/internal/api/handlers"
	"epa-asset-api-server/internal/api/middleware"
	"epa-asset-api-server/internal/services"
	"epa-asset-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	documents *services.DocumentService,
	register *services.RegisterService,
	audit *services.AuditService,
	notifier *services.NotificationService,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// Khởi tạo các handlers
	assignmentHandler := &handlers.AssignmentHandler{DB: db, Documents: documents, Register: register, Audit: audit, Notifier: notifier}
	transferHandler := &handlers.TransferHandler{DB: db, Documents: documents, Register: register, Audit: audit, Notifier: notifier}
	returnBatchHandler := &handlers.ReturnBatchHandler{DB: db, Documents: documents, Register: register, Audit: audit, Notifier: notifier}
	itemHandler := &handlers.ItemHandler{DB: db, Audit: audit}
	documentHandler := &handlers.DocumentHandler{DB: db, Documents: documents}
	requisitionHandler := &handlers.RequisitionHandler{DB: db}
	officeHandler := &handlers.OfficeHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// Route cho WebSocket
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === CÁC ROUTE YÊU CẦU XÁC THỰC (PROTECTED) ===

		// Nhóm API quản trị, yêu cầu vai trò "superadmin"
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("superadmin"))
		{
			// User management
			admin.POST("/users", userHandler.CreateUser)

			// Office management (CRUD)
			offices := admin.Group("/offices")
			{
				offices.POST("/", officeHandler.CreateOffice)
				offices.GET("/", officeHandler.GetAllOffices)
				offices.GET("/:id", officeHandler.GetOfficeByID)
				offices.PUT("/:id", officeHandler.UpdateOffice)
				offices.DELETE("/:id", officeHandler.DeactivateOffice)
			}

			// Master data khác
			admin.POST("/stores", officeHandler.CreateStore)
			admin.POST("/employees", officeHandler.CreateEmployee)
			admin.POST("/rooms", officeHandler.CreateRoom)
		}

		// Nhóm các API nghiệp vụ chính, yêu cầu các vai trò cụ thể
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize("manager", "employee", "superadmin"))
		{
			// Item management
			items := businessRoutes.Group("/items")
			{
				items.GET("/:id", itemHandler.GetItem)
				items.GET("/:id/history", itemHandler.GetItemHistory)

				createItemRoutes := items.Group("/")
				createItemRoutes.Use(middleware.Authorize("manager", "superadmin"))
				{
					createItemRoutes.POST("/", itemHandler.CreateItem)
				}
			}
			businessRoutes.GET("/offices/:id/items", itemHandler.GetItemsByOffice)

			// Assignment workflow
			assignments := businessRoutes.Group("/assignments")
			{
				assignments.GET("/", assignmentHandler.GetAllAssignments)
				assignments.GET("/:id", assignmentHandler.GetAssignment)

				// Nhân viên chỉ được yêu cầu trả đồ mình đang giữ
				assignments.POST("/:id/request-return", assignmentHandler.RequestReturn)

				managerAssignmentRoutes := assignments.Group("/")
				managerAssignmentRoutes.Use(middleware.Authorize("manager", "superadmin"))
				{
					managerAssignmentRoutes.POST("/", assignmentHandler.CreateAssignment)
					managerAssignmentRoutes.POST("/:id/issue", assignmentHandler.IssueAssignment)
					managerAssignmentRoutes.POST("/:id/return", assignmentHandler.ReturnAssignment)
					managerAssignmentRoutes.POST("/:id/reassign", assignmentHandler.Reassign)
					managerAssignmentRoutes.POST("/:id/cancel", assignmentHandler.CancelAssignment)
				}
			}

			// Transfer workflow
			transfers := businessRoutes.Group("/transfers")
			{
				transfers.GET("/", transferHandler.GetAllTransfers)
				transfers.GET("/:id", transferHandler.GetTransfer)

				managerTransferRoutes := transfers.Group("/")
				managerTransferRoutes.Use(middleware.Authorize("manager", "superadmin"))
				{
					managerTransferRoutes.POST("/", transferHandler.CreateTransfer)
					managerTransferRoutes.POST("/:id/approve", transferHandler.ApproveTransfer)
					managerTransferRoutes.POST("/:id/dispatch-to-store", transferHandler.DispatchToStore)
					managerTransferRoutes.POST("/:id/receive-at-dest", transferHandler.ReceiveAtDest)
					managerTransferRoutes.POST("/:id/reject", transferHandler.RejectTransfer)
					managerTransferRoutes.POST("/:id/cancel", transferHandler.CancelTransfer)
				}

				// Các bước tại kho trung tâm chỉ dành cho superadmin
				storeTransferRoutes := transfers.Group("/")
				storeTransferRoutes.Use(middleware.Authorize("superadmin"))
				{
					storeTransferRoutes.POST("/:id/receive-at-store", transferHandler.ReceiveAtStore)
					storeTransferRoutes.POST("/:id/dispatch-to-dest", transferHandler.DispatchToDest)
				}
			}

			// Return batch workflow
			returnBatches := businessRoutes.Group("/return-batches")
			{
				returnBatches.GET("/", returnBatchHandler.GetAllReturnBatches)
				returnBatches.GET("/:id", returnBatchHandler.GetReturnBatch)

				// Nhân viên tự nộp lô trả của mình, manager nhận và ký
				returnBatches.POST("/", returnBatchHandler.CreateReturnBatch)

				managerBatchRoutes := returnBatches.Group("/")
				managerBatchRoutes.Use(middleware.Authorize("manager", "superadmin"))
				{
					managerBatchRoutes.POST("/:id/receive", returnBatchHandler.ReceiveReturnBatch)
					managerBatchRoutes.POST("/:id/signed-return", returnBatchHandler.UploadSignedReturn)
				}
			}

			// Document management
			docs := businessRoutes.Group("/documents")
			docs.Use(middleware.Authorize("manager", "superadmin"))
			{
				docs.POST("/", documentHandler.CreateDocument)
				docs.GET("/:id", documentHandler.GetDocument)
				docs.POST("/:id/signed-version", documentHandler.UploadSignedVersion)
			}

			// Requisitions
			requisitions := businessRoutes.Group("/requisitions")
			requisitions.Use(middleware.Authorize("manager", "superadmin"))
			{
				requisitions.POST("/", requisitionHandler.CreateRequisition)
				requisitions.GET("/:id", requisitionHandler.GetRequisition)
			}
		}
	}

	return router
}
