package main

import (
	"log"
	"os"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/controllers"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/workers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Connect to the SQLite database file
	dsn := os.Getenv("DATABASE_PATH")
	if dsn == "" {
		dsn = "biblioteca.db"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Set the global DB in the config package and migrate models
	config.DB = db
	controllers.MigrateModels(db)

	// Load the lending policy into its cache
	if err := config.InitLoanPolicy(config.DB); err != nil {
		log.Fatalf("Failed to initialize loan policy: %v", err)
	}

	// Start the overdue-loan sweeper
	sweeper := workers.NewSweeper(db, time.Hour)
	sweeper.Start()

	// Set up Gin router with CORS configuration
	r := gin.Default()
	r.Use(middlewares.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

// RegisterRoutes wires every API endpoint onto the router.
func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Public routes
	api.POST("/auth/register", controllers.Register)
	api.POST("/auth/login", controllers.Login)
	api.GET("/libros", controllers.GetBooks)
	api.GET("/libros/:id", controllers.GetBook)

	// Protected routes using auth middleware
	auth := api.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/ws", controllers.HandleWebSocket)
	auth.GET("/auth/perfil", controllers.GetProfile)

	staff := middlewares.RequireRoles(models.RolBibliotecario, models.RolAdmin)
	admin := middlewares.RequireRoles(models.RolAdmin)

	// Book catalog (mutations are staff only)
	auth.POST("/libros", staff, controllers.CreateBook)
	auth.PUT("/libros/:id", staff, controllers.UpdateBook)
	auth.DELETE("/libros/:id", staff, controllers.DeleteBook)

	// Loans
	auth.POST("/prestamos", controllers.CreateLoan)
	auth.GET("/prestamos", controllers.GetLoans)
	auth.PUT("/prestamos/:id/devolver", controllers.ReturnLoan)
	auth.PUT("/prestamos/:id/renovar", controllers.RenewLoan)
	auth.GET("/prestamos/vencidos", staff, controllers.GetOverdueLoans)

	// Reservations
	auth.POST("/reservas", controllers.CreateReservation)
	auth.GET("/reservas", staff, controllers.GetReservations)
	auth.GET("/reservas/mis-reservas", controllers.GetMyReservations)
	auth.DELETE("/reservas/:id", controllers.CancelReservation)
	auth.POST("/reservas/notificar-disponibilidad", staff, controllers.NotifyAvailability)

	// Reports
	auth.GET("/reportes/usuarios-morosos", staff, controllers.GetDelinquentUsers)
	auth.GET("/reportes/libros-populares", controllers.GetPopularBooks)
	auth.GET("/reportes/mi-historial", controllers.GetMyHistory)
	auth.GET("/reportes/prestamos/csv", staff, controllers.DownloadLoansCSV)
	auth.GET("/estadisticas", admin, controllers.GetStatistics)

	// Administration
	auth.GET("/usuarios", admin, controllers.GetUsers)
	auth.PUT("/usuarios/:id/cambiar-rol", admin, controllers.ChangeUserRole)
	auth.PUT("/usuarios/:id/gestionar-multa", admin, controllers.ManageUserFine)
	auth.PUT("/usuarios/:id/toggle-estado", admin, controllers.ToggleUserStatus)
	auth.GET("/politica", controllers.GetLoanPolicy)
	auth.PUT("/politica", admin, controllers.UpdateLoanPolicy)
}
