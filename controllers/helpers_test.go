package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/controllers"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter opens a fresh in-memory database and returns a router with
// the full route table.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	controllers.MigrateModels(db)
	require.NoError(t, config.InitLoanPolicy(db))

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", controllers.Register)
	api.POST("/auth/login", controllers.Login)
	api.GET("/libros", controllers.GetBooks)
	api.GET("/libros/:id", controllers.GetBook)

	auth := api.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/auth/perfil", controllers.GetProfile)

	staff := middlewares.RequireRoles(models.RolBibliotecario, models.RolAdmin)
	admin := middlewares.RequireRoles(models.RolAdmin)

	auth.POST("/libros", staff, controllers.CreateBook)
	auth.PUT("/libros/:id", staff, controllers.UpdateBook)
	auth.DELETE("/libros/:id", staff, controllers.DeleteBook)

	auth.POST("/prestamos", controllers.CreateLoan)
	auth.GET("/prestamos", controllers.GetLoans)
	auth.PUT("/prestamos/:id/devolver", controllers.ReturnLoan)
	auth.PUT("/prestamos/:id/renovar", controllers.RenewLoan)
	auth.GET("/prestamos/vencidos", staff, controllers.GetOverdueLoans)

	auth.POST("/reservas", controllers.CreateReservation)
	auth.GET("/reservas", staff, controllers.GetReservations)
	auth.GET("/reservas/mis-reservas", controllers.GetMyReservations)
	auth.DELETE("/reservas/:id", controllers.CancelReservation)
	auth.POST("/reservas/notificar-disponibilidad", staff, controllers.NotifyAvailability)

	auth.GET("/reportes/usuarios-morosos", staff, controllers.GetDelinquentUsers)
	auth.GET("/reportes/libros-populares", controllers.GetPopularBooks)
	auth.GET("/reportes/mi-historial", controllers.GetMyHistory)
	auth.GET("/reportes/prestamos/csv", staff, controllers.DownloadLoansCSV)
	auth.GET("/estadisticas", admin, controllers.GetStatistics)

	auth.GET("/usuarios", admin, controllers.GetUsers)
	auth.PUT("/usuarios/:id/cambiar-rol", admin, controllers.ChangeUserRole)
	auth.PUT("/usuarios/:id/gestionar-multa", admin, controllers.ManageUserFine)
	auth.PUT("/usuarios/:id/toggle-estado", admin, controllers.ToggleUserStatus)
	auth.GET("/politica", controllers.GetLoanPolicy)
	auth.PUT("/politica", admin, controllers.UpdateLoanPolicy)

	auth.GET("/ws", controllers.HandleWebSocket)

	return r
}

// doRequest performs one request against the router and returns the recorder.
func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// registerUser creates an account through the API and returns its id.
func registerUser(t *testing.T, r *gin.Engine, correo string) uint {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"nombre":          "Ana",
		"apellido":        "García",
		"correo":          correo,
		"contraseña":      "password123",
		"edad":            30,
		"numeroIdentidad": "ID-" + correo,
		"telefono":        "+504 9999-0000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, config.DB.Where("correo = ?", correo).First(&user).Error)
	return user.ID
}

// loginUser returns a fresh token for the account.
func loginUser(t *testing.T, r *gin.Engine, correo string) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"correo":     correo,
		"contraseña": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["token"].(string)
}

// newUserToken registers an account with the given role and logs it in.
func newUserToken(t *testing.T, r *gin.Engine, correo, rol string) string {
	t.Helper()
	id := registerUser(t, r, correo)
	if rol != models.RolUsuario {
		require.NoError(t, config.DB.Model(&models.User{}).Where("id = ?", id).Update("rol", rol).Error)
	}
	return loginUser(t, r, correo)
}

// futureDate returns an RFC3339 due date one week out.
func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format(time.RFC3339)
}

// createBook inserts a catalog entry directly and returns it.
func createBook(t *testing.T, titulo, isbn string, disponibles, total int) models.Book {
	t.Helper()
	book := models.Book{
		Titulo:            titulo,
		Autor:             "Gabriel García Márquez",
		ISBN:              isbn,
		Categoria:         "novela",
		CopiasDisponibles: disponibles,
		CopiasTotal:       total,
	}
	book.SyncEstado()
	require.NoError(t, config.DB.Create(&book).Error)
	return book
}
