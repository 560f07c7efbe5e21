package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reserve(t *testing.T, r *gin.Engine, token string, libroID uint) *models.Reservation {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/reservas", token, gin.H{"libroId": libroID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res models.Reservation
	require.NoError(t, config.DB.Order("id desc").First(&res).Error)
	return &res
}

func TestReserveOnlyExhaustedBooks(t *testing.T) {
	r := setupRouter(t)
	token := newUserToken(t, r, "lector@email.com", models.RolUsuario)

	available := createBook(t, "Con copias", "978-30", 1, 1)
	w := doRequest(r, http.MethodPost, "/api/reservas", token, gin.H{"libroId": available.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	exhausted := createBook(t, "Sin copias", "978-31", 0, 1)
	res := reserve(t, r, token, exhausted.ID)
	assert.Equal(t, models.ReservaPendiente, res.Estado)
	assert.Equal(t, 1, res.Prioridad)
}

func TestReserveBookInMaintenanceRejected(t *testing.T) {
	r := setupRouter(t)
	token := newUserToken(t, r, "lector@email.com", models.RolUsuario)

	book := models.Book{Titulo: "En taller", Autor: "Anónimo", ISBN: "978-32", Estado: models.LibroMantenimiento}
	require.NoError(t, config.DB.Create(&book).Error)

	w := doRequest(r, http.MethodPost, "/api/reservas", token, gin.H{"libroId": book.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateLiveReservationRejected(t *testing.T) {
	r := setupRouter(t)
	token := newUserToken(t, r, "lector@email.com", models.RolUsuario)
	book := createBook(t, "Agotado", "978-33", 0, 1)

	reserve(t, r, token, book.ID)
	w := doRequest(r, http.MethodPost, "/api/reservas", token, gin.H{"libroId": book.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelReservationAuthorization(t *testing.T) {
	r := setupRouter(t)
	owner := newUserToken(t, r, "dueno@email.com", models.RolUsuario)
	other := newUserToken(t, r, "otro@email.com", models.RolUsuario)
	staff := newUserToken(t, r, "biblio@email.com", models.RolBibliotecario)
	admin := newUserToken(t, r, "admin@email.com", models.RolAdmin)

	book := createBook(t, "Muy pedido", "978-34", 0, 1)

	// A stranger, even a librarian, may not cancel someone else's reservation.
	res := reserve(t, r, owner, book.ID)
	path := fmt.Sprintf("/api/reservas/%d", res.ID)

	w := doRequest(r, http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(r, http.MethodDelete, path, staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner may.
	w = doRequest(r, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// An admin may cancel anyone's.
	res = reserve(t, r, owner, book.ID)
	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/reservas/%d", res.ID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, config.DB.First(res, res.ID).Error)
	assert.Equal(t, models.ReservaCancelada, res.Estado)
}

func TestReservationQueueReprioritizesOnCancel(t *testing.T) {
	r := setupRouter(t)
	first := newUserToken(t, r, "primero@email.com", models.RolUsuario)
	second := newUserToken(t, r, "segundo@email.com", models.RolUsuario)
	third := newUserToken(t, r, "tercero@email.com", models.RolUsuario)

	book := createBook(t, "Lista de espera", "978-35", 0, 1)

	resFirst := reserve(t, r, first, book.ID)
	resSecond := reserve(t, r, second, book.ID)
	resThird := reserve(t, r, third, book.ID)
	assert.Equal(t, 1, resFirst.Prioridad)
	assert.Equal(t, 2, resSecond.Prioridad)
	assert.Equal(t, 3, resThird.Prioridad)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/reservas/%d", resFirst.ID), first, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, config.DB.First(resSecond, resSecond.ID).Error)
	require.NoError(t, config.DB.First(resThird, resThird.ID).Error)
	assert.Equal(t, 1, resSecond.Prioridad)
	assert.Equal(t, 2, resThird.Prioridad)
}

func TestNotifyAvailabilityPromotesHead(t *testing.T) {
	r := setupRouter(t)
	userToken := newUserToken(t, r, "lector@email.com", models.RolUsuario)
	staff := newUserToken(t, r, "biblio@email.com", models.RolBibliotecario)

	book := createBook(t, "Por llegar", "978-36", 0, 1)
	res := reserve(t, r, userToken, book.ID)

	// No free copy yet.
	w := doRequest(r, http.MethodPost, "/api/reservas/notificar-disponibilidad", staff, gin.H{"libroId": book.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, config.DB.Model(&models.Book{}).Where("id = ?", book.ID).
		Updates(map[string]interface{}{"copias_disponibles": 1, "estado": models.LibroDisponible}).Error)

	w = doRequest(r, http.MethodPost, "/api/reservas/notificar-disponibilidad", staff, gin.H{"libroId": book.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, config.DB.First(res, res.ID).Error)
	assert.Equal(t, models.ReservaNotificada, res.Estado)
	require.NotNil(t, res.FechaNotificacion)
	require.NotNil(t, res.FechaExpiracion)
	assert.True(t, res.FechaExpiracion.After(*res.FechaNotificacion))
}

func TestReturnPromotesNextReservation(t *testing.T) {
	r := setupRouter(t)
	borrower := newUserToken(t, r, "lector@email.com", models.RolUsuario)
	waiting := newUserToken(t, r, "espera@email.com", models.RolUsuario)

	book := createBook(t, "Único ejemplar", "978-37", 1, 1)
	loan := borrow(t, r, borrower, book.ID)
	res := reserve(t, r, waiting, book.ID)

	w := doRequest(r, http.MethodPut, fmt.Sprintf("/api/prestamos/%d/devolver", loan.ID), borrower, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, config.DB.First(res, res.ID).Error)
	assert.Equal(t, models.ReservaNotificada, res.Estado)
}

func TestPickupCompletesReservation(t *testing.T) {
	r := setupRouter(t)
	borrower := newUserToken(t, r, "lector@email.com", models.RolUsuario)
	waiting := newUserToken(t, r, "espera@email.com", models.RolUsuario)
	queued := newUserToken(t, r, "cola@email.com", models.RolUsuario)

	book := createBook(t, "Rayuela", "978-38", 1, 1)
	loan := borrow(t, r, borrower, book.ID)
	res := reserve(t, r, waiting, book.ID)
	resQueued := reserve(t, r, queued, book.ID)

	w := doRequest(r, http.MethodPut, fmt.Sprintf("/api/prestamos/%d/devolver", loan.ID), borrower, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Notified head picks up their held copy.
	w = doRequest(r, http.MethodPost, "/api/prestamos", waiting, gin.H{
		"libroId":                 book.ID,
		"fechaDevolucionEsperada": futureDate(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, config.DB.First(res, res.ID).Error)
	assert.Equal(t, models.ReservaCompletada, res.Estado)

	// The fulfilled slot closes and the queue moves up.
	require.NoError(t, config.DB.First(resQueued, resQueued.ID).Error)
	assert.Equal(t, 1, resQueued.Prioridad)

	// Nothing live blocks a fresh reservation by the same user.
	w = doRequest(r, http.MethodPost, "/api/reservas", waiting, gin.H{"libroId": book.ID})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
