package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type reservationRequest struct {
	LibroID uint `json:"libroId" binding:"required"`
}

// CreateReservation places the authenticated user in the waiting queue of a
// book that has no available copies.
func CreateReservation(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de la reserva inválidos"})
		return
	}

	var book models.Book
	if err := config.DB.First(&book, req.LibroID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}

	if book.CopiasDisponibles > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El libro tiene copias disponibles. No se requiere reserva."})
		return
	}
	if book.Estado == models.LibroMantenimiento {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El libro está en mantenimiento y no puede ser reservado"})
		return
	}

	var existing int64
	config.DB.Model(&models.Reservation{}).
		Where("usuario_id = ? AND libro_id = ? AND estado IN ?", userID, book.ID,
			[]string{models.ReservaPendiente, models.ReservaNotificada}).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Ya tiene una reserva activa para este libro"})
		return
	}

	var queueLen int64
	config.DB.Model(&models.Reservation{}).
		Where("libro_id = ? AND estado IN ?", book.ID,
			[]string{models.ReservaPendiente, models.ReservaNotificada}).
		Count(&queueLen)

	reservation := models.Reservation{
		UsuarioID:    userID,
		LibroID:      book.ID,
		FechaReserva: time.Now(),
		Estado:       models.ReservaPendiente,
		Prioridad:    int(queueLen) + 1,
	}
	if err := config.DB.Create(&reservation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar la reserva"})
		return
	}

	reservation.Libro = &book
	c.JSON(http.StatusCreated, reservation)
}

// GetReservations lists every reservation, ordered by queue position.
// Librarian/admin only (enforced in the route table).
func GetReservations(c *gin.Context) {
	query := config.DB.Preload("Usuario").Preload("Libro").
		Order("prioridad asc, fecha_reserva asc")

	if estado := c.Query("estado"); estado != "" {
		query = query.Where("estado = ?", estado)
	}
	if libroID := c.Query("libro_id"); libroID != "" {
		query = query.Where("libro_id = ?", libroID)
	}

	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar las reservas"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetMyReservations lists the authenticated user's reservations.
func GetMyReservations(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var reservations []models.Reservation
	err := config.DB.Preload("Libro").
		Where("usuario_id = ?", userID).
		Order("fecha_reserva desc").
		Find(&reservations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar las reservas"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// CancelReservation cancels a reservation. Only its owner or an admin may
// do so; the record is kept with estado "cancelada".
func CancelReservation(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}
	rol := c.GetString("rol")

	var reservation models.Reservation
	if err := config.DB.First(&reservation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reserva no encontrada"})
		return
	}

	if reservation.UsuarioID != userID && rol != models.RolAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo el dueño de la reserva o un administrador puede cancelarla"})
		return
	}

	if !reservation.Viva() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La reserva ya no está activa"})
		return
	}

	if err := CancelAndRequeue(config.DB, &reservation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cancelar la reserva"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Reserva cancelada exitosamente"})
}

type notifyRequest struct {
	LibroID uint `json:"libroId" binding:"required"`
}

// NotifyAvailability holds a free copy for the head of a book's reservation
// queue. Librarian/admin only (enforced in the route table).
func NotifyAvailability(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	var book models.Book
	if err := config.DB.First(&book, req.LibroID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}

	if book.CopiasDisponibles <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El libro no tiene copias disponibles"})
		return
	}

	reservation, err := promoteNextReservation(book)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al notificar la reserva"})
		return
	}
	if reservation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No hay reservas pendientes para este libro"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Reserva notificada exitosamente", "reserva": reservation})
}

// promoteNextReservation marks the head pending reservation of a book as
// notificada, stamps its notification and expiry dates and pushes a
// websocket notice. Returns nil when the queue is empty or the book has no
// free copy to hold.
func promoteNextReservation(book models.Book) (*models.Reservation, error) {
	if book.CopiasDisponibles <= 0 {
		return nil, nil
	}

	var reservation models.Reservation
	err := config.DB.Where("libro_id = ? AND estado = ?", book.ID, models.ReservaPendiente).
		Order("prioridad asc, fecha_reserva asc").
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now()
	expiry := now.Add(time.Duration(config.GetLoanPolicy().HorasExpiracionReserva) * time.Hour)
	reservation.Estado = models.ReservaNotificada
	reservation.FechaNotificacion = &now
	reservation.FechaExpiracion = &expiry
	if err := config.DB.Save(&reservation).Error; err != nil {
		return nil, err
	}

	log.Printf("Reserva %d notificada: libro '%s' disponible para usuario %d", reservation.ID, book.Titulo, reservation.UsuarioID)
	NotifyReservationAvailable(reservation, book)
	return &reservation, nil
}

// CancelAndRequeue drops a live reservation and closes the gap it leaves in
// the book's queue.
func CancelAndRequeue(db *gorm.DB, reservation *models.Reservation) error {
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	reservation.Estado = models.ReservaCancelada
	if err := tx.Save(reservation).Error; err != nil {
		tx.Rollback()
		return err
	}

	err := tx.Model(&models.Reservation{}).
		Where("libro_id = ? AND prioridad > ? AND estado IN ?", reservation.LibroID, reservation.Prioridad,
			[]string{models.ReservaPendiente, models.ReservaNotificada}).
		Update("prioridad", gorm.Expr("prioridad - 1")).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
