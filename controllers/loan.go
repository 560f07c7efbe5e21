package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type loanRequest struct {
	LibroID                 uint      `json:"libroId" binding:"required"`
	FechaDevolucionEsperada time.Time `json:"fechaDevolucionEsperada" binding:"required"`
}

// CreateLoan borrows a book for the authenticated user. One available copy
// is taken inside the same transaction that creates the loan.
func CreateLoan(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos del préstamo inválidos"})
		return
	}

	if !req.FechaDevolucionEsperada.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de devolución debe ser futura"})
		return
	}

	var loan models.Loan
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var book models.Book
	if err := tx.First(&book, req.LibroID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}

	if book.CopiasDisponibles <= 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "El libro no tiene copias disponibles"})
		return
	}
	if book.Estado != models.LibroDisponible {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "El libro no está disponible para préstamo"})
		return
	}

	book.CopiasDisponibles--
	book.SyncEstado()
	if err := tx.Save(&book).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el libro"})
		return
	}

	loan = models.Loan{
		UsuarioID:               userID,
		LibroID:                 book.ID,
		FechaPrestamo:           time.Now(),
		FechaDevolucionEsperada: req.FechaDevolucionEsperada,
		Estado:                  models.PrestamoActivo,
	}
	if err := tx.Create(&loan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el préstamo"})
		return
	}

	// A live reservation by the borrower is fulfilled by this loan.
	var reservation models.Reservation
	err := tx.Where("usuario_id = ? AND libro_id = ? AND estado IN ?",
		userID, book.ID, []string{models.ReservaPendiente, models.ReservaNotificada}).
		First(&reservation).Error
	if err == nil {
		reservation.Estado = models.ReservaCompletada
		if err := tx.Save(&reservation).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el préstamo"})
			return
		}
		err = tx.Model(&models.Reservation{}).
			Where("libro_id = ? AND prioridad > ? AND estado IN ?", book.ID, reservation.Prioridad,
				[]string{models.ReservaPendiente, models.ReservaNotificada}).
			Update("prioridad", gorm.Expr("prioridad - 1")).Error
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el préstamo"})
			return
		}
	} else if err != gorm.ErrRecordNotFound {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el préstamo"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el préstamo"})
		return
	}

	loan.Libro = &book
	c.JSON(http.StatusCreated, loan)
}

// GetLoans lists loans. Regular users only see their own; librarians and
// admins see everything and may filter by usuario_id and estado.
func GetLoans(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}
	rol := c.GetString("rol")

	query := config.DB.Preload("Usuario").Preload("Libro").Order("fecha_prestamo desc")

	if rol == models.RolBibliotecario || rol == models.RolAdmin {
		if requested := c.Query("usuario_id"); requested != "" {
			query = query.Where("usuario_id = ?", requested)
		}
	} else {
		query = query.Where("usuario_id = ?", userID)
	}
	if estado := c.Query("estado"); estado != "" {
		query = query.Where("estado = ?", estado)
	}

	var loans []models.Loan
	if err := query.Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los préstamos"})
		return
	}

	c.JSON(http.StatusOK, loans)
}

// ReturnLoan marks a loan as returned, computes the late fee, restores the
// book copy and promotes the next pending reservation.
func ReturnLoan(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}
	rol := c.GetString("rol")

	var loan models.Loan
	if err := config.DB.First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Préstamo no encontrado"})
		return
	}

	if loan.UsuarioID != userID && rol != models.RolBibliotecario && rol != models.RolAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para realizar esta acción"})
		return
	}

	if loan.Devuelto() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El préstamo ya fue devuelto"})
		return
	}

	now := time.Now()
	policy := config.GetLoanPolicy()
	diasRetraso := utils.DaysLate(loan.FechaDevolucionEsperada, now)
	multa := utils.LateFee(diasRetraso, policy.MultaPorDia)

	var book models.Book
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&book, loan.LibroID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el libro"})
		return
	}

	if book.CopiasDisponibles < book.CopiasTotal {
		book.CopiasDisponibles++
	}
	book.SyncEstado()
	if err := tx.Save(&book).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el libro"})
		return
	}

	loan.FechaDevolucionReal = &now
	loan.DiasRetraso = diasRetraso
	loan.MultaGenerada = multa
	loan.Estado = models.PrestamoDevuelto
	if err := tx.Save(&loan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar la devolución"})
		return
	}

	if multa > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", loan.UsuarioID).
			Update("multas", gorm.Expr("multas + ?", multa)).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar la multa"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar la devolución"})
		return
	}

	// A copy is free again, hold it for the head of the reservation queue.
	if _, err := promoteNextReservation(book); err != nil {
		log.Println("Error al promover la siguiente reserva:", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje":       "Libro devuelto exitosamente",
		"diasRetraso":   diasRetraso,
		"multaGenerada": multa,
		"prestamo":      loan,
	})
}

// RenewLoan extends the expected return date by the policy loan period.
// Only the owner may renew, and only while the loan is neither returned
// nor overdue, up to the policy renewal limit.
func RenewLoan(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var loan models.Loan
	if err := config.DB.First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Préstamo no encontrado"})
		return
	}

	if loan.UsuarioID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para realizar esta acción"})
		return
	}

	if loan.Devuelto() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se puede renovar un préstamo ya devuelto"})
		return
	}
	if loan.Atrasado(time.Now()) || loan.Estado == models.PrestamoVencido {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se puede renovar un préstamo vencido"})
		return
	}

	policy := config.GetLoanPolicy()
	if loan.Renovaciones >= policy.MaxRenovaciones {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se alcanzó el límite de renovaciones"})
		return
	}

	loan.FechaDevolucionEsperada = loan.FechaDevolucionEsperada.AddDate(0, 0, policy.DiasPrestamo)
	loan.Renovaciones++
	if err := config.DB.Save(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al renovar el préstamo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Préstamo renovado exitosamente", "prestamo": loan})
}

// GetOverdueLoans lists loans past their expected return date and not yet
// returned. Librarian/admin only (enforced in the route table).
func GetOverdueLoans(c *gin.Context) {
	var loans []models.Loan
	err := config.DB.Preload("Usuario").Preload("Libro").
		Where("estado <> ? AND fecha_devolucion_esperada < ?", models.PrestamoDevuelto, time.Now()).
		Order("fecha_devolucion_esperada asc").
		Find(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los préstamos vencidos"})
		return
	}

	c.JSON(http.StatusOK, loans)
}
