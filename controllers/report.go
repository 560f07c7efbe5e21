package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
)

// GetDelinquentUsers reports users that owe fines or hold an overdue loan.
func GetDelinquentUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Where("multas > 0").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los usuarios"})
		return
	}

	var overdue []models.Loan
	err := config.DB.Preload("Usuario").
		Where("estado <> ? AND fecha_devolucion_esperada < ?", models.PrestamoDevuelto, time.Now()).
		Find(&overdue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los préstamos"})
		return
	}

	overdueCount := make(map[uint]int64)
	byID := make(map[uint]models.User)
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, l := range overdue {
		overdueCount[l.UsuarioID]++
		if _, seen := byID[l.UsuarioID]; !seen && l.Usuario != nil {
			byID[l.UsuarioID] = *l.Usuario
		}
	}

	ids := make([]uint, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	response := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		u := byID[id]
		response = append(response, map[string]interface{}{
			"usuarioId":         id,
			"nombreCompleto":    u.NombreCompleto(),
			"correo":            u.Correo,
			"multas":            u.Multas,
			"prestamosVencidos": overdueCount[id],
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetPopularBooks reports the most borrowed books. Query param limit
// defaults to 10.
func GetPopularBooks(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	type bookCount struct {
		LibroID uint
		Total   int64
	}
	var counts []bookCount
	err := config.DB.Model(&models.Loan{}).
		Select("libro_id, count(*) as total").
		Group("libro_id").
		Order("total desc").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los préstamos"})
		return
	}

	var response []map[string]interface{}
	for _, bc := range counts {
		var book models.Book
		if err := config.DB.First(&book, bc.LibroID).Error; err != nil {
			continue
		}
		response = append(response, map[string]interface{}{
			"libro":     book,
			"prestamos": bc.Total,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetMyHistory returns the caller's complete loan history.
func GetMyHistory(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var loans []models.Loan
	err := config.DB.Preload("Libro").
		Where("usuario_id = ?", userID).
		Order("fecha_prestamo desc").
		Find(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el historial"})
		return
	}

	c.JSON(http.StatusOK, loans)
}

// DownloadLoansCSV sends the full loan ledger as a CSV file.
func DownloadLoansCSV(c *gin.Context) {
	var loans []models.Loan
	err := config.DB.Preload("Usuario").Preload("Libro").
		Order("fecha_prestamo desc").
		Find(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los préstamos"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=prestamos.csv")
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"id", "usuario", "libro", "fecha_prestamo", "fecha_devolucion_esperada", "estado", "dias_retraso", "multa"})
	for _, loan := range loans {
		correo, titulo := "", ""
		if loan.Usuario != nil {
			correo = loan.Usuario.Correo
		}
		if loan.Libro != nil {
			titulo = loan.Libro.Titulo
		}
		writer.Write([]string{
			strconv.FormatUint(uint64(loan.ID), 10),
			correo,
			titulo,
			loan.FechaPrestamo.Format("2006-01-02 15:04:05"),
			loan.FechaDevolucionEsperada.Format("2006-01-02 15:04:05"),
			loan.Estado,
			strconv.Itoa(loan.DiasRetraso),
			fmt.Sprintf("%.2f", loan.MultaGenerada),
		})
	}
}

// GetStatistics returns headline counts. Admin only (enforced in the route
// table).
func GetStatistics(c *gin.Context) {
	var usuarios, libros, prestamosActivos, prestamosVencidos, reservasPendientes int64

	config.DB.Model(&models.User{}).Count(&usuarios)
	config.DB.Model(&models.Book{}).Count(&libros)
	config.DB.Model(&models.Loan{}).Where("estado = ?", models.PrestamoActivo).Count(&prestamosActivos)
	config.DB.Model(&models.Loan{}).
		Where("estado <> ? AND fecha_devolucion_esperada < ?", models.PrestamoDevuelto, time.Now()).
		Count(&prestamosVencidos)
	config.DB.Model(&models.Reservation{}).Where("estado = ?", models.ReservaPendiente).Count(&reservasPendientes)

	c.JSON(http.StatusOK, gin.H{
		"usuarios":           usuarios,
		"libros":             libros,
		"prestamosActivos":   prestamosActivos,
		"prestamosVencidos":  prestamosVencidos,
		"reservasPendientes": reservasPendientes,
	})
}
