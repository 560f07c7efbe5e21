package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
)

// GetBooks lists the catalog. Supports filtering by categoria, autor
// (substring) and disponible=true.
func GetBooks(c *gin.Context) {
	query := config.DB.Order("titulo asc")

	if categoria := c.Query("categoria"); categoria != "" {
		query = query.Where("categoria = ?", categoria)
	}
	if autor := c.Query("autor"); autor != "" {
		query = query.Where("autor LIKE ?", "%"+autor+"%")
	}
	if c.Query("disponible") == "true" {
		query = query.Where("copias_disponibles > 0")
	}

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el catálogo"})
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBook returns a single book by id.
func GetBook(c *gin.Context) {
	var book models.Book
	if err := config.DB.First(&book, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}
	c.JSON(http.StatusOK, book)
}

type bookRequest struct {
	Titulo            string `json:"titulo" binding:"required"`
	Autor             string `json:"autor" binding:"required"`
	ISBN              string `json:"isbn" binding:"required"`
	Categoria         string `json:"categoria"`
	Editorial         string `json:"editorial"`
	AnioPublicacion   int    `json:"añoPublicacion"`
	CopiasDisponibles int    `json:"copiasDisponibles"`
	CopiasTotal       int    `json:"copiasTotal"`
	Ubicacion         string `json:"ubicacion"`
	Estado            string `json:"estado"`
	Descripcion       string `json:"descripcion"`
}

// CreateBook adds a book to the catalog. Librarian/admin only (enforced in
// the route table).
func CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos del libro inválidos"})
		return
	}

	if req.CopiasDisponibles < 0 || req.CopiasTotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Las copias no pueden ser negativas"})
		return
	}
	if req.CopiasDisponibles > req.CopiasTotal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Las copias disponibles no pueden exceder el total de copias"})
		return
	}

	book := models.Book{
		Titulo:            req.Titulo,
		Autor:             req.Autor,
		ISBN:              req.ISBN,
		Categoria:         req.Categoria,
		Editorial:         req.Editorial,
		AnioPublicacion:   req.AnioPublicacion,
		CopiasDisponibles: req.CopiasDisponibles,
		CopiasTotal:       req.CopiasTotal,
		Ubicacion:         req.Ubicacion,
		Estado:            req.Estado,
		Descripcion:       req.Descripcion,
		FechaIngreso:      time.Now(),
	}
	if book.Estado == "" {
		book.Estado = models.LibroDisponible
	}
	book.SyncEstado()

	if err := config.DB.Create(&book).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El ISBN ya está registrado"})
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UpdateBook edits a catalog entry. The available copies may never exceed
// the total, and the total may not drop below the copies currently on loan.
func UpdateBook(c *gin.Context) {
	var book models.Book
	if err := config.DB.First(&book, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos del libro inválidos"})
		return
	}

	if req.CopiasDisponibles > req.CopiasTotal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Las copias disponibles no pueden exceder el total de copias"})
		return
	}
	if prestadas := book.CopiasPrestadas(); req.CopiasTotal < prestadas {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("El total de copias no puede ser menor que %d (copias actualmente prestadas)", prestadas),
		})
		return
	}

	book.Titulo = req.Titulo
	book.Autor = req.Autor
	book.ISBN = req.ISBN
	book.Categoria = req.Categoria
	book.Editorial = req.Editorial
	book.AnioPublicacion = req.AnioPublicacion
	book.CopiasDisponibles = req.CopiasDisponibles
	book.CopiasTotal = req.CopiasTotal
	book.Ubicacion = req.Ubicacion
	book.Descripcion = req.Descripcion
	if req.Estado != "" {
		book.Estado = req.Estado
	}
	book.SyncEstado()

	if err := config.DB.Save(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el libro"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Libro actualizado exitosamente", "libro": book})
}

// DeleteBook removes a book. Refused while copies are still out on loan.
func DeleteBook(c *gin.Context) {
	var book models.Book
	if err := config.DB.First(&book, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Libro no encontrado"})
		return
	}

	var activos int64
	config.DB.Model(&models.Loan{}).
		Where("libro_id = ? AND estado <> ?", book.ID, models.PrestamoDevuelto).
		Count(&activos)
	if activos > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "No se puede eliminar un libro con préstamos activos"})
		return
	}

	if err := config.DB.Delete(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el libro"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Libro eliminado exitosamente"})
}
