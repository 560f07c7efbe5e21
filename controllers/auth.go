package controllers

import (
	"net/http"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Nombre          string `json:"nombre" binding:"required"`
	Apellido        string `json:"apellido" binding:"required"`
	Correo          string `json:"correo" binding:"required,email"`
	Password        string `json:"contraseña" binding:"required,min=6"`
	Edad            int    `json:"edad" binding:"required"`
	NumeroIdentidad string `json:"numeroIdentidad" binding:"required"`
	Telefono        string `json:"telefono" binding:"required"`
}

// Register creates a new account. Role is always "usuario", fines start at
// zero and the account is active.
func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de registro inválidos"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("correo = ? OR numero_identidad = ?", req.Correo, req.NumeroIdentidad).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "El correo o número de identidad ya está registrado"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar la contraseña"})
		return
	}

	user := models.User{
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		Correo:          req.Correo,
		Password:        string(hashedPassword),
		Edad:            req.Edad,
		NumeroIdentidad: req.NumeroIdentidad,
		Telefono:        req.Telefono,
		Rol:             models.RolUsuario,
		Activo:          true,
		FechaRegistro:   time.Now(),
		Multas:          0,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El correo o número de identidad ya está registrado"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"mensaje": "Usuario registrado exitosamente",
		"usuario": user,
	})
}

type loginRequest struct {
	Correo   string `json:"correo" binding:"required"`
	Password string `json:"contraseña" binding:"required"`
}

// Login authenticates a user and returns a JWT token with claims
// correo, rol and userId.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Correo y contraseña son requeridos"})
		return
	}

	var user models.User
	if err := config.DB.Where("correo = ?", req.Correo).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Correo o contraseña incorrectos"})
		return
	}

	if !user.Activo {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cuenta inactiva. Contacte al administrador."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Correo o contraseña incorrectos"})
		return
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"usuario": user,
	})
}

// GetProfile returns the authenticated user's profile.
func GetProfile(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	c.JSON(http.StatusOK, user)
}
