package controllers

import (
	"fmt"
	"net/http"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
)

// GetUsers lists every account. Admin only (enforced in the route table).
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("apellido asc, nombre asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los usuarios"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type changeRoleRequest struct {
	Rol string `json:"rol" binding:"required"`
}

// ChangeUserRole assigns a new role to an account. Admins cannot change
// their own role.
func ChangeUserRole(c *gin.Context) {
	adminID, _ := middlewares.CurrentUserID(c)

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Rol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rol inválido"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	if user.ID == adminID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No puede cambiar su propio rol"})
		return
	}

	user.Rol = req.Rol
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el rol"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": fmt.Sprintf("Rol de %s actualizado a %s", user.Correo, user.Rol),
		"usuario": user,
	})
}

type fineRequest struct {
	Accion string  `json:"accion" binding:"required"` // pagar | agregar
	Monto  float64 `json:"monto" binding:"required"`
}

// ManageUserFine adds to or pays down an account's fine balance.
func ManageUserFine(c *gin.Context) {
	var req fineRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Monto <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Monto inválido"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	switch req.Accion {
	case "pagar":
		user.Multas -= req.Monto
		if user.Multas < 0 {
			user.Multas = 0
		}
	case "agregar":
		user.Multas += req.Monto
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Acción inválida, use 'pagar' o 'agregar'"})
		return
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar las multas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Multas actualizadas exitosamente", "usuario": user})
}

// ToggleUserStatus activates or deactivates an account. Deactivated users
// cannot log in and their tokens stop passing the auth middleware. Admins
// cannot deactivate themselves.
func ToggleUserStatus(c *gin.Context) {
	adminID, _ := middlewares.CurrentUserID(c)

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	if user.ID == adminID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No puede desactivar su propia cuenta"})
		return
	}

	user.Activo = !user.Activo
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el estado"})
		return
	}

	estado := "desactivada"
	if user.Activo {
		estado = "activada"
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje": fmt.Sprintf("Cuenta de %s %s exitosamente", user.Correo, estado),
		"usuario": user,
	})
}
