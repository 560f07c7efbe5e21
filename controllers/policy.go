package controllers

import (
	"net/http"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
)

// GetLoanPolicy returns the current lending rules.
func GetLoanPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetLoanPolicy())
}

type policyRequest struct {
	DiasPrestamo           int     `json:"diasPrestamo" binding:"required"`
	MaxRenovaciones        int     `json:"maxRenovaciones"`
	MultaPorDia            float64 `json:"multaPorDia"`
	HorasExpiracionReserva int     `json:"horasExpiracionReserva" binding:"required"`
}

// UpdateLoanPolicy replaces the lending rules. Admin only (enforced in the
// route table).
func UpdateLoanPolicy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de la política inválidos"})
		return
	}

	if req.DiasPrestamo <= 0 || req.MaxRenovaciones < 0 || req.MultaPorDia < 0 || req.HorasExpiracionReserva <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valores de la política fuera de rango"})
		return
	}

	policy := models.LoanPolicy{
		DiasPrestamo:           req.DiasPrestamo,
		MaxRenovaciones:        req.MaxRenovaciones,
		MultaPorDia:            req.MultaPorDia,
		HorasExpiracionReserva: req.HorasExpiracionReserva,
	}
	if err := config.SetLoanPolicy(config.DB, policy); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la política"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Política actualizada exitosamente", "politica": config.GetLoanPolicy()})
}
