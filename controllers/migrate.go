package controllers

import (
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"gorm.io/gorm"
)

// MigrateModels runs the database migrations
func MigrateModels(db *gorm.DB) {
	config.DB = db
	db.AutoMigrate(&models.User{}, &models.Book{}, &models.Loan{}, &models.Reservation{}, &models.LoanPolicy{})
}
