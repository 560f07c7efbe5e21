package models

// LoanPolicy stores the lending rules as a single row, editable by admins.
type LoanPolicy struct {
	ID                     uint    `json:"id" gorm:"primaryKey"`
	DiasPrestamo           int     `json:"diasPrestamo" gorm:"default:14"`
	MaxRenovaciones        int     `json:"maxRenovaciones" gorm:"default:2"`
	MultaPorDia            float64 `json:"multaPorDia" gorm:"default:5"`
	HorasExpiracionReserva int     `json:"horasExpiracionReserva" gorm:"default:48"`
}
