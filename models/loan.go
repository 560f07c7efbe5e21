package models

import "time"

// Estados de un préstamo.
const (
	PrestamoActivo   = "activo"
	PrestamoDevuelto = "devuelto"
	PrestamoVencido  = "vencido"
)

type Loan struct {
	ID                      uint       `json:"id" gorm:"primaryKey"`
	UsuarioID               uint       `json:"usuarioId" gorm:"not null;index"`
	LibroID                 uint       `json:"libroId" gorm:"not null;index"`
	Usuario                 *User      `json:"usuario,omitempty" gorm:"foreignKey:UsuarioID"`
	Libro                   *Book      `json:"libro,omitempty" gorm:"foreignKey:LibroID"`
	FechaPrestamo           time.Time  `json:"fechaPrestamo"`
	FechaDevolucionEsperada time.Time  `json:"fechaDevolucionEsperada"`
	FechaDevolucionReal     *time.Time `json:"fechaDevolucionReal"`
	DiasRetraso             int        `json:"diasRetraso"`
	MultaGenerada           float64    `json:"multaGenerada"`
	Estado                  string     `json:"estado" gorm:"default:activo"`
	Renovaciones            int        `json:"renovaciones"`
}

// Devuelto reports whether the loan has already been returned.
func (l Loan) Devuelto() bool {
	return l.Estado == PrestamoDevuelto || l.FechaDevolucionReal != nil
}

// Atrasado reports whether the loan is past its expected return date at t.
func (l Loan) Atrasado(t time.Time) bool {
	return !l.Devuelto() && t.After(l.FechaDevolucionEsperada)
}
