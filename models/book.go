package models

import "time"

// Estados de un libro en el catálogo.
const (
	LibroDisponible    = "disponible"
	LibroAgotado       = "agotado"
	LibroMantenimiento = "en mantenimiento"
)

type Book struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Titulo            string    `json:"titulo" gorm:"not null"`
	Autor             string    `json:"autor" gorm:"not null"`
	ISBN              string    `json:"isbn" gorm:"unique;not null"`
	Categoria         string    `json:"categoria"`
	Editorial         string    `json:"editorial"`
	AnioPublicacion   int       `json:"añoPublicacion"`
	CopiasDisponibles int       `json:"copiasDisponibles"`
	CopiasTotal       int       `json:"copiasTotal"`
	Ubicacion         string    `json:"ubicacion"`
	Estado            string    `json:"estado" gorm:"default:disponible"`
	Descripcion       string    `json:"descripcion"`
	FechaIngreso      time.Time `json:"fechaIngreso"`
}

// SyncEstado derives the catalog state from the available copies.
// A book in maintenance keeps that state until changed explicitly.
func (b *Book) SyncEstado() {
	if b.Estado == LibroMantenimiento {
		return
	}
	if b.CopiasDisponibles == 0 {
		b.Estado = LibroAgotado
	} else {
		b.Estado = LibroDisponible
	}
}

// CopiasPrestadas returns how many copies are currently out on loan.
func (b Book) CopiasPrestadas() int {
	return b.CopiasTotal - b.CopiasDisponibles
}
