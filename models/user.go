package models

import "time"

// Roles del sistema bibliotecario.
const (
	RolUsuario       = "usuario"
	RolBibliotecario = "bibliotecario"
	RolAdmin         = "admin"
)

// ValidRole reports whether rol is one of the known roles.
func ValidRole(rol string) bool {
	return rol == RolUsuario || rol == RolBibliotecario || rol == RolAdmin
}

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Nombre          string    `json:"nombre" gorm:"not null"`
	Apellido        string    `json:"apellido" gorm:"not null"`
	Correo          string    `json:"correo" gorm:"unique;not null"`
	Password        string    `json:"-" gorm:"column:contrasena;not null"` // Store hashed password
	Edad            int       `json:"edad"`
	NumeroIdentidad string    `json:"numeroIdentidad" gorm:"unique;not null"`
	Telefono        string    `json:"telefono"`
	Rol             string    `json:"rol" gorm:"default:usuario"`
	Activo          bool      `json:"activo" gorm:"default:true"`
	FechaRegistro   time.Time `json:"fechaRegistro"`
	Multas          float64   `json:"multas" gorm:"default:0"`
}

// NombreCompleto returns "Nombre Apellido" for display and reports.
func (u User) NombreCompleto() string {
	return u.Nombre + " " + u.Apellido
}
