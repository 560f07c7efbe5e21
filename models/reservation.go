package models

import "time"

// Estados de una reserva.
const (
	ReservaPendiente  = "pendiente"
	ReservaNotificada = "notificada"
	ReservaCompletada = "completada"
	ReservaCancelada  = "cancelada"
)

type Reservation struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UsuarioID         uint       `json:"usuarioId" gorm:"not null;index"`
	LibroID           uint       `json:"libroId" gorm:"not null;index"`
	Usuario           *User      `json:"usuario,omitempty" gorm:"foreignKey:UsuarioID"`
	Libro             *Book      `json:"libro,omitempty" gorm:"foreignKey:LibroID"`
	FechaReserva      time.Time  `json:"fechaReserva"`
	Estado            string     `json:"estado" gorm:"default:pendiente"`
	FechaNotificacion *time.Time `json:"fechaNotificacion"`
	FechaExpiracion   *time.Time `json:"fechaExpiracion"`
	Prioridad         int        `json:"prioridad"`
}

// Viva reports whether the reservation still holds a place in the queue.
func (r Reservation) Viva() bool {
	return r.Estado == ReservaPendiente || r.Estado == ReservaNotificada
}
