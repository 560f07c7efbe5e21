package workers

import (
	"log"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/controllers"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/utils"

	"gorm.io/gorm"
)

// Sweeper periodically marks overdue loans, keeps their fine estimates
// current and expires reservations whose pickup window has passed.
type Sweeper struct {
	DB       *gorm.DB
	Interval time.Duration
}

func NewSweeper(db *gorm.DB, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{DB: db, Interval: interval}
}

// Start runs an initial sweep and then one per interval, in the background.
func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.Interval)
	go func() {
		s.Check()
		for range ticker.C {
			s.Check()
		}
	}()
}

// Check performs a single sweep.
func (s *Sweeper) Check() {
	now := time.Now()
	policy := config.GetLoanPolicy()

	var loans []models.Loan
	err := s.DB.Preload("Libro").
		Where("estado <> ? AND fecha_devolucion_esperada < ?", models.PrestamoDevuelto, now).
		Find(&loans).Error
	if err != nil {
		log.Println("Sweeper: error al consultar préstamos:", err)
		return
	}

	for _, loan := range loans {
		diasRetraso := utils.DaysLate(loan.FechaDevolucionEsperada, now)
		multa := utils.LateFee(diasRetraso, policy.MultaPorDia)

		recienVencido := loan.Estado != models.PrestamoVencido
		loan.Estado = models.PrestamoVencido
		loan.DiasRetraso = diasRetraso
		loan.MultaGenerada = multa
		if err := s.DB.Save(&loan).Error; err != nil {
			log.Println("Sweeper: error al actualizar préstamo:", err)
			continue
		}

		if recienVencido && loan.Libro != nil {
			log.Printf("Sweeper: préstamo %d vencido (%d días, multa %.2f)", loan.ID, diasRetraso, multa)
			controllers.NotifyLoanOverdue(loan, *loan.Libro)
		}
	}

	s.expireReservations(now)
}

// expireReservations cancels notified reservations whose pickup window has
// closed and shifts the remaining queue up.
func (s *Sweeper) expireReservations(now time.Time) {
	var expired []models.Reservation
	err := s.DB.Where("estado = ? AND fecha_expiracion IS NOT NULL AND fecha_expiracion < ?",
		models.ReservaNotificada, now).
		Find(&expired).Error
	if err != nil {
		log.Println("Sweeper: error al consultar reservas:", err)
		return
	}

	for i := range expired {
		if err := controllers.CancelAndRequeue(s.DB, &expired[i]); err != nil {
			log.Println("Sweeper: error al expirar reserva:", err)
			continue
		}
		log.Printf("Sweeper: reserva %d expirada sin retiro", expired[i].ID)
	}
}
