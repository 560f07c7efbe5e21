package config

import (
	"sync"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"gorm.io/gorm"
)

var (
	currentPolicy models.LoanPolicy
	policyMutex   sync.Mutex
)

const loanPolicyID = 1 // Single global policy row

// InitLoanPolicy loads the lending policy from the database or creates the
// default row if one doesn't exist. This should be called on application
// startup.
func InitLoanPolicy(db *gorm.DB) error {
	policyMutex.Lock()
	defer policyMutex.Unlock()

	var policy models.LoanPolicy
	result := db.First(&policy, loanPolicyID)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			policy = models.LoanPolicy{
				ID:                     loanPolicyID,
				DiasPrestamo:           14,
				MaxRenovaciones:        2,
				MultaPorDia:            5,
				HorasExpiracionReserva: 48,
			}
			if err := db.Create(&policy).Error; err != nil {
				return err
			}
		} else {
			return result.Error
		}
	}

	currentPolicy = policy
	return nil
}

// GetLoanPolicy returns the current cached lending policy.
func GetLoanPolicy() models.LoanPolicy {
	policyMutex.Lock()
	defer policyMutex.Unlock()
	return currentPolicy
}

// SetLoanPolicy updates the lending policy in both the database and the cache.
func SetLoanPolicy(db *gorm.DB, policy models.LoanPolicy) error {
	policyMutex.Lock()
	defer policyMutex.Unlock()

	policy.ID = loanPolicyID
	if err := db.Save(&policy).Error; err != nil {
		return err
	}

	currentPolicy = policy
	return nil
}
