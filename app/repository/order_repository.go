package repository

import (
	"github.com/LukasBrandt/PaySweep/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByPaymentReference(reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("payment_reference = ?", reference).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePaymentVerification writes the only order fields the reconciliation
// engine is allowed to touch.
func (r *orderRepository) UpdatePaymentVerification(id uint, providerID string, verified bool) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_provider_id": providerID,
			"payment_verified":    verified,
		}).Error
}
