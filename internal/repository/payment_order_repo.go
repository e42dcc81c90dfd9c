package repository

import (
	"errors"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"

	"gorm.io/gorm"
)

type PaymentOrderRepository struct {
	db *gorm.DB
}

func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

func (r *PaymentOrderRepository) Create(p *models.PaymentOrder) error {
	return r.db.Create(p).Error
}

func (r *PaymentOrderRepository) GetByID(id string) (*models.PaymentOrder, error) {
	var p models.PaymentOrder
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentOrderRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentOrder, error) {
	var p models.PaymentOrder
	if err := r.db.Where("gateway_order_id = ?", gatewayOrderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentOrderRepository) GetByGatewayPaymentID(gatewayPaymentID string) (*models.PaymentOrder, error) {
	var p models.PaymentOrder
	if err := r.db.Where("gateway_payment_id = ?", gatewayPaymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateFields applies a partial update to a single row.
func (r *PaymentOrderRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.PaymentOrder{}).Where("id = ?", id).Updates(fields).Error
}

// ClaimOrderPointer sets the order pointer from NULL to orderID in one
// conditional UPDATE. Exactly one concurrent caller can win the claim for a
// given payment order; everyone else sees false and must read back the
// pointer written by the winner.
func (r *PaymentOrderRepository) ClaimOrderPointer(id, orderID string) (bool, error) {
	res := r.db.Model(&models.PaymentOrder{}).
		Where("id = ? AND order_id IS NULL", id).
		Update("order_id", orderID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IsNotFound reports whether err is the store's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
