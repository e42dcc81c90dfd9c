package repository

import (
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	var o models.Order
	if err := r.db.First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIDWithChildren loads an order with its items and status history.
func (r *OrderRepository) GetByIDWithChildren(id string) (*models.Order, error) {
	var o models.Order
	err := r.db.Preload("Items").Preload("History").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) CreateItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// HasItems reports whether any line items exist for the order. Guards the
// materializer against duplicating items on a partial-failure retry.
func (r *OrderRepository) HasItems(orderID string) (bool, error) {
	var n int64
	err := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error
	return n > 0, err
}

func (r *OrderRepository) CreateStatusHistory(h *models.OrderStatusHistory) error {
	return r.db.Create(h).Error
}

func (r *OrderRepository) HasStatusHistory(orderID string) (bool, error) {
	var n int64
	err := r.db.Model(&models.OrderStatusHistory{}).Where("order_id = ?", orderID).Count(&n).Error
	return n > 0, err
}
