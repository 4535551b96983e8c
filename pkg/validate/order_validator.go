package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// OrderValidator — проверка внешнего запроса до маппинга.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме;
// формат значений (целочисленный id товара, дата) проверяет mapper.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// ValidateCreate — новый заказ обязан содержать хотя бы одну позицию.
func (v *OrderValidator) ValidateCreate(_ context.Context, req *mapper.OrderRequest) error {
	if err := v.validateCore(req); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", ErrInvalidOrder)
	}
	return v.validateItems(req.Items)
}

// ValidateUpdate — список позиций обязан присутствовать, но может быть пустым
// (заказ после обновления останется без позиций).
func (v *OrderValidator) ValidateUpdate(_ context.Context, req *mapper.OrderRequest) error {
	if err := v.validateCore(req); err != nil {
		return err
	}
	if req.Items == nil {
		return fmt.Errorf("%w: items обязателен", ErrInvalidOrder)
	}
	return v.validateItems(req.Items)
}

// validateCore — валидация полей заголовка.
func (v *OrderValidator) validateCore(req *mapper.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if strings.TrimSpace(req.BusinessOrderID) == "" {
		return fmt.Errorf("%w: businessOrderId обязателен", ErrInvalidOrder)
	}
	if req.TotalValue.IsZero() {
		return fmt.Errorf("%w: totalValue обязателен", ErrInvalidOrder)
	}
	if req.TotalValue.IsNegative() {
		return fmt.Errorf("%w: totalValue должен быть положительным", ErrInvalidOrder)
	}
	if strings.TrimSpace(req.CreationTimestamp) == "" {
		return fmt.Errorf("%w: creationTimestamp обязателен", ErrInvalidOrder)
	}
	return nil
}

// Валидация позиций
func (v *OrderValidator) validateItems(items []mapper.ItemRequest) error {
	for i := range items {
		item := &items[i]

		if strings.TrimSpace(string(item.ExternalProductID)) == "" {
			return fmt.Errorf("%w: items[%d].externalProductId обязателен", ErrInvalidOrder, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity должен быть положительным", ErrInvalidOrder, i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: items[%d].unitPrice должен быть неотрицательным", ErrInvalidOrder, i)
		}
	}
	return nil
}
