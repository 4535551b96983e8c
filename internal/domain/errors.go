package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOrder — заказ с таким order_id уже существует (нарушение уникальности).
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrPersistence — любой другой сбой хранилища, включая откат посреди транзакции.
	ErrPersistence = errors.New("persistence failure")
	// ErrMalformedField — поле запроса нельзя привести к внутреннему виду.
	ErrMalformedField = errors.New("malformed field")
)

// MalformedFieldError — ошибка маппинга конкретного поля.
// errors.Is(err, ErrMalformedField) для неё истинно.
type MalformedFieldError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s=%q", ErrMalformedField, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s=%q: %v", ErrMalformedField, e.Field, e.Value, e.Err)
}

func (e *MalformedFieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedField}
	}
	return []error{ErrMalformedField, e.Err}
}

// IsDuplicate — конфликт бизнес-ключа при создании.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateOrder)
}

// IsMalformed — ошибка маппинга входных данных.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedField)
}
