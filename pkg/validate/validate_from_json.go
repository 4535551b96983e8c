package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/internal/ports"
)

// ErrInvalidJSON — тело не разбирается как OrderRequest (лишние поля, хвост, синтаксис).
var ErrInvalidJSON = errors.New("invalid json")

// DecodeOrderRequest — строгий разбор: неизвестные поля и данные после объекта запрещены.
func DecodeOrderRequest(raw []byte) (*mapper.OrderRequest, error) {
	var req mapper.OrderRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return &req, nil
}

// ValidateOrderFromJSON — разбор, валидация как нового заказа и нормализация через mapper.
// Возвращает заказ в том виде, в каком его отдаст сервис.
func ValidateOrderFromJSON(ctx context.Context, validator ports.OrderValidator, raw []byte) (*mapper.OrderResponse, error) {
	req, err := DecodeOrderRequest(raw)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateCreate(ctx, req); err != nil {
		return nil, err
	}
	order, err := mapper.ToInternal(req)
	if err != nil {
		return nil, err
	}
	return mapper.ToExternal(order), nil
}
