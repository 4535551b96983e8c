package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/pkg/validate"
)

func validRequest() *mapper.OrderRequest {
	return &mapper.OrderRequest{
		BusinessOrderID:   "X-1",
		TotalValue:        decimal.NewFromInt(500),
		CreationTimestamp: "2024-01-01T00:00:00Z",
		Items: []mapper.ItemRequest{
			{ExternalProductID: "77", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		},
	}
}

func TestOrderValidator_ValidateCreate(t *testing.T) {
	v := validate.NewOrderValidator()
	ctx := context.Background()

	t.Run("valid order", func(t *testing.T) {
		if err := v.ValidateCreate(ctx, validRequest()); err != nil {
			t.Fatalf("expected valid order, got: %v", err)
		}
	})

	t.Run("free item", func(t *testing.T) {
		r := validRequest()
		r.Items[0].UnitPrice = decimal.Zero
		if err := v.ValidateCreate(ctx, r); err != nil {
			t.Fatalf("zero unit price must be allowed, got: %v", err)
		}
	})

	type testCase struct {
		name    string
		makeReq func() *mapper.OrderRequest
		msg     string
	}

	cases := []testCase{
		{
			name:    "nil order",
			makeReq: func() *mapper.OrderRequest { return nil },
			msg:     "nil",
		},
		{
			name: "empty businessOrderId",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.BusinessOrderID = "  "
				return r
			},
			msg: "businessOrderId",
		},
		{
			name: "missing totalValue",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.TotalValue = decimal.Decimal{}
				return r
			},
			msg: "totalValue",
		},
		{
			name: "negative totalValue",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.TotalValue = decimal.NewFromInt(-1)
				return r
			},
			msg: "totalValue",
		},
		{
			name: "missing creationTimestamp",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.CreationTimestamp = ""
				return r
			},
			msg: "creationTimestamp",
		},
		{
			name: "no items",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.Items = []mapper.ItemRequest{}
				return r
			},
			msg: "items",
		},
		{
			name: "empty product id",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.Items[0].ExternalProductID = ""
				return r
			},
			msg: "items[0].externalProductId",
		},
		{
			name: "zero quantity",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.Items[0].Quantity = 0
				return r
			},
			msg: "items[0].quantity",
		},
		{
			name: "negative price",
			makeReq: func() *mapper.OrderRequest {
				r := validRequest()
				r.Items = append(r.Items, mapper.ItemRequest{
					ExternalProductID: "1", Quantity: 1, UnitPrice: decimal.NewFromInt(-5),
				})
				return r
			},
			msg: "items[1].unitPrice",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateCreate(ctx, tc.makeReq())
			if !errors.Is(err, validate.ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected message to mention %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestOrderValidator_ValidateUpdate(t *testing.T) {
	v := validate.NewOrderValidator()
	ctx := context.Background()

	r := validRequest()
	r.Items = []mapper.ItemRequest{}
	if err := v.ValidateUpdate(ctx, r); err != nil {
		t.Fatalf("empty item list must be accepted on update, got %v", err)
	}

	r.Items = nil
	if err := v.ValidateUpdate(ctx, r); !errors.Is(err, validate.ErrInvalidOrder) {
		t.Fatalf("missing items must be rejected, got %v", err)
	}

	r = validRequest()
	r.Items[0].Quantity = -1
	if err := v.ValidateUpdate(ctx, r); !errors.Is(err, validate.ErrInvalidOrder) {
		t.Fatalf("item rules apply on update, got %v", err)
	}
}
