package mapper_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/mapper"
)

// decimal.Decimal сравниваем по значению, а не по внутреннему представлению.
var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestToInternal_Basic(t *testing.T) {
	req := &mapper.OrderRequest{
		BusinessOrderID:   "X-1",
		TotalValue:        decimal.NewFromInt(500),
		CreationTimestamp: "2024-01-01T00:00:00Z",
		Items: []mapper.ItemRequest{
			{ExternalProductID: "77", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		},
	}

	got, err := mapper.ToInternal(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &domain.Order{
		OrderID:      "X-1",
		Value:        decimal.NewFromInt(500),
		CreationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Items:        []domain.Item{{ProductID: 77, Quantity: 2, Price: decimal.NewFromInt(250)}},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("ToInternal mismatch (-want +got):\n%s", diff)
	}

	resp := mapper.ToExternal(got)
	if resp.CreationDate != "2024-01-01T00:00:00.000Z" {
		t.Fatalf("creationDate = %q", resp.CreationDate)
	}
	if resp.Items[0].ProductID != 77 || resp.Value != 500 || resp.OrderID != "X-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestToInternal_EmptyItems(t *testing.T) {
	got, err := mapper.ToInternal(&mapper.OrderRequest{
		BusinessOrderID:   "X-2",
		TotalValue:        decimal.NewFromInt(1),
		CreationTimestamp: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", got.Items)
	}
}

func TestToInternal_MalformedProductID(t *testing.T) {
	for _, raw := range []string{"abc", "77abc", "", "7.5"} {
		t.Run(raw, func(t *testing.T) {
			_, err := mapper.ToInternal(&mapper.OrderRequest{
				BusinessOrderID:   "X-1",
				TotalValue:        decimal.NewFromInt(1),
				CreationTimestamp: "2024-01-01T00:00:00Z",
				Items:             []mapper.ItemRequest{{ExternalProductID: mapper.ProductRef(raw), Quantity: 1}},
			})
			if !errors.Is(err, domain.ErrMalformedField) {
				t.Fatalf("expected ErrMalformedField, got %v", err)
			}
			var mfe *domain.MalformedFieldError
			if !errors.As(err, &mfe) || mfe.Field != "items[0].externalProductId" {
				t.Fatalf("expected MalformedFieldError for product id, got %#v", err)
			}
		})
	}
}

func TestToInternal_MalformedTimestamp(t *testing.T) {
	_, err := mapper.ToInternal(&mapper.OrderRequest{
		BusinessOrderID:   "X-1",
		TotalValue:        decimal.NewFromInt(1),
		CreationTimestamp: "yesterday",
	})
	var mfe *domain.MalformedFieldError
	if !errors.As(err, &mfe) || mfe.Field != "creationTimestamp" {
		t.Fatalf("expected MalformedFieldError for creationTimestamp, got %v", err)
	}
}

func TestNormalizeTimestamp_Layouts(t *testing.T) {
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2024-01-01T12:30:00Z":            want,
		"2024-01-01T15:30:00+03:00":       want,
		"2024-01-01T12:30:00.000Z":        want,
		"2024-01-01T12:30:00":             want,
		"2024-01-01T12:30":                want,
		"2024-01-01 12:30:00":             want,
		"2024-01-01 15:30:00+03:00":       want,
		"Mon, 01 Jan 2024 12:30:00 +0000": want,
		"2024-01-01":                      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"2024-01-01T12:30:00.123456789Z":  want.Add(123 * time.Millisecond),
	}
	for in, exp := range cases {
		got, err := mapper.NormalizeTimestamp(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if !got.Equal(exp) || got.Location() != time.UTC {
			t.Fatalf("%q: got %v, want %v", in, got, exp)
		}
	}
}

func TestToExternal_RoundTripStable(t *testing.T) {
	order := &domain.Order{
		OrderID:      "A",
		Value:        decimal.RequireFromString("10.50"),
		CreationDate: time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC),
		Items: []domain.Item{
			{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("1.5")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("6")},
		},
	}

	first := mapper.ToExternal(order)
	second := mapper.ToExternal(order)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ToExternal not deterministic:\n%s", diff)
	}

	want := &mapper.OrderResponse{
		OrderID:      "A",
		Value:        10.5,
		CreationDate: "2024-05-06T07:08:09.010Z",
		Items: []mapper.ItemResponse{
			{ProductID: 1, Quantity: 3, Price: 1.5},
			{ProductID: 2, Quantity: 1, Price: 6},
		},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("ToExternal mismatch (-want +got):\n%s", diff)
	}
}

func TestToExternalList(t *testing.T) {
	if got := mapper.ToExternalList(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}

	orders := []*domain.Order{{OrderID: "b"}, {OrderID: "a"}}
	got := mapper.ToExternalList(orders)
	if len(got) != 2 || got[0].OrderID != "b" || got[1].OrderID != "a" {
		t.Fatalf("order not preserved: %+v", got)
	}
	// пустой список позиций сериализуется как [], а не null
	raw, err := json.Marshal(got[0])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if items, ok := m["items"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected items: [], got %s", raw)
	}
}

func TestOrderRequest_DecodeProductRef(t *testing.T) {
	body := `{"businessOrderId":"X-1","totalValue":500,"creationTimestamp":"2024-01-01T00:00:00Z",
		"items":[{"externalProductId":"77","quantity":1,"unitPrice":1.25},
		         {"externalProductId":78,"quantity":2,"unitPrice":"3"}]}`

	var req mapper.OrderRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Items[0].ExternalProductID != "77" || req.Items[1].ExternalProductID != "78" {
		t.Fatalf("unexpected product refs: %+v", req.Items)
	}
	if !req.Items[0].UnitPrice.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("unexpected unit price: %s", req.Items[0].UnitPrice)
	}

	var bad mapper.OrderRequest
	if err := json.Unmarshal([]byte(`{"items":[{"externalProductId":true}]}`), &bad); err == nil {
		t.Fatalf("expected error for boolean product id")
	}
}
