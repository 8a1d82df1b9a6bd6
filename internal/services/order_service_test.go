package services

import (
	"errors"
	"testing"

	"restaurant_pos_backend/internal/models"
)

func TestValidateCreateOrderRequest(t *testing.T) {
	item := CreateOrderItemRequest{Name: "Shawarma", Type: "food", Quantity: 1, UnitPrice: 15}

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr bool
	}{
		{
			"valid cash order",
			CreateOrderRequest{Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentCash},
			false,
		},
		{
			"valid card order",
			CreateOrderRequest{Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentCard},
			false,
		},
		{
			"valid mixed order",
			CreateOrderRequest{
				Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentMixed,
				CashAmount: moneyPtr(5), CardAmount: moneyPtr(10),
			},
			false,
		},
		{
			"mixed without split",
			CreateOrderRequest{Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentMixed},
			true,
		},
		{
			"valid delivery order",
			CreateOrderRequest{
				Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentDelivery,
				DeliveryPlatform: strPtr(models.PlatformHungerStation),
			},
			false,
		},
		{
			"delivery without platform",
			CreateOrderRequest{Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentDelivery},
			true,
		},
		{
			"delivery with unknown platform",
			CreateOrderRequest{
				Items: []CreateOrderItemRequest{item}, PaymentMethod: models.PaymentDelivery,
				DeliveryPlatform: strPtr("ubereats"),
			},
			true,
		},
		{
			"unknown payment method",
			CreateOrderRequest{Items: []CreateOrderItemRequest{item}, PaymentMethod: "crypto"},
			true,
		},
		{
			"no items",
			CreateOrderRequest{PaymentMethod: models.PaymentCash},
			true,
		},
		{
			"zero quantity",
			CreateOrderRequest{
				Items:         []CreateOrderItemRequest{{Name: "Cola", Type: "drink", Quantity: 0, UnitPrice: 5}},
				PaymentMethod: models.PaymentCash,
			},
			true,
		},
		{
			"negative unit price",
			CreateOrderRequest{
				Items:         []CreateOrderItemRequest{{Name: "Cola", Type: "drink", Quantity: 1, UnitPrice: -5}},
				PaymentMethod: models.PaymentCash,
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreateOrderRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateCreateOrderRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}
