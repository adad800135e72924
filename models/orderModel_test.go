package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresCustomerFields(t *testing.T) {
	order := Order{}
	errs := order.Validate()

	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "address")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "payType")
	assert.Contains(t, errs, "orderItems")
}

func TestValidatePassesForCompleteOrder(t *testing.T) {
	order := Order{
		Name:    "Ann",
		Address: "1 Rd",
		Email:   "a@x.com",
		PayType: PayTypeCheck,
		OrderItems: []OrderItem{
			{ProductId: 1, ProductName: "Widget", ProductPrice: 100, Quantity: 2},
		},
	}

	assert.Empty(t, order.Validate())
}

func TestValidateReportsOnlyMissingFields(t *testing.T) {
	order := Order{
		Name:    "Ann",
		Address: "1 Rd",
		PayType: PayTypeCheck,
		OrderItems: []OrderItem{
			{ProductId: 1, Quantity: 1},
		},
	}

	errs := order.Validate()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "email")
}

func TestPermittedPayTypeFields(t *testing.T) {
	assert.Equal(t, []string{"creditCardNumber", "expirationDate"}, PermittedPayTypeFields(PayTypeCreditCard))
	assert.Equal(t, []string{"routingNumber", "accountNumber"}, PermittedPayTypeFields(PayTypeCheck))
	assert.Equal(t, []string{"poNumber"}, PermittedPayTypeFields(PayTypePurchaseOrder))
	assert.Empty(t, PermittedPayTypeFields("Bitcoin"))
	assert.Empty(t, PermittedPayTypeFields(""))
}

func TestAddLineItemsFromCartSnapshotsCurrentPrices(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductId: 1, Quantity: 2},
			{ProductId: 2, Quantity: 1},
		},
	}
	products := map[int]Product{
		1: {Name: "Widget", Price: 100},
		2: {Name: "Gadget", Price: 250},
	}

	var order Order
	order.AddLineItemsFromCart(cart, products)

	assert.Len(t, order.OrderItems, 2)
	assert.Equal(t, "Widget", order.OrderItems[0].ProductName)
	assert.Equal(t, 100, order.OrderItems[0].ProductPrice)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	assert.Equal(t, "Gadget", order.OrderItems[1].ProductName)
	assert.Equal(t, 250, order.OrderItems[1].ProductPrice)
}

func TestAddLineItemsFromCartSkipsMissingProducts(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductId: 1, Quantity: 2},
			{ProductId: 99, Quantity: 1},
		},
	}
	products := map[int]Product{
		1: {Name: "Widget", Price: 100},
	}

	var order Order
	order.AddLineItemsFromCart(cart, products)

	assert.Len(t, order.OrderItems, 1)
	assert.Equal(t, 1, order.OrderItems[0].ProductId)
}

func TestAddLineItemsFromCartWithNilCart(t *testing.T) {
	var order Order
	order.AddLineItemsFromCart(nil, nil)
	assert.Empty(t, order.OrderItems)
}
