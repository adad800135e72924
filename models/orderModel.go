package models

import "gorm.io/gorm"

const (
	PayTypeCreditCard    = "Credit card"
	PayTypeCheck         = "Check"
	PayTypePurchaseOrder = "Purchase order"
)

type Order struct {
	gorm.Model
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	PayType string `json:"payType"`

	// Exactly one sub-field group is populated, selected by PayType.
	CreditCardNumber string `json:"creditCardNumber,omitempty"`
	ExpirationDate   string `json:"expirationDate,omitempty"`
	RoutingNumber    string `json:"routingNumber,omitempty"`
	AccountNumber    string `json:"accountNumber,omitempty"`
	PoNumber         string `json:"poNumber,omitempty"`

	OrderItems []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a snapshot of a cart item, carrying the product's name and
// price at placement time. It is owned by the order, never shared with a cart.
type OrderItem struct {
	gorm.Model
	OrderID      int    `json:"orderId"`
	ProductId    int    `json:"productId"`
	ProductName  string `json:"productName"`
	ProductPrice int    `json:"productPrice"`
	Quantity     int    `json:"quantity"`
}

// PayTypes lists the accepted payment methods.
func PayTypes() []string {
	return []string{PayTypeCreditCard, PayTypeCheck, PayTypePurchaseOrder}
}

// PermittedPayTypeFields maps a payment type to the extra input fields it
// accepts. An unrecognized pay type gets no sub-fields rather than an error.
func PermittedPayTypeFields(payType string) []string {
	switch payType {
	case PayTypeCreditCard:
		return []string{"creditCardNumber", "expirationDate"}
	case PayTypeCheck:
		return []string{"routingNumber", "accountNumber"}
	case PayTypePurchaseOrder:
		return []string{"poNumber"}
	default:
		return nil
	}
}

// Validate checks the rules an order must satisfy before it may be persisted.
// It returns a field -> message map, empty when the order is valid.
func (o *Order) Validate() map[string]string {
	errs := make(map[string]string)
	if o.Name == "" {
		errs["name"] = "can't be blank"
	}
	if o.Address == "" {
		errs["address"] = "can't be blank"
	}
	if o.Email == "" {
		errs["email"] = "can't be blank"
	}
	if o.PayType == "" {
		errs["payType"] = "can't be blank"
	}
	if len(o.OrderItems) == 0 {
		errs["orderItems"] = "must include at least one line item"
	}
	return errs
}

// AddLineItemsFromCart copies every cart item onto the order, resolving each
// product so the snapshot carries the price in effect right now.
func (o *Order) AddLineItemsFromCart(cart *Cart, products map[int]Product) {
	if cart == nil {
		return
	}
	for _, item := range cart.Items {
		product, ok := products[item.ProductId]
		if !ok {
			continue
		}
		o.OrderItems = append(o.OrderItems, OrderItem{
			ProductId:    item.ProductId,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     item.Quantity,
		})
	}
}
