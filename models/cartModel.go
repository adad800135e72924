package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	CartID    int `json:"cartId"`
	ProductId int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Cart is session-scoped: its id travels in the cart_id cookie and the whole
// record is destroyed once an order is placed from it.
type Cart struct {
	gorm.Model
	Items []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}
