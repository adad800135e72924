package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID int    `json:"productId" binding:"required"`
}

type Product struct {
	gorm.Model
	Brand       string         `json:"brand"`
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Price       int            `json:"price" binding:"required"`
	Category    string         `json:"category"`
	Colors      datatypes.JSON `json:"colors"`
	// TimesBought counts units sold across all placed orders. It only ever
	// grows, and only via the order placement workflow.
	TimesBought int            `json:"timesBought"`
	Images      []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
