package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/initializers"
	"github.com/njeri/storefront-api/models"
)

// GetHome is the store index: the catalog ordered by popularity. It is also
// where empty-cart checkouts get redirected.
func GetHome(ctx *gin.Context) {
	var products []models.Product
	result := initializers.DB.Preload("Images").Order("times_bought desc").Find(&products)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", result.Error)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Welcome to the store.",
		"products": products,
	})
}
