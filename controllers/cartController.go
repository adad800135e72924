package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/initializers"
	"github.com/njeri/storefront-api/models"
	"gorm.io/gorm"
)

const cartCookieName = "cart_id"

// currentCart resolves the caller's cart from the cart_id cookie. A missing
// cookie or an unknown id both yield a nil cart, not an error.
func currentCart(ctx *gin.Context) (*models.Cart, error) {
	cookie, err := ctx.Cookie(cartCookieName)
	if err != nil {
		return nil, nil
	}
	cartId, err := strconv.Atoi(cookie)
	if err != nil {
		return nil, nil
	}

	var cart models.Cart
	result := initializers.DB.Preload("Items").First(&cart, cartId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &cart, nil
}

func findOrCreateCart(ctx *gin.Context) (*models.Cart, error) {
	cart, err := currentCart(ctx)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{}
	if result := initializers.DB.Create(cart); result.Error != nil {
		return nil, result.Error
	}
	ctx.SetCookie(cartCookieName, strconv.Itoa(int(cart.ID)), 7*24*60*60, "/", "", false, true)
	return cart, nil
}

func AddToCart(ctx *gin.Context) {
	var input struct {
		ProductId int `json:"productId" binding:"required"`
		Quantity  int `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Quantity < 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	var product models.Product
	if err := initializers.DB.First(&product, input.ProductId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}

	cart, err := findOrCreateCart(ctx)
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	var existingItem models.CartItem
	err = initializers.DB.
		Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductId).
		First(&existingItem).Error

	if err == nil {
		existingItem.Quantity += input.Quantity
		if err := initializers.DB.Save(&existingItem).Error; err != nil {
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": product.Name + " quantity updated",
			"id":      existingItem.ID,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cartItem := models.CartItem{
		CartID:    int(cart.ID),
		ProductId: input.ProductId,
		Quantity:  input.Quantity,
	}
	if err := initializers.DB.Create(&cartItem).Error; err != nil {
		log.Println("Create error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to create cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": product.Name + " added to cart",
		"id":      cartItem.ID,
	})
}

func GetCart(ctx *gin.Context) {
	cart, err := currentCart(ctx)
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	if cart == nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": cart})
}
