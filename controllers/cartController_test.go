package controllers_test

import (
	"net/http"
	"testing"

	"github.com/njeri/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCartCreatesCartAndSetsCookie(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()

	product := models.Product{Name: "Widget", Price: 100}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(router, http.MethodPost, "/cart", map[string]any{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "cart_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "cart_id cookie should be set on first add")

	var cart models.Cart
	require.NoError(t, db.Preload("Items").First(&cart).Error)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int(product.ID), cart.Items[0].ProductId)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddToCartMergesQuantityForExistingProduct(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()

	product := models.Product{Name: "Widget", Price: 100}
	require.NoError(t, db.Create(&product).Error)

	first := doJSON(router, http.MethodPost, "/cart", map[string]any{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusCreated, first.Code)

	var cartCookie *http.Cookie
	for _, c := range first.Result().Cookies() {
		if c.Name == "cart_id" {
			cartCookie = c
		}
	}
	require.NotNil(t, cartCookie)

	second := doJSON(router, http.MethodPost, "/cart", map[string]any{
		"productId": product.ID,
		"quantity":  2,
	}, func(req *http.Request) {
		req.AddCookie(cartCookie)
	})
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var cart models.Cart
	require.NoError(t, db.Preload("Items").First(&cart).Error)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	w := doJSON(router, http.MethodPost, "/cart", map[string]any{
		"productId": 9999,
		"quantity":  1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCartWithoutCookie(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	w := doJSON(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCartReturnsItems(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()

	product := models.Product{Name: "Widget", Price: 100}
	require.NoError(t, db.Create(&product).Error)
	cart := seedCart(t, db, product.ID, 3)

	w := doJSON(router, http.MethodGet, "/cart", nil, withCart(cart))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":3`)
}
