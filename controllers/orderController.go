package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/initializers"
	"github.com/njeri/storefront-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// orderParams is the whitelist of fields a customer may submit. Anything else
// in the request body is dropped on the floor.
type orderParams struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	Email            string `json:"email"`
	PayType          string `json:"payType"`
	CreditCardNumber string `json:"creditCardNumber"`
	ExpirationDate   string `json:"expirationDate"`
	RoutingNumber    string `json:"routingNumber"`
	AccountNumber    string `json:"accountNumber"`
	PoNumber         string `json:"poNumber"`
}

// apply copies the base fields onto the order, then only the sub-fields the
// chosen pay type permits. Sub-fields of other pay types are cleared so one
// group is populated at a time.
func (p orderParams) apply(order *models.Order) {
	order.Name = p.Name
	order.Address = p.Address
	order.Email = p.Email
	order.PayType = p.PayType

	order.CreditCardNumber = ""
	order.ExpirationDate = ""
	order.RoutingNumber = ""
	order.AccountNumber = ""
	order.PoNumber = ""

	for _, field := range models.PermittedPayTypeFields(p.PayType) {
		switch field {
		case "creditCardNumber":
			order.CreditCardNumber = p.CreditCardNumber
		case "expirationDate":
			order.ExpirationDate = p.ExpirationDate
		case "routingNumber":
			order.RoutingNumber = p.RoutingNumber
		case "accountNumber":
			order.AccountNumber = p.AccountNumber
		case "poNumber":
			order.PoNumber = p.PoNumber
		}
	}
}

func cartProducts(cart *models.Cart) (map[int]models.Product, error) {
	products := make(map[int]models.Product)
	if cart == nil || len(cart.Items) == 0 {
		return products, nil
	}

	ids := make([]int, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductId)
	}

	var rows []models.Product
	if err := initializers.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, product := range rows {
		products[int(product.ID)] = product
	}
	return products, nil
}

func newOutboxEvent(aggregateId int, eventType string, payload any) (*models.OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &models.OutboxEvent{
		AggregateId: aggregateId,
		EventType:   eventType,
		Payload:     datatypes.JSON(body),
	}, nil
}

// CreateOrder converts the caller's cart into a persisted order.
//
// The order, its item snapshot, the product counter bumps and the pending
// notification events commit in one transaction. Cart teardown happens after
// the commit and is never unwound; a failure there is logged only.
func CreateOrder(ctx *gin.Context) {
	var params orderParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		log.Printf("JSON binding error: %v", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart, err := currentCart(ctx)
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	products, err := cartProducts(cart)
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	var order models.Order
	params.apply(&order)
	order.AddLineItemsFromCart(cart, products)

	if errs := order.Validate(); len(errs) > 0 {
		sendJSONResponse(ctx, http.StatusUnprocessableEntity, gin.H{
			"order":  order,
			"errors": errs,
		})
		return
	}

	tx := initializers.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Println("Create error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
		return
	}

	for _, item := range cart.Items {
		err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductId).
			UpdateColumn("times_bought", gorm.Expr("times_bought + ?", item.Quantity)).Error
		if err != nil {
			tx.Rollback()
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update product stats")
			return
		}
	}

	if html, err := RenderTopList(tx); err != nil {
		// The order still goes through without its broadcast.
		log.Println("Render error:", err)
	} else {
		event, err := newOutboxEvent(int(order.ID), models.EventProductsUpdated, gin.H{"html": html})
		if err == nil {
			err = tx.Create(event).Error
		}
		if err != nil {
			tx.Rollback()
			log.Println("Outbox error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to record notification")
			return
		}
	}

	event, err := newOutboxEvent(int(order.ID), models.EventOrderReceived, gin.H{
		"orderId": order.ID,
		"email":   order.Email,
		"name":    order.Name,
	})
	if err == nil {
		err = tx.Create(event).Error
	}
	if err != nil {
		tx.Rollback()
		log.Println("Outbox error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to record notification")
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println("Commit error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to save order")
		return
	}

	destroyCart(ctx, cart)

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": "Thank you for your order.",
		"order":   order,
	})
}

// destroyCart removes the cart with its items and clears the cart_id cookie.
// Best effort: the order is already committed at this point.
func destroyCart(ctx *gin.Context, cart *models.Cart) {
	if cart == nil {
		return
	}
	if err := initializers.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		log.Println("Failed to delete cart items:", err)
	}
	if err := initializers.DB.Delete(&models.Cart{}, cart.ID).Error; err != nil {
		log.Println("Failed to delete cart:", err)
	}
	ctx.SetCookie(cartCookieName, "", -1, "/", "", false, true)
}

func NewOrder(ctx *gin.Context) {
	cart, err := currentCart(ctx)
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	if cart == nil || len(cart.Items) == 0 {
		ctx.Header("Location", "/")
		sendJSONResponse(ctx, http.StatusFound, gin.H{"notice": "Your cart is empty"})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"order":    models.Order{},
		"payTypes": models.PayTypes(),
	})
}

func GetOrders(ctx *gin.Context) {
	var orders []models.Order

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.Preload("OrderItems").Order("created_at " + sortOrder)

	result := query.Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", result.Error)
		return
	}

	var count int64
	initializers.DB.Model(&models.Order{}).Count(&count)

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	})
}

// findOrder loads an order by path param, writing the 404/400 response itself
// when the order cannot be produced.
func findOrder(ctx *gin.Context) (*models.Order, bool) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse order id.")
		return nil, false
	}

	var order models.Order
	if err := initializers.DB.Preload("OrderItems").First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return nil, false
	}
	return &order, true
}

func GetOrder(ctx *gin.Context) {
	order, ok := findOrder(ctx)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

func EditOrder(ctx *gin.Context) {
	order, ok := findOrder(ctx)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"order":    order,
		"payTypes": models.PayTypes(),
	})
}

func UpdateOrder(ctx *gin.Context) {
	order, ok := findOrder(ctx)
	if !ok {
		return
	}

	var params orderParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		log.Printf("JSON binding error: %v", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	params.apply(order)

	if errs := order.Validate(); len(errs) > 0 {
		sendJSONResponse(ctx, http.StatusUnprocessableEntity, gin.H{
			"order":  order,
			"errors": errs,
		})
		return
	}

	if err := initializers.DB.Save(order).Error; err != nil {
		log.Println("Update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Order was successfully updated.",
		"order":   order,
	})
}

func DeleteOrder(ctx *gin.Context) {
	order, ok := findOrder(ctx)
	if !ok {
		return
	}

	if err := initializers.DB.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		log.Println("Delete error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete order items.")
		return
	}
	if err := initializers.DB.Delete(&models.Order{}, order.ID).Error; err != nil {
		log.Println("Delete error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete order.")
		return
	}

	ctx.Status(http.StatusNoContent)
}
