package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/controllers"
	"github.com/njeri/storefront-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	orders := server.Group("/orders")
	{
		orders.GET("", controllers.GetOrders)
		orders.GET("/new", controllers.NewOrder)
		orders.GET("/:orderId", controllers.GetOrder)
		orders.POST("", controllers.CreateOrder)

		// Staff-only from here on
		staff := orders.Group("", middlewares.Authenticate(), middlewares.RequireAdmin())
		staff.GET("/:orderId/edit", controllers.EditOrder)
		staff.PUT("/:orderId", controllers.UpdateOrder)
		staff.PATCH("/:orderId", controllers.UpdateOrder)
		staff.DELETE("/:orderId", controllers.DeleteOrder)
	}
}
