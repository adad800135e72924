package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/controllers"
)

func CartRoutes(server *gin.Engine) {
	server.POST("/cart", controllers.AddToCart)
	server.GET("/cart", controllers.GetCart)
}
