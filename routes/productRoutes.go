package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/controllers"
	"github.com/njeri/storefront-api/middlewares"
)

func ProductRoutes(server *gin.Engine) {
	server.POST("/products", middlewares.Authenticate(), middlewares.RequireAdmin(), controllers.CreateProduct)
	server.POST("/product-images", middlewares.Authenticate(), middlewares.RequireAdmin(), controllers.UploadProductImages)
	server.GET("/products", controllers.GetProducts)
	server.GET("/products/:productId", controllers.GetProduct)
}
