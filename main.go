package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/njeri/storefront-api/initializers"
	"github.com/njeri/storefront-api/publisher"
	"github.com/njeri/storefront-api/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectToDB()
	initializers.SyncDatabase()
}

func main() {
	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.DefaultRoutes(server)
	routes.AuthRoutes(server)
	routes.ProductRoutes(server)
	routes.CartRoutes(server)
	routes.OrderRoutes(server)
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")
	broadcast := publisher.NewKafkaBroadcast(brokers, "products")
	mailer := publisher.NewSMTPMailer("templates/orderReceived.html")
	var webhook publisher.WebhookSender
	if url := os.Getenv("ORDER_WEBHOOK_URL"); url != "" {
		webhook = publisher.NewRestyWebhook(url)
	}
	poller := publisher.NewOutboxPoller(initializers.DB, broadcast, mailer, webhook)
	go poller.Run(ctx)

	server.Run()
}
