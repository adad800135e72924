package initializers

import (
	"log"

	"github.com/njeri/storefront-api/models"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OutboxEvent{},
	)
	if err != nil {
		log.Fatal("Failed to sync database: ", err)
	}
	log.Println("Database synced successfully.")
}
