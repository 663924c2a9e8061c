// Command booking-events applies BookingConfirmed events from EventBridge to
// the trip card.
package main

import (
	"context"
	"log"

	"triptailor-backend/internal/config"
	"triptailor-backend/internal/di"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}
	lambda.Start(container.Bookings.Handle)
}
