// Command api serves the trip card API on AWS Lambda behind API Gateway.
package main

import (
	"context"
	"log"

	"triptailor-backend/internal/config"
	"triptailor-backend/internal/di"
	"triptailor-backend/internal/handlers"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

var chiLambda *chiadapter.ChiLambdaV2

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	router := container.Router(handlers.Authenticator(container.Logger))
	chiLambda = chiadapter.NewV2(router)

	container.Logger.Info("api initialized",
		zap.String("environment", string(cfg.Environment)),
		zap.Strings("config_sources", cfg.LoadedFrom))
}

// Handler proxies API Gateway v2 requests into the chi router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
