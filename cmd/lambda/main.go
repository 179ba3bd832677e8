// Command lambda is the API Gateway entry point.
package main

import (
	"context"
	"log"
	"time"

	"archive-backend/infrastructure/config"
	"archive-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// container is built once per cold start and reused across invocations
var container *di.Container

func init() {
	coldStart := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStart)),
		zap.Int("actions", len(container.Registry.Tags())),
	)
}

func main() {
	lambda.Start(container.LambdaHandler.Handle)
}
