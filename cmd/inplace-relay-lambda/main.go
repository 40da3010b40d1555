// Command inplace-relay-lambda runs the translation relay as an AWS Lambda
// function. The event is a request envelope and the response is a reply
// envelope. Configuration comes from INPLACE_* environment variables.
package main

import (
	"context"
	"log"
	"os"

	"github.com/ZaguanLabs/inplace/internal/app"
	"github.com/ZaguanLabs/inplace/internal/config"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("INPLACE_CONFIG"), nil)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	rt, err := app.NewRelay(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("building relay", zap.Error(err))
	}
	defer rt.Close()

	lambda.Start(newEventHandler(rt.Handler, logger))
}
