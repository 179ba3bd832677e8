package di

import (
	"archive-backend/application/actions"
	"archive-backend/application/dispatch"
	"archive-backend/infrastructure/config"
	"archive-backend/interfaces/http/rest"
	lambdaadapter "archive-backend/interfaces/lambda"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Registry      *actions.Registry
	Dispatcher    *dispatch.Dispatcher
	LambdaHandler *lambdaadapter.Handler
	Router        *rest.Router
}
