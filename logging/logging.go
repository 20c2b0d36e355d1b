package logging

import "go.uber.org/zap"

// New creates a new zap logger for the given environment
func New(environment string) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	switch environment {
	case "production":
		logger, err = zap.NewProduction()
	case "development":
		logger, err = zap.NewDevelopment()
	default:
		logger = zap.NewExample()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	return logger.Sugar().With("service", "motorent-api")
}
