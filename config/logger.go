package config

import (
	"go.uber.org/zap"
)

var Logger *zap.Logger

// InitLogger builds the process logger. Development gets the console
// encoder, everything else structured JSON.
func InitLogger(env string) {
	var err error
	if env == "development" {
		Logger, err = zap.NewDevelopment()
	} else {
		Logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("Failed to initialize logger")
	}
	zap.ReplaceGlobals(Logger)
}
