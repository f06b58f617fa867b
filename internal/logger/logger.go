package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

func init() {
	var (
		localLogger *zap.Logger
		err         error
	)

	// LOG_MODE=production включает JSON-формат логов.
	if os.Getenv("LOG_MODE") == "production" {
		localLogger, err = zap.NewProduction()
	} else {
		localLogger, err = zap.NewDevelopment()
	}

	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	logger = localLogger.Sugar()
}

func Fatal(msg string, keysAndValues ...any) {
	logger.Fatalw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	logger.Errorw(msg, keysAndValues...)
}

func Warning(msg string, keysAndValues ...any) {
	logger.Warnw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	logger.Infow(msg, keysAndValues...)
}

func Debug(msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}

// Sync Сброс буферизованных логов (вызывается при остановке приложения).
func Sync() {
	_ = logger.Sync()
}
