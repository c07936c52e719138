package utils

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger.
func InitLogger(level, format string) {
	logrus.SetOutput(os.Stdout)

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// InitSentry enables error reporting. An empty DSN leaves Sentry disabled.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// LogError logs errors with structured context to both console and Sentry
func LogError(errorType string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})

	for k, v := range context {
		log = log.WithField(k, v)
	}

	log.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs events with structured context
func LogEvent(eventType string, data map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"event_type": eventType,
	})

	for k, v := range data {
		log = log.WithField(k, v)
	}

	log.Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
