package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients/woocommerce"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/config"
)

// NewLogger builds the stage logger. Pipeline runs are operator-facing
// batch jobs, so the text formatter with timestamps is the right default.
func NewLogger(stage string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("stage", stage)
}

// SignalContext returns a context cancelled by SIGINT/SIGTERM so an
// operator interrupt stops the run at the next request boundary.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// SourceClient builds the read-side catalog client
func SourceClient(cfg *config.Config) *woocommerce.Client {
	return woocommerce.NewClient(woocommerce.Options{
		BaseURL:        cfg.SourceURL,
		ConsumerKey:    cfg.SourceConsumerKey,
		ConsumerSecret: cfg.SourceConsumerSecret,
		RatePerSec:     cfg.RateLimitPerSec,
		Timeout:        cfg.RequestTimeout,
	})
}

// TargetClient builds the write-side catalog client, including media
// credentials for image uploads.
func TargetClient(cfg *config.Config) *woocommerce.Client {
	return woocommerce.NewClient(woocommerce.Options{
		BaseURL:        cfg.TargetURL,
		ConsumerKey:    cfg.TargetConsumerKey,
		ConsumerSecret: cfg.TargetConsumerSecret,
		MediaUser:      cfg.MediaUser,
		MediaPassword:  cfg.MediaPassword,
		RatePerSec:     cfg.RateLimitPerSec,
		Timeout:        cfg.RequestTimeout,
	})
}
