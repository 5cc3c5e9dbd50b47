package bootstrap

import (
	"context"
	"log/slog"

	"openbook/internal/infra/stream"
	"openbook/internal/pkg/config"
	"openbook/internal/usecase/shared"

	"go.uber.org/fx"
)

var StreamModule = fx.Module("stream",
	fx.Provide(
		NewAuditPublisher,
	),
)

// NewAuditPublisher wires the Kafka audit stream when brokers are
// configured, otherwise a no-op. The database audit log works either way.
func NewAuditPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) shared.AuditPublisher {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Brokers[0] == "" {
		logger.Info("audit event stream disabled, no Kafka brokers configured")
		return stream.NewNopAuditPublisher()
	}

	publisher := stream.NewKafkaAuditPublisher(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	logger.Info("audit event stream enabled",
		"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.AuditTopic)
	return publisher
}
