package stream

import (
	"context"

	"openbook/internal/usecase/shared"
)

// NopAuditPublisher drops events. Used when no brokers are configured
// and in tests; the database audit log remains authoritative either way.
type NopAuditPublisher struct{}

func NewNopAuditPublisher() *NopAuditPublisher {
	return &NopAuditPublisher{}
}

var _ shared.AuditPublisher = (*NopAuditPublisher)(nil)

func (*NopAuditPublisher) Publish(context.Context, ...shared.AuditEvent) error {
	return nil
}
