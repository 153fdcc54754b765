package handler

import (
	"context"

	"github.com/nvoxel/auth-service/internal/queue"
	queue_publisher "github.com/nvoxel/auth-service/internal/service"
)

// BrokerEvents publishes security events through RabbitMQ. It is the
// production EventPublisher; tests substitute an in-memory recorder.
type BrokerEvents struct{}

func (BrokerEvents) Publish(ctx context.Context, ev queue.SecurityEvent) error {
	return queue_publisher.PublishSecurityEvent(ctx, ev)
}
