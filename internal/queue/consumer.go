package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/venuevibe/vibecheck/internal/logging"
)

// StartSyncAuditConsumer consumes events.synced and appends one line per
// message to auditPath. It reconnects with backoff until ctx is cancelled,
// which is the only way it returns.
func StartSyncAuditConsumer(ctx context.Context, url, auditPath string, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnf("dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, auditPath, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("consume loop ended: %v; reconnecting", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, auditPath string, log *logging.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnf("set QoS: %v", err)
	}
	if _, err := ch.QueueDeclare(EventsSyncedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsSyncedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := AppendAuditLine(auditPath, d.Body); err != nil {
				log.Errorf("handle message: %v", err)
				_ = d.Nack(false, false) // no requeue, a bad payload would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// AppendAuditLine decodes a SyncCompletedEvent and appends its summary to
// the file at path, creating parent directories as needed.
func AppendAuditLine(path string, body []byte) error {
	var ev SyncCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatAuditLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func formatAuditLine(ev SyncCompletedEvent) string {
	unmatched := "[]"
	if len(ev.UnmatchedVenues) > 0 {
		unmatched = fmt.Sprintf("[%s]", strings.Join(ev.UnmatchedVenues, ","))
	}
	return fmt.Sprintf("[%s] Events synced | count=%d | ids=%d | unmatched=%s\n",
		ev.SyncedAt, ev.Count, len(ev.IDs), unmatched)
}
