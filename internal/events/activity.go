package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/saitap-dev/saitap/backend/internal/domain"
)

// ErrMalformedEvent 表示消息无法被解析，重新入队也没有意义
var ErrMalformedEvent = errors.New("malformed event")

type Counter interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
}

// Tally 统计每个员工累计获得的经验值
type Tally struct {
	counter Counter
	logger  *slog.Logger
}

func NewTally(counter Counter, logger *slog.Logger) *Tally {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tally{counter: counter, logger: logger}
}

func ActivityKey(employeeID string) string {
	return fmt.Sprintf("activity_%s_xp", employeeID)
}

func (t *Tally) Handle(ctx context.Context, body []byte) error {
	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return fmt.Errorf("%w: 缺少事件类型", ErrMalformedEvent)
	}

	t.logger.Info("收到事件", "type", event.Type, "employeeId", event.EmployeeID, "occurredAt", event.OccurredAt)

	if event.Type != domain.EventProgress || event.EmployeeID == "" || event.XPGained == 0 {
		return nil
	}

	total, err := t.counter.IncrBy(ctx, ActivityKey(event.EmployeeID), int64(event.XPGained)).Result()
	if err != nil {
		return err
	}

	t.logger.Info("已累计经验值", "employeeId", event.EmployeeID, "total", total)
	return nil
}
