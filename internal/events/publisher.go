// Package events 把会话与语言状态的变更发布到消息队列
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/saitap-dev/saitap/backend/internal/domain"
	"github.com/saitap-dev/saitap/backend/internal/i18n"
	"github.com/saitap-dev/saitap/backend/internal/session"
)

// Channel 是 *amqp.Channel 中发布消息所需的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewPublisher(ch Channel, queue string, timeout time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Attach 订阅两个 store 的变更，返回取消订阅的函数
func (p *Publisher) Attach(sessions *session.Store, languages *i18n.Store) func() {
	unsubSession := sessions.Subscribe(p.SessionChanged)
	unsubLanguage := languages.Subscribe(p.LanguageChanged)

	return func() {
		unsubSession()
		unsubLanguage()
	}
}

func (p *Publisher) SessionChanged(c session.Change) {
	event := domain.Event{OccurredAt: p.now()}

	switch c.Reason {
	case session.ReasonLoaded:
		event.Type = domain.EventSessionLoaded
	case session.ReasonLogin:
		event.Type = domain.EventLogin
	case session.ReasonLogout:
		event.Type = domain.EventLogout
	case session.ReasonProgress:
		event.Type = domain.EventProgress
		event.XPGained = c.XPGained
	default:
		p.logger.Error("未知的会话变更类型", "reason", c.Reason)
		return
	}

	if u := c.State.User; u != nil {
		event.EmployeeID = u.EmployeeID
		event.CompanyID = u.CompanyID
		event.XP = u.XP
		event.Level = u.Level
		event.Language = u.Language
	}

	p.publish(event)
}

func (p *Publisher) LanguageChanged(c i18n.Change) {
	p.publish(domain.Event{
		Type:       domain.EventLanguageChanged,
		Language:   c.Language,
		OccurredAt: p.now(),
	})
}

func (p *Publisher) publish(event domain.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("事件序列化失败", "type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	); err != nil {
		p.logger.Error("事件发布失败", "type", event.Type, "error", err)
	}
}
