package goAccounts

import (
	"context"
	"encoding/json"

	internalaudit "github.com/MrEthical07/goAccounts/internal/audit"
	"github.com/MrEthical07/goAccounts/password"
	"github.com/MrEthical07/goAccounts/token"
)

// Engine is the account/session lifecycle core. Construct it through
// [Builder.Build]; after that all methods are safe for concurrent use.
type Engine struct {
	config   Config
	accounts AccountStore
	sessions SessionStore
	notifier Notifier
	clock    Clock

	activationCodec *token.Codec
	accessCodec     *token.Codec
	refreshCodec    *token.Codec
	passwordHash    *password.Hasher

	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// Close flushes the audit dispatcher. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID, email string,
	failure error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		ID:        internalaudit.NewEventID(),
		Timestamp: e.clock.Now(),
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// encodeSnapshot serializes an account into its session snapshot. The
// password hash and reset fields are excluded by their json tags.
func encodeSnapshot(account *Account) (string, error) {
	data, err := json.Marshal(account)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSnapshot(snapshot string) (*Account, error) {
	var account Account
	if err := json.Unmarshal([]byte(snapshot), &account); err != nil {
		return nil, err
	}
	return &account, nil
}
