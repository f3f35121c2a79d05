package goAccounts

import (
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/goAccounts/internal/audit"
	"github.com/MrEthical07/goAccounts/password"
	"github.com/MrEthical07/goAccounts/session"
	"github.com/MrEthical07/goAccounts/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Redis (or an explicit SessionStore), an
// AccountStore, and a Notifier are required; everything else has defaults.
type Builder struct {
	config Config
	redis  *redis.Client

	sessions SessionStore
	accounts AccountStore
	notifier Notifier
	clock    Clock
	sink     AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the default session store.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithSessionStore overrides the session store, bypassing Redis entirely.
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.sessions = store
	return b
}

// WithAccountStore sets the durable account collaborator.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithNotifier sets the mail collaborator.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithClock overrides the time source. Defaults to the system clock.
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

// WithAuditSink attaches an audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// Build validates the configuration, wires the token codecs, session
// store, hasher, audit dispatcher, and metrics, and returns the Engine.
// A Builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.accounts == nil {
		return nil, errors.New("account store required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}
	if b.sessions == nil && b.redis == nil {
		return nil, errors.New("redis client or session store required")
	}

	clock := b.clock
	if clock == nil {
		clock = systemClock{}
	}

	engine := &Engine{
		config:   cfg,
		accounts: b.accounts,
		notifier: b.notifier,
		clock:    clock,
	}

	engine.sessions = b.sessions
	if engine.sessions == nil {
		engine.sessions = session.NewStore(b.redis, cfg.Session.RedisPrefix)
	}

	newCodec := func(secret []byte, ttl time.Duration) (*token.Codec, error) {
		return token.NewCodec(token.Config{
			Secret: secret,
			TTL:    ttl,
			Issuer: cfg.Token.Issuer,
			Now:    clock.Now,
		})
	}

	var err error
	if engine.activationCodec, err = newCodec(cfg.Token.ActivationSecret, cfg.Token.ActivationTTL); err != nil {
		return nil, err
	}
	if engine.accessCodec, err = newCodec(cfg.Token.AccessSecret, cfg.Token.AccessTTL); err != nil {
		return nil, err
	}
	if engine.refreshCodec, err = newCodec(cfg.Token.RefreshSecret, cfg.Token.RefreshTTL); err != nil {
		return nil, err
	}

	engine.passwordHash, err = password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.sink)
	engine.metrics = newMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
