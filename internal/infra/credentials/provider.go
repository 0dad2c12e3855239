package credentials

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/settings"

	"gorm.io/gorm"
)

// Source looks up config values by key. Missing keys are simply absent from
// the returned map.
type Source interface {
	Lookup(ctx context.Context, keys []string) (map[string]string, error)
}

// SettingsSource reads the app_settings table.
type SettingsSource struct {
	db *gorm.DB
}

func NewSettingsSource(db *gorm.DB) *SettingsSource {
	return &SettingsSource{db: db}
}

func (s *SettingsSource) Lookup(ctx context.Context, keys []string) (map[string]string, error) {
	var rows []settings.Setting
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// StaticSource serves fixed values, typically taken from the environment.
type StaticSource map[string]string

func (s StaticSource) Lookup(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

type cached struct {
	creds     billing.Credentials
	expiresAt time.Time
}

// Provider resolves gateway credentials from its sources in order (earlier
// sources win) and keeps them for ttl. Failed lookups are never cached.
type Provider struct {
	sources []Source
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[billing.Method]cached
}

func NewProvider(ttl time.Duration, sources ...Source) *Provider {
	return &Provider{
		sources: sources,
		ttl:     ttl,
		now:     time.Now,
		cache:   map[billing.Method]cached{},
	}
}

func Keys(method billing.Method) (accessToken, publicKey, webhookSecret string) {
	m := string(method)
	return m + "_access_token", m + "_public_key", m + "_webhook_secret"
}

func (p *Provider) Get(ctx context.Context, method billing.Method) (billing.Credentials, error) {
	p.mu.Lock()
	if c, ok := p.cache[method]; ok && p.now().Before(c.expiresAt) {
		p.mu.Unlock()
		return c.creds, nil
	}
	p.mu.Unlock()

	creds, err := p.load(ctx, method)
	if err != nil {
		return billing.Credentials{}, err
	}

	p.mu.Lock()
	p.cache[method] = cached{creds: creds, expiresAt: p.now().Add(p.ttl)}
	p.mu.Unlock()

	return creds, nil
}

// Invalidate drops cached credentials so the next Get reloads them.
func (p *Provider) Invalidate(method billing.Method) {
	p.mu.Lock()
	delete(p.cache, method)
	p.mu.Unlock()
}

func (p *Provider) load(ctx context.Context, method billing.Method) (billing.Credentials, error) {
	tokenKey, publicKey, secretKey := Keys(method)
	keys := []string{tokenKey, publicKey, secretKey}

	values := map[string]string{}
	for i, src := range p.sources {
		found, err := src.Lookup(ctx, keys)
		if err != nil {
			log.Printf("layer=infra component=credentials method=load gateway=%s source=%d err=%v", method, i, err)
			continue
		}
		for k, v := range found {
			if _, ok := values[k]; !ok && v != "" {
				values[k] = v
			}
		}
	}

	creds := billing.Credentials{
		AccessToken:   values[tokenKey],
		PublicKey:     values[publicKey],
		WebhookSecret: values[secretKey],
	}
	if creds.AccessToken == "" || creds.PublicKey == "" {
		return billing.Credentials{}, fmt.Errorf("%w: %s access token or public key missing", billing.ErrConfiguration, method)
	}
	return creds, nil
}
