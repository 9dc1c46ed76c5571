package proxy

import (
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/williampepple1/vibe-scout/internal/config"
)

// Manager handles proxy selection and rotation
type Manager struct {
	Config *config.ProxyConfig
	mu     sync.Mutex
	rand   *rand.Rand
}

// NewManager creates a new proxy manager. A nil r uses a time-seeded source.
func NewManager(config *config.ProxyConfig, r *rand.Rand) *Manager {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		Config: config,
		rand:   r,
	}
}

// GetProxyURL returns a proxy URL from the configuration, or nil when proxies are disabled
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if m == nil || !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	// Select a proxy
	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		m.mu.Lock()
		proxyStr = m.Config.List[m.rand.Intn(len(m.Config.List))]
		m.mu.Unlock()
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxyStr, err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing scheme or host", proxyStr)
	}

	return proxyURL, nil
}

// Server returns the proxy in the scheme://host:port form Chrome accepts.
// Credentials are dropped because Chrome does not read them from the flag.
func (m *Manager) Server() (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return "", err
	}
	return proxyURL.Scheme + "://" + proxyURL.Host, nil
}
