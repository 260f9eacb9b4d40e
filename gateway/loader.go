package gateway

import (
	"errors"
	"fmt"
	"sync"
)

// Mode selects which gateway environment a client talks to.
type Mode string

const (
	ModeSandbox    Mode = "sandbox"
	ModeProduction Mode = "production"
)

// ErrSDKUnavailable is returned when a gateway client cannot be constructed.
var ErrSDKUnavailable = errors.New("payment gateway client unavailable")

// Loader hands out one lazily-built Client per mode, reused across calls.
// A failed construction leaves the slot empty so the next call retries.
type Loader struct {
	mu        sync.Mutex
	appID     string
	secretKey string
	clients   map[Mode]*Client
}

func NewLoader(appID, secretKey string) *Loader {
	return &Loader{
		appID:     appID,
		secretKey: secretKey,
		clients:   make(map[Mode]*Client),
	}
}

// ClientFor returns the cached client for the mode, constructing it on first
// use.
func (l *Loader) ClientFor(mode Mode) (*Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if client, ok := l.clients[mode]; ok {
		return client, nil
	}

	client, err := NewClient(l.appID, l.secretKey, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSDKUnavailable, err)
	}

	l.clients[mode] = client
	return client, nil
}

// Reset drops the cached client for a mode so the next ClientFor rebuilds it.
func (l *Loader) Reset(mode Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.clients, mode)
}
