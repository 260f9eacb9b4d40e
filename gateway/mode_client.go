package gateway

import "context"

// API is the gateway surface the rest of the service depends on.
type API interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error)
	GetOrder(ctx context.Context, orderID string) (*OrderView, error)
}

// ModeClient binds a Loader to one mode, resolving the shared client on
// every call so a failed construction is retried next time.
type ModeClient struct {
	loader *Loader
	mode   Mode
}

func (l *Loader) ForMode(mode Mode) *ModeClient {
	return &ModeClient{loader: l, mode: mode}
}

func (m *ModeClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	client, err := m.loader.ClientFor(m.mode)
	if err != nil {
		return nil, err
	}
	return client.CreateOrder(ctx, req)
}

func (m *ModeClient) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	client, err := m.loader.ClientFor(m.mode)
	if err != nil {
		return nil, err
	}
	return client.GetOrder(ctx, orderID)
}
