package application

import (
	"fmt"

	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

// Registry maps each provider enum value to its gateway and webhook
// handler. Dispatch is a map lookup at request time; exhaustiveness is
// checked once at wiring time via Validate, not by a runtime default case.
type Registry struct {
	gateways map[domain.Provider]ports.Gateway
	webhooks map[domain.Provider]ports.WebhookHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[domain.Provider]ports.Gateway),
		webhooks: make(map[domain.Provider]ports.WebhookHandler),
	}
}

// Register binds one provider's gateway and webhook handler.
func (r *Registry) Register(provider domain.Provider, gateway ports.Gateway, webhook ports.WebhookHandler) {
	r.gateways[provider] = gateway
	r.webhooks[provider] = webhook
}

// Validate ensures every provider in the enum has both capabilities bound.
func (r *Registry) Validate() error {
	for _, provider := range domain.Providers() {
		if r.gateways[provider] == nil {
			return fmt.Errorf("no gateway registered for provider %s", provider)
		}
		if r.webhooks[provider] == nil {
			return fmt.Errorf("no webhook handler registered for provider %s", provider)
		}
	}
	return nil
}

// Gateway returns the gateway bound to the provider, if any.
func (r *Registry) Gateway(provider domain.Provider) (ports.Gateway, bool) {
	gateway, ok := r.gateways[provider]
	return gateway, ok
}

// Webhook returns the webhook handler bound to the provider, if any.
func (r *Registry) Webhook(provider domain.Provider) (ports.WebhookHandler, bool) {
	webhook, ok := r.webhooks[provider]
	return webhook, ok
}
