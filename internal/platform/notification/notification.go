// Package notification delivers out-of-band messages to users, such as the
// one-time credential setup link. Delivery is asynchronous and best effort:
// a failed delivery is logged and counted, never reported to the caller.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the template of a notification.
type Kind string

const (
	// KindCredentialSetup invites a provisioned user to choose a password.
	KindCredentialSetup Kind = "credential-setup"
)

// Message is one notification to one recipient.
type Message struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	Recipient string            `json:"recipient"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(kind Kind, recipient string, data map[string]string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Recipient: recipient,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}

// Data keys of a credential setup message.
const (
	DataToken      = "token"
	DataSetupURL   = "setupUrl"
	DataTenantName = "tenantName"
	DataExpiresAt  = "expiresAt"
)

// CredentialSetup builds the credential setup message for a provisioned
// user.
func CredentialSetup(email, token, tenantName string, expiresAt time.Time) *Message {
	return NewMessage(KindCredentialSetup, email, map[string]string{
		DataToken:      token,
		DataTenantName: tenantName,
		DataExpiresAt:  expiresAt.UTC().Format(time.RFC3339),
	})
}

// Transport delivers a message synchronously.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// Sender accepts messages for asynchronous delivery. Enqueue never blocks
// and never fails the caller.
type Sender interface {
	Enqueue(msg *Message)
}
