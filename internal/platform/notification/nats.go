package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig names the stream and subject prefix notifications are
// published to. The subject is Prefix + "." + kind.
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
}

// NATSTransport publishes notifications to JetStream for an external mailer
// to consume. The message id doubles as the JetStream dedup id.
type NATSTransport struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
}

// NewNATSTransport connects and ensures the stream exists.
func NewNATSTransport(ctx context.Context, cfg NATSConfig) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("venuehub-notifications"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.StreamName, err)
	}

	return &NATSTransport{conn: conn, js: js, prefix: cfg.SubjectPrefix}, nil
}

func (t *NATSTransport) Name() string { return "nats" }

func (t *NATSTransport) Send(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	out := &nats.Msg{
		Subject: t.subject(msg.Kind),
		Data:    data,
		Header:  nats.Header{},
	}
	out.Header.Set(nats.MsgIdHdr, msg.ID)

	if _, err := t.js.PublishMsg(ctx, out); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (t *NATSTransport) subject(kind Kind) string {
	return t.prefix + "." + string(kind)
}

// Close drains the connection.
func (t *NATSTransport) Close() error {
	return t.conn.Drain()
}
