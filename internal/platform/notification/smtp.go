package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"net/url"
	"strings"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	// SetupURL is the page that completes credential setup. The token is
	// appended as the "token" query parameter.
	SetupURL string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPTransport sends notifications as HTML mail.
type SMTPTransport struct {
	config SMTPConfig
	auth   smtp.Auth
	send   sendMailFunc
}

// NewSMTPTransport creates the mail transport. Credentials are optional for
// relays that accept unauthenticated submission.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	t := &SMTPTransport{config: cfg, send: smtp.SendMail}
	if cfg.Username != "" && cfg.Password != "" {
		t.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return t
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers msg. net/smtp has no context support, so ctx is only checked
// before dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := t.build(msg)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)
	return t.send(addr, t.auth, t.config.FromAddress, []string{msg.Recipient}, body)
}

func (t *SMTPTransport) build(msg *Message) ([]byte, error) {
	if strings.ContainsAny(msg.Recipient, "\r\n") {
		return nil, errors.New("recipient contains a line break")
	}

	var subject, htmlBody string
	switch msg.Kind {
	case KindCredentialSetup:
		subject, htmlBody = t.credentialSetup(msg)
	default:
		return nil, fmt.Errorf("unsupported notification kind %q", msg.Kind)
	}

	var b strings.Builder
	writeHeader(&b, "From", t.config.FromAddress)
	writeHeader(&b, "To", msg.Recipient)
	writeHeader(&b, "Subject", mime.QEncoding.Encode("UTF-8", subject))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", "text/html; charset=UTF-8")
	writeHeader(&b, "X-Notification-Id", msg.ID)
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String()), nil
}

func writeHeader(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s: %s\r\n", key, value)
}

func (t *SMTPTransport) credentialSetup(msg *Message) (string, string) {
	tenant := msg.Data[DataTenantName]
	subject := "Set up your VenueHub account"
	if tenant != "" {
		subject = fmt.Sprintf("Set up your %s account on VenueHub", tenant)
	}

	link := setupLink(t.config.SetupURL, msg.Data[DataToken])

	return subject, fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif;">
    <div style="background-color: #17a2b8; color: white; padding: 20px; border-radius: 5px;">
        <h2 style="margin: 0;">Welcome to %s</h2>
    </div>
    <div style="padding: 20px; background-color: #f8f9fa; margin-top: 10px; border-radius: 5px;">
        <p>An account was created for <strong>%s</strong>.</p>
        <p><a href="%s">Choose your password</a></p>
        <p>The link can be used once and expires at %s.</p>
    </div>
</body>
</html>
`,
		html.EscapeString(orDefault(tenant, "VenueHub")),
		html.EscapeString(msg.Recipient),
		html.EscapeString(link),
		html.EscapeString(msg.Data[DataExpiresAt]))
}

func setupLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
