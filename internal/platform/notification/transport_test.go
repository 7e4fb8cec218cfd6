package notification

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestSMTPTransportCredentialSetup(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	transport := NewSMTPTransport(SMTPConfig{
		Host:        "mail.internal",
		Port:        2525,
		FromAddress: "noreply@venuehub.test",
		SetupURL:    "https://app.venuehub.test/setup?lang=en",
	})
	transport.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	msg := CredentialSetup("admin@acme.test", "abc+/=", "<Acme & Co>", time.Now().Add(time.Hour))
	if err := transport.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAddr != "mail.internal:2525" || gotFrom != "noreply@venuehub.test" {
		t.Errorf("addr=%q from=%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "admin@acme.test" {
		t.Errorf("to = %v", gotTo)
	}

	header, body, ok := strings.Cut(string(gotBody), "\r\n\r\n")
	if !ok {
		t.Fatal("message has no header/body separator")
	}
	if !strings.Contains(body, "token=abc%2B%2F%3D") {
		t.Error("setup link does not carry the escaped token")
	}
	if !strings.Contains(body, "lang=en") {
		t.Error("setup link lost its existing query")
	}
	if strings.Contains(body, "<Acme & Co>") || !strings.Contains(body, "&lt;Acme &amp; Co&gt;") {
		t.Error("tenant name is not HTML escaped")
	}
	if !strings.Contains(header+"\r\n", "X-Notification-Id: "+msg.ID+"\r\n") {
		t.Error("notification id header missing")
	}
}

func TestSMTPTransportEncodesSubject(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{Host: "mail.internal", Port: 25, FromAddress: "noreply@venuehub.test"})
	var gotBody []byte
	transport.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotBody = msg
		return nil
	}

	tests := []struct {
		name   string
		tenant string
	}{
		{"non-ascii", "Café Zürich"},
		{"line break", "Acme\r\nBcc: x@evil.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := CredentialSetup("admin@acme.test", "tok", tt.tenant, time.Now().Add(time.Hour))
			if err := transport.Send(context.Background(), msg); err != nil {
				t.Fatalf("Send: %v", err)
			}
			header, _, _ := strings.Cut(string(gotBody), "\r\n\r\n")

			var subject string
			for _, line := range strings.Split(header, "\r\n") {
				if v, ok := strings.CutPrefix(line, "Subject: "); ok {
					subject = v
				}
				if strings.HasPrefix(line, "Bcc:") {
					t.Fatal("tenant name injected a header")
				}
			}
			if !strings.HasPrefix(subject, "=?UTF-8?q?") {
				t.Fatalf("subject is not RFC 2047 encoded: %q", subject)
			}
			for _, r := range subject {
				if r > '~' {
					t.Fatalf("subject carries raw non-ASCII: %q", subject)
				}
			}

			decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
			if err != nil {
				t.Fatalf("DecodeHeader: %v", err)
			}
			if want := "Set up your " + tt.tenant + " account on VenueHub"; decoded != want {
				t.Errorf("decoded subject = %q, want %q", decoded, want)
			}
		})
	}
}

func TestSMTPTransportRejects(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{Host: "mail.internal", Port: 25})
	transport.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("mail must not be sent")
		return nil
	}

	tests := []struct {
		name string
		msg  *Message
	}{
		{"header injection", CredentialSetup("a@b.test\r\nBcc: x@evil.test", "t", "", time.Now())},
		{"unknown kind", NewMessage(Kind("digest"), "a@b.test", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := transport.Send(context.Background(), tt.msg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSTransportSend(t *testing.T) {
	client := &fakeSQS{}
	transport := NewSQSTransportWithClient(client, "https://sqs.local/queue/notifications")

	msg := CredentialSetup("user@acme.test", "tok", "Acme", time.Now())
	if err := transport.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if aws.ToString(client.input.QueueUrl) != "https://sqs.local/queue/notifications" {
		t.Errorf("queue url = %q", aws.ToString(client.input.QueueUrl))
	}
	if got := aws.ToString(client.input.MessageAttributes["kind"].StringValue); got != string(KindCredentialSetup) {
		t.Errorf("kind attribute = %q", got)
	}

	var decoded Message
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.ID != msg.ID || decoded.Data[DataToken] != "tok" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestSQSTransportError(t *testing.T) {
	client := &fakeSQS{err: errors.New("throttled")}
	transport := NewSQSTransportWithClient(client, "q")

	if err := transport.Send(context.Background(), NewMessage(KindCredentialSetup, "a@b.test", nil)); err == nil {
		t.Error("expected the client error to surface")
	}
}
