package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSend(t *testing.T) {
	fd := &fakeDialer{}
	s := NewSMTP(Config{Host: "smtp.example.com", Port: 587, Username: "bot@example.com"})
	s.dialer = fd

	err := s.Send(context.Background(), Message{To: "camper@example.com", Subject: "Hi", HTML: "<p>hello</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fd.sent) != 1 {
		t.Fatalf("expected one message")
	}
	m := fd.sent[0]
	if m.GetHeader("From")[0] != "bot@example.com" || m.GetHeader("To")[0] != "camper@example.com" || m.GetHeader("Subject")[0] != "Hi" {
		t.Fatalf("unexpected headers")
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "text/html") {
		t.Fatalf("expected html body")
	}
}

func TestSMTPSendErrors(t *testing.T) {
	fd := &fakeDialer{err: errors.New("auth failed")}
	s := NewSMTP(Config{From: "noreply@example.com"})
	s.dialer = fd

	if err := s.Send(context.Background(), Message{}); err == nil {
		t.Fatalf("expected missing recipient error")
	}
	if err := s.Send(context.Background(), Message{To: "a@example.com"}); err == nil || !strings.Contains(err.Error(), "auth failed") {
		t.Fatalf("expected dial error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: "a@example.com"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
