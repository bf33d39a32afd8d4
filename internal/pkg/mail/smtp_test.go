package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one session and records the envelope and data.
type fakeSMTP struct {
	ln   net.Listener
	done chan struct{}
	from string
	rcpt []string
	data string
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	go f.serve()

	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)

	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.from = strings.Trim(line[len("MAIL FROM:"):], "<> ")
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			f.rcpt = append(f.rcpt, strings.Trim(line[len("RCPT TO:"):], "<> "))
			reply("250 OK")
		case cmd == "DATA":
			reply("354 go ahead")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			f.data = sb.String()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestNewSMTP_Config(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Port: 25, From: "shop@example.com"})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)
	assert.True(t, goerror.HasCode(err, goerror.CodeConfiguration))

	_, err = NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.ErrorIs(t, err, ErrSMTPNoSender)

	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "shop@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", s.addr)
	assert.Nil(t, s.auth)
}

func TestSMTP_Send(t *testing.T) {
	srv := startFakeSMTP(t)

	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), From: "shop@example.com"})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{
		To:       []string{"alice@test.com"},
		Subject:  "Your verification code",
		TextBody: "Your code is 123456. It expires in 10 minutes.",
	})
	require.NoError(t, err)
	<-srv.done

	assert.Equal(t, "shop@example.com", srv.from)
	assert.Equal(t, []string{"alice@test.com"}, srv.rcpt)
	assert.Contains(t, srv.data, "Subject: Your verification code\r\n")
	assert.Contains(t, srv.data, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, srv.data, "Your code is 123456.")
	assert.Contains(t, srv.data, "Message-ID: <")
	assert.Contains(t, srv.data, "@example.com>\r\n")
}

func TestSMTP_SendEnvelope(t *testing.T) {
	srv := startFakeSMTP(t)

	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), From: "shop@example.com"})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{
		From:     "Shop <billing@example.com>",
		To:       []string{"Alice <alice@test.com>"},
		Cc:       []string{"ALICE@test.com"},
		Bcc:      []string{"audit@example.com"},
		Subject:  "Invoice",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})
	require.NoError(t, err)
	<-srv.done

	assert.Equal(t, "billing@example.com", srv.from)
	assert.Equal(t, []string{"alice@test.com", "audit@example.com"}, srv.rcpt)
	assert.Contains(t, srv.data, "From: \"Shop\" <billing@example.com>\r\n")
	assert.NotContains(t, srv.data, "audit@example.com")
	assert.Contains(t, srv.data, "Content-Type: multipart/alternative; boundary=shopauth-")
}

func TestSMTP_SendRejectsBadAddresses(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "shop@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  Message
	}{
		{name: "recipient", msg: Message{To: []string{"not an address"}}},
		{name: "header injection", msg: Message{To: []string{"a@b.co\r\nBcc: x@y.co"}}},
		{name: "sender", msg: Message{From: "nobody", To: []string{"a@b.co"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Send(context.Background(), tt.msg)
			assert.ErrorIs(t, err, ErrSMTPInvalidAddress)
		})
	}

	_, err = NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "shop"})
	assert.ErrorIs(t, err, ErrSMTPInvalidAddress)
	assert.True(t, goerror.HasCode(err, goerror.CodeConfiguration))
}

func TestSMTP_SendErrors(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "shop@example.com"})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrSMTPNoRecipients)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, Message{To: []string{"a@b.co"}})
	assert.ErrorIs(t, err, context.Canceled)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s, err = NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: port, From: "shop@example.com"})
	require.NoError(t, err)
	err = s.Send(context.Background(), Message{To: []string{"a@b.co"}, TextBody: "hi"})
	assert.Error(t, err)
}

func TestBuildBody(t *testing.T) {
	body, ct := buildBody(Message{TextBody: "plain"})
	assert.Equal(t, "plain", body)
	assert.Equal(t, "text/plain; charset=UTF-8", ct)

	body, ct = buildBody(Message{HTMLBody: "<p>x</p>"})
	assert.Equal(t, "<p>x</p>", body)
	assert.Equal(t, "text/html; charset=UTF-8", ct)

	body, ct = buildBody(Message{TextBody: "plain", HTMLBody: "<p>x</p>"})
	assert.True(t, strings.HasPrefix(ct, "multipart/alternative; boundary=shopauth-"))
	assert.Contains(t, body, "Content-Type: text/plain; charset=UTF-8\r\n\r\nplain")
	assert.Contains(t, body, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>")
}

func TestNewFromDriver(t *testing.T) {
	m, err := NewFromDriver("log", SMTPConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Log{}, m)

	m, err = NewFromDriver("SMTP", SMTPConfig{Host: "localhost", Port: 2525, From: "a@b.co"})
	require.NoError(t, err)
	assert.IsType(t, &SMTP{}, m)

	_, err = NewFromDriver("smtp", SMTPConfig{})
	assert.True(t, goerror.HasCode(err, goerror.CodeConfiguration))

	_, err = NewFromDriver("sendgrid", SMTPConfig{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
	assert.Contains(t, err.Error(), "sendgrid")
}
