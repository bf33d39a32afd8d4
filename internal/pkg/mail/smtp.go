package mail

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	netmail "net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
	// ErrSMTPInvalidAddress is returned for a sender or recipient that is not an RFC 5322 address.
	ErrSMTPInvalidAddress = errors.New("invalid email address")
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender when Message.From is empty. Required.
	From string
	// Timeout bounds one whole session when ctx has no earlier deadline.
	Timeout time.Duration
}

// SMTP delivers each message in its own session. The session is upgraded
// with STARTTLS whenever the relay advertises it and credentials are only
// sent when the relay advertises AUTH.
type SMTP struct {
	host    string
	addr    string
	from    string
	auth    smtp.Auth
	timeout time.Duration
}

// NewSMTP validates cfg without dialing.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, goerror.NewConfiguration(ErrSMTPHostPortRequired)
	}
	if cfg.From == "" {
		return nil, goerror.NewConfiguration(ErrSMTPNoSender)
	}
	if _, err := netmail.ParseAddress(cfg.From); err != nil {
		return nil, goerror.NewConfiguration(fmt.Errorf("%w: %q", ErrSMTPInvalidAddress, cfg.From))
	}

	s := &SMTP{
		host:    cfg.Host,
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:    cfg.From,
		timeout: cfg.Timeout,
	}
	if s.timeout <= 0 {
		s.timeout = defaultSMTPTimeout
	}
	if cfg.Username != "" && cfg.Password != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return s, nil
}

// Send composes msg and hands it to the relay.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.from
	}
	sender, err := netmail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrSMTPInvalidAddress, from)
	}

	rcpt, err := envelopeRecipients(msg)
	if err != nil {
		return err
	}
	if len(rcpt) == 0 {
		return ErrSMTPNoRecipients
	}

	data, err := compose(sender, msg, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.deliver(ctx, sender.Address, rcpt, data)
}

func (s *SMTP) deliver(ctx context.Context, from string, rcpt []string, data []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", s.addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		//nolint:errcheck // a failed deadline surfaces on the next read
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && s.auth != nil {
		if err := c.Auth(s.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, to := range rcpt {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", to, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	return c.Quit()
}

// Close implements io.Closer; SMTP holds no connection between sends.
func (s *SMTP) Close() error {
	return nil
}

// envelopeRecipients parses To, Cc and Bcc, dropping duplicates.
func envelopeRecipients(msg Message) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	for _, raw := range recipients(msg) {
		addr, err := netmail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrSMTPInvalidAddress, raw)
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr.Address)
	}
	return out, nil
}

// compose renders the RFC 5322 message. Bcc never appears in the headers.
func compose(sender *netmail.Address, msg Message, now time.Time) ([]byte, error) {
	body, contentType := buildBody(msg)

	h := []string{
		"From: " + sender.String(),
		"To: " + strings.Join(msg.To, ", "),
	}
	if len(msg.Cc) > 0 {
		h = append(h, "Cc: "+strings.Join(msg.Cc, ", "))
	}
	h = append(h,
		"Subject: "+mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: "+now.Format(time.RFC1123Z),
		"Message-ID: "+messageID(sender.Address),
		"MIME-Version: 1.0",
		"Content-Type: "+contentType,
	)
	for _, line := range h {
		if strings.ContainsAny(line, "\r\n") {
			return nil, fmt.Errorf("%w: header contains a line break", ErrSMTPInvalidAddress)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(h, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// buildBody returns a single part when only one body is set and a
// multipart/alternative document when both are.
func buildBody(msg Message) (body string, contentType string) {
	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
	case msg.HTMLBody != "":
		return msg.HTMLBody, "text/html; charset=UTF-8"
	default:
		return msg.TextBody, "text/plain; charset=UTF-8"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	//nolint:errcheck // hex characters are always a valid boundary
	mw.SetBoundary(randomToken("shopauth-"))
	for _, part := range []struct{ ctype, content string }{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
		if err != nil {
			continue
		}
		_, _ = pw.Write([]byte(part.content))
	}
	_ = mw.Close()

	return buf.String(), "multipart/alternative; boundary=" + mw.Boundary()
}

func messageID(sender string) string {
	domain := "shopauth.local"
	if _, d, ok := strings.Cut(sender, "@"); ok && d != "" {
		domain = d
	}
	return "<" + randomToken("") + "@" + domain + ">"
}

func randomToken(prefix string) string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return prefix + strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return prefix + hex.EncodeToString(b[:])
}
