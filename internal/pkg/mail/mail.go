package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// DriverSMTP selects the SMTP relay driver.
	DriverSMTP = "smtp"
	// DriverLog selects the logging driver.
	DriverLog = "log"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the driver default is used when empty.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// NewFromDriver builds a Mail implementation by driver name.
func NewFromDriver(driver string, smtpCfg SMTPConfig) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP:
		return NewSMTP(smtpCfg)
	case DriverLog:
		return NewLog(nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

func recipients(msg Message) []string {
	out := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	out = append(out, msg.To...)
	out = append(out, msg.Cc...)
	return append(out, msg.Bcc...)
}
