// Package mail sends email messages.
//
// Use cases depend on the Mail interface and the Message payload only. Two
// drivers exist: SMTP relays through a configured server, Log writes the
// message to slog and is meant for local demos where no relay is available.
package mail
