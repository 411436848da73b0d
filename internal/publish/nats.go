// Package publish distributes decoded track records over NATS so downstream
// consumers (displays, archives, fusion systems) can subscribe to the feed.
package publish

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// DefaultSubject is the subject decoded tracks are published to unless
// configured otherwise.
const DefaultSubject = "cat62.tracks"

// Publisher publishes decoded records as JSON messages.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *logrus.Logger
}

// Connect dials the NATS server and prepares a publisher on the subject.
func Connect(url, subject string, logger *logrus.Logger) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url, nats.Name("cat62-asterix"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	logger.WithFields(logrus.Fields{
		"url":     url,
		"subject": subject,
	}).Info("Connected to NATS")
	return &Publisher{nc: nc, subject: subject, logger: logger}, nil
}

// PublishRecord publishes one decoded track record.
func (p *Publisher) PublishRecord(record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := p.nc.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.WithError(err).Warn("NATS drain failed")
	}
}
