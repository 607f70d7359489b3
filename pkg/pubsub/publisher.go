// Package pubsub publishes registry notifications to Google Pub/Sub
package pubsub // import "github.com/joincivil/civil-content-registry/pkg/pubsub"

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	defaultPublishTimeout = 10 * time.Second
)

// RegistrationMessage is the payload published for every new registration
type RegistrationMessage struct {
	Fingerprint     string `json:"fingerprint"`
	Publisher       string `json:"publisher"`
	Category        string `json:"category"`
	MetadataPointer string `json:"metadataPointer"`
	Timestamp       int64  `json:"timestamp"`
}

// NewRegistrationMessage builds the message for a record
func NewRegistrationMessage(record *model.ContentRecord) *RegistrationMessage {
	return &RegistrationMessage{
		Fingerprint:     record.Fingerprint().Hex(),
		Publisher:       record.Publisher().Hex(),
		Category:        record.Category().String(),
		MetadataPointer: record.MetadataPointer(),
		Timestamp:       record.Timestamp(),
	}
}

// NewPublisher returns a Publisher for an existing topic. The client options
// are passed through to pubsub.NewClient, the PUBSUB_EMULATOR_HOST env var is
// honored by the client.
func NewPublisher(ctx context.Context, projectID string, topicName string,
	opts ...option.ClientOption) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating pubsub client")
	}
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "error checking topic %v", topicName)
	}
	if !exists {
		client.Close() // nolint: errcheck
		return nil, errors.Errorf("topic %v does not exist", topicName)
	}
	return &Publisher{client: client, topic: topic, timeout: defaultPublishTimeout}, nil
}

// Publisher sends ContentRegistered notifications to a Pub/Sub topic
type Publisher struct {
	client  *pubsub.Client
	topic   *pubsub.Topic
	timeout time.Duration
}

// NotifyContentRegistered publishes the record and waits for the server ack
func (p *Publisher) NotifyContentRegistered(record *model.ContentRecord) error {
	payload, err := json.Marshal(NewRegistrationMessage(record))
	if err != nil {
		return errors.Wrap(err, "error marshalling registration message")
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"eventType": string(model.EventContentRegistered)},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "error publishing registration")
	}
	log.V(2).Infof("Published registration %v as %v", record.Fingerprint().Hex(), id)
	return nil
}

// Close flushes pending messages and closes the client
func (p *Publisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
