package usecase

import (
	"context"
	"encoding/json"

	"meetingprep-ai/internal/analytics/domain"

	"cloud.google.com/go/pubsub"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// Publisher fans stored events out to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event *domain.AnalyticsEvent) error
}

// PubSubPublisher publishes events to a Google Cloud Pub/Sub topic
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func NewPubSubPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pubsub client", goerr.V("project", projectID))
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, goerr.Wrap(err, "failed to check pubsub topic", goerr.V("topic", topicName))
	}
	if !exists {
		client.Close()
		return nil, goerr.New("pubsub topic does not exist", goerr.V("topic", topicName))
	}

	return &PubSubPublisher{client: client, topic: topic}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, event *domain.AnalyticsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal analytics event", goerr.V("id", event.ID))
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event_type": event.EventType},
	})
	if _, err := result.Get(ctx); err != nil {
		return goerr.Wrap(err, "failed to publish analytics event", goerr.V("id", event.ID))
	}
	return nil
}

// Close flushes pending messages and releases the client
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
