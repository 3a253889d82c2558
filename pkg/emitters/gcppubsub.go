package emitters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// gcpPubSubEmitter implements the Emitter interface for GCP Pub/Sub.
type gcpPubSubEmitter struct {
	id    string
	typ   string
	topic *pubsub.Topic
	log   Logger
}

func newGCPPubSubEmitter(ctx context.Context, cfg EmitterConfig, log Logger) (Emitter, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("emitter %q missing gcppubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubEmitter{
		id:    cfg.ID,
		typ:   TypeGCPPubSub,
		topic: client.Topic(cfg.PubSub.Topic),
		log:   ensureLogger(log),
	}, nil
}

func (g *gcpPubSubEmitter) ID() string   { return g.id }
func (g *gcpPubSubEmitter) Type() string { return g.typ }

// Emit publishes the run summary to the configured Pub/Sub topic and waits
// for the server acknowledgement.
func (g *gcpPubSubEmitter) Emit(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := g.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"new_releases": strconv.FormatBool(evt.Summary.Found),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		g.log.ErrorObj("pubsub emitter publish failed", "emitter_pubsub_error", map[string]any{
			"emitter_id": g.id,
			"error":      err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	return nil
}
