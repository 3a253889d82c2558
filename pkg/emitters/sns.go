package emitters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient defines the minimal subset of the SNS client used by snsEmitter.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsEmitter implements the Emitter interface for AWS SNS.
type snsEmitter struct {
	id       string
	topicARN string
	typ      string
	client   snsClient
	log      Logger
}

func newSNSEmitter(ctx context.Context, cfg EmitterConfig, log Logger) (Emitter, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("emitter %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}

	return &snsEmitter{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsEmitter) ID() string   { return s.id }
func (s *snsEmitter) Type() string { return s.typ }

// Emit publishes the run summary to the configured SNS topic.
func (s *snsEmitter) Emit(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"new_releases": {
				DataType:    aws.String("String"),
				StringValue: aws.String(strconv.FormatBool(evt.Summary.Found)),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns emitter publish failed", "emitter_sns_error", map[string]any{
			"emitter_id": s.id,
			"error":      err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns emitter delivered run summary", "emitter_sns_delivery", map[string]any{
		"emitter_id": s.id,
	})
	return nil
}
