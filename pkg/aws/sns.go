package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher is a minimal interface for publishing messages to SNS.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

type SNSClient struct {
	client *sns.Client
}

// NewSNSClient builds an SNS client. AWS_ENDPOINT overrides the endpoint so
// LocalStack can be targeted in development.
func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if ep := os.Getenv("AWS_ENDPOINT"); ep != "" {
			o.BaseEndpoint = sdkaws.String(ep)
		}
	})
	return &SNSClient{client: client}
}

// Publish publishes a raw message to the given SNS topic ARN.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	msg := string(message)
	input := &sns.PublishInput{
		TopicArn: &topicArn,
		Message:  &msg,
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}
