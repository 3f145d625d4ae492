package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSGateway implements Gateway on top of AWS SNS.
type SNSGateway struct {
	client   *sns.Client
	senderID string
}

func NewSNSGateway(ctx context.Context, region, senderID string) (*SNSGateway, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SNSGateway{
		client:   sns.NewFromConfig(cfg),
		senderID: senderID,
	}, nil
}

// Send publishes an SMS to phone. Opted-out numbers are reported in the
// result rather than published to.
func (g *SNSGateway) Send(ctx context.Context, phone, message string) (*Result, error) {
	optedOut, err := g.client.CheckIfPhoneNumberIsOptedOut(ctx, &sns.CheckIfPhoneNumberIsOptedOutInput{
		PhoneNumber: aws.String(phone),
	})
	if err != nil {
		return nil, fmt.Errorf("opt-out check failed: %w", err)
	}
	if optedOut.IsOptedOut {
		return &Result{OptedOut: true}, nil
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if g.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(g.senderID),
		}
	}

	out, err := g.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("publish failed: %w", err)
	}

	return &Result{Success: true, MessageID: aws.ToString(out.MessageId)}, nil
}
