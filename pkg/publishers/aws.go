package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// requestIDAttribute is the message attribute carrying Event.RequestID.
const requestIDAttribute = "request_id"

// AWSAccess carries the region and optional overrides shared by the SQS and
// SNS sinks. Endpoint targets emulators such as LocalStack.
type AWSAccess struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

func (a *AWSAccess) normalize() {
	a.Region = strings.TrimSpace(a.Region)
	a.Endpoint = strings.TrimSpace(a.Endpoint)
	a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
	a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
}

// baseEndpoint is nil when no override is configured.
func (a AWSAccess) baseEndpoint() *string {
	if a.Endpoint == "" {
		return nil
	}
	return aws.String(a.Endpoint)
}

// loadAWSConfig resolves credentials from the default chain unless static
// keys are configured.
func loadAWSConfig(ctx context.Context, access AWSAccess) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(access.Region)}
	if access.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(access.AccessKeyID, access.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// encodeMessage renders evt as a message body plus its request id attribute.
func encodeMessage(evt Event) (body, requestID string, err error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return "", "", fmt.Errorf("marshal event: %w", err)
	}
	requestID = evt.RequestID
	if requestID == "" {
		requestID = "unknown"
	}
	return string(raw), requestID, nil
}
