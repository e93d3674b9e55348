package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// Value is a raw secret as returned by the store.
type Value struct {
	ARN          string
	SecretString string
	// Binary is set when the secret only has a SecretBinary payload.
	Binary bool
}

// Fetcher reads a secret from a backing store.
type Fetcher interface {
	Fetch(ctx context.Context, secretID, region string) (Value, error)
}

// SecretsManagerAPI is the subset of the SDK client used by AWSFetcher.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ClientFactory builds an SDK client for a region. An empty region defers to
// the SDK's own resolution (shared config, IMDS).
type ClientFactory func(ctx context.Context, region string) (SecretsManagerAPI, error)

// AWSFetcher reads secrets from AWS Secrets Manager. One SDK client is kept
// per region.
type AWSFetcher struct {
	newClient ClientFactory

	mu      sync.Mutex
	clients map[string]SecretsManagerAPI
}

// NewAWSFetcher returns a fetcher using factory, or the default SDK
// configuration chain when factory is nil.
func NewAWSFetcher(factory ClientFactory) *AWSFetcher {
	if factory == nil {
		factory = defaultClientFactory
	}

	return &AWSFetcher{newClient: factory, clients: make(map[string]SecretsManagerAPI)}
}

func defaultClientFactory(ctx context.Context, region string) (SecretsManagerAPI, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return secretsmanager.NewFromConfig(cfg), nil
}

func (f *AWSFetcher) client(ctx context.Context, region string) (SecretsManagerAPI, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[region]; ok {
		return c, nil
	}

	c, err := f.newClient(ctx, region)
	if err != nil {
		return nil, err
	}

	f.clients[region] = c

	return c, nil
}

// Fetch implements Fetcher.
func (f *AWSFetcher) Fetch(ctx context.Context, secretID, region string) (Value, error) {
	c, err := f.client(ctx, region)
	if err != nil {
		return Value{}, err
	}

	out, err := c.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretID)})
	if err != nil {
		return Value{}, mapAWSError(secretID, err)
	}

	v := Value{ARN: aws.ToString(out.ARN)}
	if out.SecretString == nil {
		v.Binary = len(out.SecretBinary) > 0
		return v, nil
	}

	v.SecretString = *out.SecretString

	return v, nil
}

func mapAWSError(secretID string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, secretID)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
		return fmt.Errorf("%w: %s", ErrAccessDenied, secretID)
	}

	return fmt.Errorf("get secret value %s: %w", secretID, err)
}
