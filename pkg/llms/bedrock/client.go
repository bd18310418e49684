package bedrock

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/llms/internal/generation"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	defaultModelName = "us.anthropic.claude-3-5-sonnet-20241022-v2:0"
	providerName     = "bedrock"
	defaultRegion    = "us-east-1"
)

func newClient(ctx context.Context, cfg model.GeneratorConfig) (*bedrockruntime.Client, error) {
	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}

	return bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if endpoint := strings.TrimSpace(cfg.URL); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// loadAWSConfig prefers static keys, then a named profile. Ambient instance credentials are not used.
func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = defaultRegion
	}

	accessKeyID := strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	secretAccessKey := strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	profile := strings.TrimSpace(os.Getenv("AWS_PROFILE"))

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	switch {
	case accessKeyID != "" || secretAccessKey != "":
		if accessKeyID == "" || secretAccessKey == "" {
			return aws.Config{}, utils.WrapIfNotNil(
				errors.New("both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when using key-based auth"),
			)
		}
		sessionToken := strings.TrimSpace(os.Getenv("AWS_SESSION_TOKEN"))
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		))
	case profile != "":
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	default:
		return aws.Config{}, utils.WrapIfNotNil(
			errors.New("missing AWS credentials: set AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY or AWS_PROFILE"),
		)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, utils.WrapIfNotNil(err)
	}
	return awsCfg, nil
}

func resolveModelName(cfg model.GeneratorConfig) string {
	return generation.ResolveModelName(cfg, defaultModelName)
}
