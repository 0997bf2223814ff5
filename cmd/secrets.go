package main

import (
	"context"
	"fmt"

	"github.com/Satish-vaishyar/Collage-Events/api"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type GatewaySecrets struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// getGatewaySecrets reads the Razorpay credentials. Local dev takes them from
// env vars; prod reads encrypted parameters out of SSM so they never land in
// task definitions or logs.
func getGatewaySecrets(ctx context.Context, env api.Environment) (GatewaySecrets, error) {
	if env == api.LOCAL {
		return GatewaySecrets{
			KeyID:         getEnvOrDefault("RAZORPAY_KEY_ID", "rzp_test_local"),
			KeySecret:     getEnvOrDefault("RAZORPAY_KEY_SECRET", "local-secret"),
			WebhookSecret: getEnvOrDefault("RAZORPAY_WEBHOOK_SECRET", "local-webhook-secret"),
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return GatewaySecrets{}, fmt.Errorf("failed to get aws config: %w", err)
	}

	ssmClient := ssm.NewFromConfig(cfg)

	keyId, err := getSSMParam(ctx, ssmClient, "/collage-events/razorpay/key-id")
	if err != nil {
		return GatewaySecrets{}, err
	}
	keySecret, err := getSSMParam(ctx, ssmClient, "/collage-events/razorpay/key-secret")
	if err != nil {
		return GatewaySecrets{}, err
	}
	webhookSecret, err := getSSMParam(ctx, ssmClient, "/collage-events/razorpay/webhook-secret")
	if err != nil {
		return GatewaySecrets{}, err
	}

	return GatewaySecrets{
		KeyID:         keyId,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
	}, nil
}

func getSSMParam(ctx context.Context, client *ssm.Client, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get SSM parameter %q: %w", name, err)
	}

	return *out.Parameter.Value, nil
}
