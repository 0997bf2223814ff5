package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/Satish-vaishyar/Collage-Events/api"
	"github.com/Satish-vaishyar/Collage-Events/dynamo"
	"github.com/Satish-vaishyar/Collage-Events/payments"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/getkin/kin-openapi/openapi3"
)

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	env := api.Environment(getEnvOrDefault("ENV", string(api.LOCAL)))

	swagger, err := loadSwagger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading openapi spec\n: %s", err)
		os.Exit(1)
	}

	dynamoClient, err := createDynamoClient(ctx, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dynamo client\n: %s", err)
		os.Exit(1)
	}
	db := dynamo.NewDB(dynamoClient, getEnvOrDefault("TABLE_NAME", "CollageEvents"))

	secrets, err := getGatewaySecrets(ctx, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching gateway secrets\n: %s", err)
		os.Exit(1)
	}
	gateway := payments.NewRazorpayGateway(secrets.KeyID, secrets.KeySecret)
	verifier := payments.NewHMACVerifier(secrets.KeySecret, secrets.WebhookSecret)

	emailSender, err := createEmailSender(ctx, logger, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating email sender\n: %s", err)
		os.Exit(1)
	}

	eventAPI := api.NewAPI(
		db,
		logger,
		env,
		gateway,
		verifier,
		emailSender,
		api.GoogleTokenValidator{},
		getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
	)

	serverSettings := getServerSettingsFromEnv()
	s := &http.Server{
		Handler: eventAPI.Routes(swagger),
		Addr:    net.JoinHostPort(serverSettings.Host, serverSettings.Port),
	}

	logger.Info("Starting server", slog.String("addr", s.Addr), slog.String("env", string(env)))
	log.Fatal(s.ListenAndServe())
}

func loadSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	swagger, err := loader.LoadFromFile(getEnvOrDefault("SPEC_PATH", "spec/api.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}

	// Validate against paths only, ignore the servers list.
	swagger.Servers = nil

	return swagger, nil
}

func createDynamoClient(ctx context.Context, env api.Environment) (*dynamodb.Client, error) {
	if env == api.LOCAL {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get aws config: %w", err)
		}

		return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(getEnvOrDefault("DYNAMO_ENDPOINT", "http://localhost:8000"))
		}), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg), nil
}

type ServerSettings struct {
	Host string
	Port string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Host: getEnvOrDefault("HOST", "0.0.0.0"),
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
