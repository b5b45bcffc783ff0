package cmd

import (
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/messaging-webhook-app/internal/config"
	"github.com/isometry/messaging-webhook-app/internal/controllers/aws"
	"github.com/isometry/messaging-webhook-app/internal/handler"
	"github.com/isometry/messaging-webhook-app/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// newSecretGetter builds the SSM-backed secret store. Tests replace it.
var newSecretGetter = func(cmd *cobra.Command) (config.SecretGetter, error) {
	return aws.NewController(
		aws.WithContext(cmd.Context()),
		aws.WithLogger(logger.With("component", "aws-controller")))
}

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the webhook as an AWS Lambda function",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd)
		},
	}
}

func runLambda(cmd *cobra.Command) error {
	logger = logger.With("mode", config.ModeLambda)

	rtm, err := setup(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", slog.String("payloadType", cfg.Lambda.PayloadType))
	lambda.StartWithOptions(rtm.HandleEvent,
		lambda.WithContext(cmd.Context()))
	return nil
}

// setup resolves the verify token, validates the configuration and builds the runtime.
// Nothing is served when it fails.
func setup(cmd *cobra.Command) (*runtime.Runtime, error) {
	if cfg.Webhook.TokenSource == config.TokenSourceSSM {
		logger.Debug("resolving verify token from SSM...", slog.String("key", cfg.Webhook.SSMKey))
		secrets, err := newSecretGetter(cmd)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
		if err = cfg.ResolveVerifyToken(secrets); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		return nil, err
	}

	logger.Debug("creating webhook handler...")
	hdl, err := handler.NewWebhookHandler(
		handler.WithVerifyToken(cfg.Webhook.VerifyToken),
		handler.WithWebhookPath(cfg.Webhook.Path),
		handler.WithLogger(logger.With("component", "webhook-handler")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create webhook handler")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLambdaPayloadType(cfg.Lambda.PayloadType),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
