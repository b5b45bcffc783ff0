// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

const (
	ModeService = "service"
	ModeLambda  = "lambda"

	TokenSourceEnv = "env"
	TokenSourceSSM = "ssm"

	PayloadTypeAPIGatewayV1 = "api-gateway-v1"
	PayloadTypeAPIGatewayV2 = "api-gateway-v2"
	PayloadTypeLambdaURL    = "lambda-url"

	// DefaultPort is used when no valid port is configured.
	DefaultPort = 3000
)

var (
	// Modes lists the supported runtime modes.
	Modes = []string{ModeService, ModeLambda}
	// TokenSources lists where the verify token can be read from.
	TokenSources = []string{TokenSourceEnv, TokenSourceSSM}
	// LambdaPayloadTypes lists the supported lambda event envelopes.
	LambdaPayloadTypes = []string{PayloadTypeAPIGatewayV1, PayloadTypeAPIGatewayV2, PayloadTypeLambdaURL}

	// ErrMissingVerifyToken is returned when no verify token could be resolved.
	ErrMissingVerifyToken = errors.New("missing required verify token: set VERIFY_TOKEN")
)

// Config contains the whole application configuration. It is resolved once at startup and
// passed by value afterwards.
type Config struct {
	Global  Global  `yaml:"global,omitempty"`
	Webhook Webhook `yaml:"webhook,omitempty"`
	Service Service `yaml:"service,omitempty"`
	Lambda  Lambda  `yaml:"lambda,omitempty"`
}

type Global struct {
	// Mode is the runtime mode used when no subcommand is given.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty" default:"1"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type Webhook struct {
	// VerifyToken is the secret shared with the messaging platform for the subscription handshake.
	VerifyToken string `yaml:"verifyToken,omitempty"`
	// TokenSource selects where VerifyToken is read from.
	TokenSource string `yaml:"verifyTokenSource,omitempty" default:"env"`
	// SSMKey is the SSM parameter holding the verify token when TokenSource is "ssm".
	SSMKey string `yaml:"verifyTokenSSMKey,omitempty"`
	// Path is the route serving the webhook endpoints.
	Path string `yaml:"path,omitempty" default:"/messaging-webhook"`
}

type Service struct {
	Addr    string        `yaml:"addr,omitempty"`
	Port    string        `yaml:"port,omitempty" default:"3000"`
	Timeout time.Duration `yaml:"timeout,omitempty" default:"5s"`
}

type Lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SecretGetter fetches secrets from an external store.
type SecretGetter interface {
	GetSecret(key string, encrypted bool) (*string, error)
}

// Default returns a Config populated with the default values.
func Default() (Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to set configuration defaults")
	}
	return c, nil
}

// LoadFromFile overlays the values found in the YAML file onto cfg.
// A missing file is not an error.
func LoadFromFile(path string, cfg *Config) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	return nil
}

// LoadEnvFile exports the variables of a dotenv file into the process environment.
// Variables already set take precedence and a missing file is not an error.
func LoadEnvFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

// ParsePort returns the port number, or DefaultPort when the value is unset, not numeric or out of range.
func ParsePort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return DefaultPort
	}
	return port
}

// ListenPort returns the TCP port the service listens on.
func (c Config) ListenPort() int {
	return ParsePort(c.Service.Port)
}

// ResolveVerifyToken reads the verify token from SSM when the token source requires it.
func (c *Config) ResolveVerifyToken(secrets SecretGetter) error {
	if c.Webhook.TokenSource != TokenSourceSSM {
		return nil
	}
	if c.Webhook.SSMKey == "" {
		return errors.Wrap(ErrMissingVerifyToken, "verify token source is ssm but no SSM key is configured")
	}
	if secrets == nil {
		return errors.New("no secret store available to resolve the verify token")
	}
	token, err := secrets.GetSecret(c.Webhook.SSMKey, true)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve verify token from %s", c.Webhook.SSMKey)
	}
	if token != nil {
		c.Webhook.VerifyToken = *token
	}
	return nil
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.Webhook.VerifyToken == "" {
		return ErrMissingVerifyToken
	}
	if !slices.Contains(Modes, c.Global.Mode) {
		return fmt.Errorf("invalid mode: %s", c.Global.Mode)
	}
	if !slices.Contains(TokenSources, c.Webhook.TokenSource) {
		return fmt.Errorf("invalid verify token source: %s", c.Webhook.TokenSource)
	}
	if !slices.Contains(LambdaPayloadTypes, c.Lambda.PayloadType) {
		return fmt.Errorf("unsupported lambda payload type: %s", c.Lambda.PayloadType)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("invalid service I/O timeout: %s", c.Service.Timeout)
	}
	return nil
}
