package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/isometry/messaging-webhook-app/internal/config"
	"github.com/isometry/messaging-webhook-app/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boundEnvNames = []string{
	"VERIFY_TOKEN", "VERIFY_TOKEN_SOURCE", "VERIFY_TOKEN_SSM_KEY", "WEBHOOK_PATH", "MODE",
	"PORT", "SERVICE_HOST_ADDR", "SERVICE_IO_TIMEOUT", "LAMBDA_PAYLOAD_TYPE",
	"VERBOSITY", "VERBOSITY_CALLER_TRACE",
}

// isolate runs the test from an empty directory with every bound variable cleared.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range boundEnvNames {
		t.Setenv(name, "")
	}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

type staticSecrets string

func (s staticSecrets) GetSecret(string, bool) (*string, error) {
	v := string(s)
	return &v, nil
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
webhook:
  verifyToken: file-token
  path: /hooks/meta
service:
  port: "4000"
  timeout: 2s
`), 0o600))
	t.Setenv("VERIFY_TOKEN", "env-token")

	root := New()
	svc, _, err := root.Find([]string{"service"})
	require.NoError(t, err)
	require.NoError(t, svc.ParseFlags([]string{"--service-io-timeout", "7s", "-v"}))
	require.NoError(t, loadConfig())

	assert.Equal(t, "env-token", cfg.Webhook.VerifyToken, "environment overrides the configuration file")
	assert.Equal(t, "/hooks/meta", cfg.Webhook.Path, "configuration file overrides defaults")
	assert.Equal(t, 4000, cfg.ListenPort())
	assert.Equal(t, 7*time.Second, cfg.Service.Timeout, "flags override the configuration file")
	assert.Equal(t, 2, cfg.Global.Logging.Verbosity)
	assert.Equal(t, config.ModeService, cfg.Global.Mode)
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "not-a-port")

	New()
	require.NoError(t, loadConfig())

	assert.Equal(t, 3000, cfg.ListenPort())
	assert.Equal(t, "/messaging-webhook", cfg.Webhook.Path)
	assert.Empty(t, cfg.Webhook.VerifyToken)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.Unsetenv("VERIFY_TOKEN"))
	require.NoError(t, os.WriteFile(".env", []byte("VERIFY_TOKEN=dotenv-token\n"), 0o600))

	New()
	require.NoError(t, loadConfig())
	assert.Equal(t, "dotenv-token", cfg.Webhook.VerifyToken)
}

func TestStartup_MissingVerifyToken(t *testing.T) {
	for _, args := range [][]string{{}, {"service"}, {"lambda"}} {
		t.Run(strings.Join(append([]string{"root"}, args...), "_"), func(t *testing.T) {
			isolate(t)
			port := freePort(t)
			t.Setenv("PORT", strconv.Itoa(port))

			root := New()
			root.SetArgs(args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			err := root.Execute()
			require.ErrorIs(t, err, config.ErrMissingVerifyToken)

			_, dialErr := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 200*time.Millisecond)
			assert.Error(t, dialErr, "nothing listens when startup aborts")
		})
	}
}

func TestSetup_SSMTokenSource(t *testing.T) {
	isolate(t)
	t.Setenv("VERIFY_TOKEN_SOURCE", config.TokenSourceSSM)
	t.Setenv("VERIFY_TOKEN_SSM_KEY", "/messaging-webhook/verify-token")

	original := newSecretGetter
	t.Cleanup(func() { newSecretGetter = original })
	newSecretGetter = func(*cobra.Command) (config.SecretGetter, error) {
		return staticSecrets("from-ssm"), nil
	}

	root := New()
	require.NoError(t, loadConfig())
	rtm, err := setup(root)
	require.NoError(t, err)

	resp, err := rtm.Process(models.Request{
		Method: http.MethodGet,
		Path:   "/messaging-webhook",
		Query: url.Values{
			"hub.mode":         {"subscribe"},
			"hub.verify_token": {"from-ssm"},
			"hub.challenge":    {"ABC123"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ABC123", resp.Body)
}

func TestSetup_SSMTokenSourceWithoutKey(t *testing.T) {
	isolate(t)
	t.Setenv("VERIFY_TOKEN_SOURCE", config.TokenSourceSSM)

	original := newSecretGetter
	t.Cleanup(func() { newSecretGetter = original })
	newSecretGetter = func(*cobra.Command) (config.SecretGetter, error) {
		return staticSecrets("unused"), nil
	}

	root := New()
	require.NoError(t, loadConfig())
	_, err := setup(root)
	assert.ErrorIs(t, err, config.ErrMissingVerifyToken)
}

func TestService_Lifecycle(t *testing.T) {
	isolate(t)
	port := freePort(t)
	t.Setenv("VERIFY_TOKEN", "SECRET")
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("VERBOSITY", "0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := New()
	root.SetArgs([]string{"service", "--service-host-addr", "127.0.0.1"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	testCases := []struct {
		Name           string
		Method         string
		Target         string
		Body           string
		ExpectedStatus int
		ExpectedBody   string
	}{
		{Name: "ping", Method: http.MethodGet, Target: "/ping", ExpectedStatus: http.StatusOK, ExpectedBody: "pong!"},
		{
			Name:           "verify",
			Method:         http.MethodGet,
			Target:         "/messaging-webhook?hub.mode=subscribe&hub.verify_token=SECRET&hub.challenge=ABC123",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   "ABC123",
		},
		{
			Name:           "verify_wrong_token",
			Method:         http.MethodGet,
			Target:         "/messaging-webhook?hub.mode=subscribe&hub.verify_token=WRONG&hub.challenge=ABC123",
			ExpectedStatus: http.StatusForbidden,
			ExpectedBody:   "Forbidden",
		},
		{
			Name:           "notify_page",
			Method:         http.MethodPost,
			Target:         "/messaging-webhook",
			Body:           `{"object":"page","entry":[]}`,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   "PAGE_EVENT_RECEIVED",
		},
		{
			Name:           "notify_user",
			Method:         http.MethodPost,
			Target:         "/messaging-webhook",
			Body:           `{"object":"user"}`,
			ExpectedStatus: http.StatusNotFound,
			ExpectedBody:   "Not Found",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			req, err := http.NewRequest(tc.Method, base+tc.Target, strings.NewReader(tc.Body))
			require.NoError(t, err)
			if tc.Body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.ExpectedStatus, resp.StatusCode)
			assert.Equal(t, tc.ExpectedBody, string(body))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestRoot_ServiceFlagsWithoutSubcommand(t *testing.T) {
	isolate(t)
	port := freePort(t)
	t.Setenv("VERIFY_TOKEN", "SECRET")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := New()
	root.SetArgs([]string{"--port", strconv.Itoa(port), "-H", "127.0.0.1", "-t", "2s"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, port, cfg.ListenPort())
	assert.Equal(t, 2*time.Second, cfg.Service.Timeout)
}
