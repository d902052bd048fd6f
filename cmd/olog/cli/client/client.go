package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mwantia/olog/internal/agent"
	"github.com/mwantia/olog/pkg/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	config "github.com/mwantia/olog/internal/config/server"
)

// withServices opens the configured index and blob store for the duration of
// fn. Log output goes to stderr so stdout only carries results.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *agent.Services) error) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	logger := log.NewLoggerServiceWithWriter("olog", cfg.Log, cmd.ErrOrStderr())
	svc, err := agent.OpenServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, svc)
}

func printYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return enc.Close()
}

// splitKeyValue splits "key=value" at the first '='.
func splitKeyValue(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected key=value, got '%s'", arg)
	}
	return key, value, nil
}
