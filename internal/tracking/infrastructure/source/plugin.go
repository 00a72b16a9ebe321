package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
	"github.com/felixgeelhaar/kafeel/pkg/watchersdk"
)

// ErrInvalidPlugin is returned when the watcher binary cannot be used.
var ErrInvalidPlugin = errors.New("invalid watcher plugin")

// PluginSource polls a watcher plugin process for events.
type PluginSource struct {
	client      *plugin.Client
	watcher     watchersdk.Watcher
	pollTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// LaunchPlugin starts the watcher binary at path and connects to it.
func LaunchPlugin(path string, pollTimeout time.Duration, logger *slog.Logger) (*PluginSource, error) {
	binary, err := validateBinaryPath(path)
	if err != nil {
		return nil, err
	}

	logger = observability.Component(logger, "watcher_plugin")
	logger.Info("launching watcher plugin", "binary", binary)

	// #nosec G204 -- binary path is validated by validateBinaryPath
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  watchersdk.Handshake,
		Plugins:          watchersdk.PluginMap(nil),
		Cmd:              exec.Command(binary),
		Logger:           newHclogAdapter(logger, "kafeel"),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("connect to watcher plugin: %w", err)
	}

	raw, err := rpcClient.Dispense(watchersdk.PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense watcher plugin: %w", err)
	}

	watcher, ok := raw.(watchersdk.Watcher)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("%w: plugin does not implement Watcher", ErrInvalidPlugin)
	}

	return newPluginSource(client, watcher, pollTimeout, logger), nil
}

func newPluginSource(client *plugin.Client, watcher watchersdk.Watcher, pollTimeout time.Duration, logger *slog.Logger) *PluginSource {
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginSource{
		client:      client,
		watcher:     watcher,
		pollTimeout: pollTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Run polls the plugin and forwards its events until ctx is cancelled or the
// plugin fails.
func (s *PluginSource) Run(ctx context.Context, out chan<- domain.SystemEvent) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := s.watcher.Poll(s.pollTimeout)
		if err != nil {
			return fmt.Errorf("poll watcher plugin: %w", err)
		}

		for _, wire := range batch {
			event, err := ToSystemEvent(wire, s.now)
			if err != nil {
				s.logger.Warn("skipping invalid plugin event", "error", err)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Foreground asks the plugin for the focused application.
func (s *PluginSource) Foreground(ctx context.Context) (domain.App, bool, error) {
	current, err := s.watcher.Current()
	if err != nil {
		return domain.App{}, false, err
	}
	if current.AppID == "" {
		return domain.App{}, false, nil
	}
	return domain.App{
		ID:          current.AppID,
		DisplayName: current.DisplayName,
		WindowTitle: current.WindowTitle,
	}, true, nil
}

// Close terminates the plugin process.
func (s *PluginSource) Close() {
	if s.client != nil {
		s.client.Kill()
	}
}

func validateBinaryPath(path string) (string, error) {
	binary, err := security.ValidateExecutable(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPlugin, err)
	}
	return binary, nil
}
