package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

var (
	verbose    bool
	jsonOutput bool
	logger     *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kafeel",
	Short: "kafeel - focus tracking with streaks, records and levels",
	Long: `kafeel watches which application has focus, turns that into activity
sessions and scores every day by how much of it went to productive work.

Productive days build a streak; sessions and days unlock achievements,
set personal records and earn XP towards the next level.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command. Cobra has already printed a returned error.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// JSONOutput reports whether --json was given.
func JSONOutput() bool {
	return jsonOutput
}
