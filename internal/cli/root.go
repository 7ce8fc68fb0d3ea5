package cli

import (
	"github.com/spf13/cobra"

	"ticksched/internal/config"
	"ticksched/internal/logging"
)

var (
	flagConfig   string
	flagLogLevel string

	cfg    config.Config
	logger logging.Logger
)

// NewRootCmd creates the root cobra command for the ticksched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ticksched",
		Short: "ticksched - cooperative tick scheduler demo board",
		Long: `ticksched polls a fixed, priority-ordered list of tasks against a 32-bit
millisecond tick counter and runs at most one ready task per pass.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}

			if flagLogLevel != "" {
				loaded.Log.Level = flagLogLevel
				if err := loaded.Validate(); err != nil {
					return err
				}
			}

			cfg = loaded
			logger = logging.New(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yml", "YAML config file (missing file means defaults)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(),
		newConfigCmd(),
	)

	return root
}
