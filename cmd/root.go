// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/logging"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigName = ".voicematch"

var cfgFile string
var logCloser io.Closer

// newRootCmd builds the command tree. Tests build a fresh tree per run so
// flag values do not leak between cases.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voicematch",
		Short: "Match spoken answers to multiple-choice options",
		Long: `voicematch decides which multiple-choice option a learner meant from a
speech-recognition transcript. Transcripts are normalized for Arabic or
Tagalog, scored against every option by edit-distance similarity and either
auto-accepted, offered as a suggestion or rejected.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
				logCloser = nil
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+defaultConfigName+".yaml)")
	flags.String("bank", "questions.yaml", "question bank YAML file")
	flags.Float64("auto-accept", matcher.DefaultAutoAccept, "similarity at or above which an option is selected")
	flags.Float64("suggest", matcher.DefaultSuggest, "similarity above which an option is suggested")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("bank_path", flags.Lookup("bank"))
	_ = viper.BindPFlag("thresholds.auto_accept", flags.Lookup("auto-accept"))
	_ = viper.BindPFlag("thresholds.suggest", flags.Lookup("suggest"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newBankCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return newRootCmd().Execute()
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(defaultConfigName)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		if _, statErr := os.Stat(cfgFile); statErr == nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	config.InitConfig()
	if err := config.AppConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logging.Setup(logging.Options{
		File:       config.AppConfig.Log.File,
		MaxSizeMB:  config.AppConfig.Log.MaxSizeMB,
		MaxBackups: config.AppConfig.Log.MaxBackups,
		MaxAgeDays: config.AppConfig.Log.MaxAgeDays,
		Compress:   config.AppConfig.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	logCloser = closer
	return nil
}

// openStore loads the configured question bank.
func openStore() (*bank.Store, error) {
	if config.AppConfig.BankPath == "" {
		return nil, fmt.Errorf("question bank not specified (use --bank)")
	}
	store, err := bank.OpenStore(config.AppConfig.BankPath, config.AppConfig.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	return store, nil
}
