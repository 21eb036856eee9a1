// file: cmd/serve.go
// version: 1.0.0
// guid: 2a7e4c1b-8f3d-4b6a-9c5e-0d1f7a3b8e62

package cmd

import (
	"fmt"
	"time"

	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/server"
	"github.com/jdfalk/voicematch/internal/watcher"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the matching API server",
		Long: `Start the HTTP API. Clients post transcripts to /api/v1/match or
/api/v1/questions/{id}/match and follow decisions at /api/v1/events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			info := store.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d questions from %s\n", info.Questions, store.Path())

			watch, _ := cmd.Flags().GetBool("watch")
			if watch || config.AppConfig.WatchBank {
				if err := store.Watch(watcher.DefaultDebounce); err != nil {
					return fmt.Errorf("watch question bank: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Watching question bank for changes")
			}

			cfg, err := serverConfigFromFlags(cmd)
			if err != nil {
				return err
			}

			srv := server.NewServer(config.AppConfig, store, nil)
			return srv.Start(cfg)
		},
	}

	cmd.Flags().String("port", "8080", "port to run the API server on")
	cmd.Flags().String("host", "localhost", "host to bind the API server to")
	cmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	cmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	cmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	cmd.Flags().Bool("watch", false, "reload the question bank when the file changes")
	return cmd
}

// serverConfigFromFlags overlays flags the user set on the configured
// listener settings.
func serverConfigFromFlags(cmd *cobra.Command) (server.ServerConfig, error) {
	cfg := server.GetDefaultServerConfig()
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"read-timeout", &cfg.ReadTimeout},
		{"write-timeout", &cfg.WriteTimeout},
		{"idle-timeout", &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if !flags.Changed(d.name) {
			continue
		}
		raw, _ := flags.GetString(d.name)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid --%s %q: %w", d.name, raw, err)
		}
		*d.dst = v
	}
	return cfg, nil
}
