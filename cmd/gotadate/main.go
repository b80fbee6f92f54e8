package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/server"
	"github.com/hrygo/gotadate/store"
	"github.com/hrygo/gotadate/store/db"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "gotadate",
		Short: `Extract calendar dates and times from free-form English text.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if viper.GetBool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP extraction API",
		PreRun: func(_ *cobra.Command, _ []string) {
			if !viper.GetBool("verbose") {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			storeInstance, err := openStore(ctx, instanceProfile)
			if err != nil {
				return err
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				storeInstance.Close()
				return fmt.Errorf("failed to create server: %w", err)
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			// The default signal sent by the `kill` command is SIGTERM,
			// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				storeInstance.Close()
				return fmt.Errorf("failed to start server: %w", err)
			}

			printGreetings(cmd, instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			// Wait for CTRL-C.
			<-ctx.Done()
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone results are expressed in (default from GOTADATE_TIMEZONE or Local)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level, including skipped fragments")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("gotadate")
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, newExtractCmd(), newTokensCmd())
}

// loadProfile builds a validated profile from flags, GOTADATE_* variables and defaults.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	instanceProfile.FromEnv()
	if tz := viper.GetString("timezone"); tz != "" {
		instanceProfile.Timezone = tz
	}
	if err := instanceProfile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return instanceProfile, nil
}

// openStore opens the configured database and applies the schema.
func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to create db driver: %w", err)
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return storeInstance, nil
}

func printGreetings(cmd *cobra.Command, p *profile.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "gotadate %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprintf(out, "Running in %s mode, driver %s, dsn %s\n", p.Mode, p.Driver, p.DSN)
	}
	fmt.Fprintf(out, "Listening on %s:%d\n", p.Addr, p.Port)
	fmt.Fprintf(out, "Default timezone: %s\n", p.Timezone)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
