package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultview/vaultview/internal/export"
	"github.com/vaultview/vaultview/internal/httpapi"
	"github.com/vaultview/vaultview/internal/presenters"
	"github.com/vaultview/vaultview/pkg/configuration"
	"github.com/vaultview/vaultview/pkg/credentials"
	"github.com/vaultview/vaultview/pkg/logging"
	"github.com/vaultview/vaultview/pkg/portfolio"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flagValues struct {
	apiURL          string
	listenAddr      string
	credentialsFile string
	logLevel        string
	sortBy          string
	descending      bool
	output          string
}

func newRootCommand() *cobra.Command {
	configuration.LoadDotEnv()
	config := configuration.New()
	flags := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           "vaultview",
		Short:         "Security posture dashboard across Dashlane business tenants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyFlag(cmd, config, configuration.API_URL, "api-url", flags.apiURL)
			applyFlag(cmd, config, configuration.LISTEN_ADDR, "listen-addr", flags.listenAddr)
			applyFlag(cmd, config, configuration.CREDENTIALS_FILE, "credentials-file", flags.credentialsFile)
			applyFlag(cmd, config, configuration.LOG_LEVEL, "log-level", flags.logLevel)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.apiURL, "api-url", "", "vendor Teams API base URL")
	persistent.StringVar(&flags.credentialsFile, "credentials-file", "", "path of the stored credential set")
	persistent.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	persistent.Bool(configuration.DEBUG, false, "enable debug logging")
	persistent.Bool(configuration.INSECURE_HTTPS, false, "skip TLS certificate verification")
	_ = config.AddFlagSet(persistent)

	rootCmd.AddCommand(newServeCommand(config, flags))
	rootCmd.AddCommand(newReportCommand(config, flags))
	rootCmd.AddCommand(newExportCommand(config, flags))
	rootCmd.AddCommand(newCredentialsCommand(config))

	return rootCmd
}

// applyFlag copies an explicitly set flag value into the configuration. Flags
// with names different from their configuration key cannot use viper's pflag
// binding directly.
func applyFlag(cmd *cobra.Command, config configuration.Configuration, key, flagName, value string) {
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		config.Set(key, value)
	}
}

func newServeCommand(config configuration.Configuration, flags *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio aggregation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, scrubber := logging.New(config, os.Stderr)

			server := httpapi.NewServer(config, &logger, scrubber)

			errChan := make(chan error, 1)
			go func() { errChan <- server.ListenAndServe() }()

			signalChan := make(chan os.Signal, 1)
			signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errChan:
				return err
			case sig := <-signalChan:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&flags.listenAddr, "listen-addr", "", "address the HTTP API binds to")
	return cmd
}

func newReportCommand(config configuration.Configuration, flags *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch all tenants and print the portfolio overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchPortfolio(cmd.Context(), config)
			if err != nil {
				return err
			}

			sortConfig := portfolio.SortConfig{Key: flags.sortBy, Direction: portfolio.Ascending}
			if flags.descending {
				sortConfig.Direction = portfolio.Descending
			}

			presenter := presenters.NewPortfolioPresenter(os.Stdout, sortConfig)
			return presenter.Render(records)
		},
	}
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "tenant sort key (name, active_seats, score, ...)")
	cmd.Flags().BoolVar(&flags.descending, "descending", false, "sort in descending order")
	return cmd
}

func newExportCommand(config configuration.Configuration, flags *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch all tenants and write the member roster as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchPortfolio(cmd.Context(), config)
			if err != nil {
				return err
			}

			out := os.Stdout
			if flags.output != "" && flags.output != "-" {
				file, err := os.Create(flags.output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			return export.WriteCSV(out, records)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// fetchPortfolio loads the stored credential set and runs all tenant
// pipelines to completion.
func fetchPortfolio(ctx context.Context, config configuration.Configuration) ([]portfolio.TenantRecord, error) {
	logger, scrubber := logging.New(config, os.Stderr)

	store := credentials.NewStore(config.GetString(configuration.CREDENTIALS_FILE))
	set, err := store.Load()
	if err != nil {
		return nil, err
	}

	set = set.Normalize()
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("stored credentials are invalid, run \"vaultview credentials add\" first: %w", err)
	}
	for _, token := range set.Tokens() {
		scrubber.AddTerm(token)
	}

	registry := portfolio.NewRegistry()
	orchestrator := portfolio.NewOrchestrator(registry, config, &logger)
	return orchestrator.FetchAll(ctx, set), nil
}

func newCredentialsCommand(config configuration.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the stored tenant credential set",
	}

	addCmd := &cobra.Command{
		Use:   "add <name> <token>",
		Short: "Add or replace one tenant credential",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentials.NewStore(config.GetString(configuration.CREDENTIALS_FILE))
			set, err := store.Load()
			if err != nil {
				return err
			}

			replaced := false
			for i := range set {
				if set[i].Name == args[0] {
					set[i].Token = args[1]
					replaced = true
				}
			}
			if !replaced {
				set = append(set, credentials.Credential{Name: args[0], Token: args[1]})
			}

			set = set.Normalize()
			if err := set.Validate(); err != nil {
				return err
			}
			return store.Save(set)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tenant names (tokens are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentials.NewStore(config.GetString(configuration.CREDENTIALS_FILE))
			set, err := store.Load()
			if err != nil {
				return err
			}
			for _, credential := range set {
				fmt.Fprintln(cmd.OutOrStdout(), credential.Name)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored credential set",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentials.NewStore(config.GetString(configuration.CREDENTIALS_FILE))
			return store.Clear()
		},
	}

	cmd.AddCommand(addCmd, listCmd, clearCmd)
	return cmd
}
