package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/app"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/handler"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/logging"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/notion"
)

var (
	// Global flags
	envFile string
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "calendarsync",
	Short: "Copy campaign pages from Notion into the content calendar",
	Long: `calendarsync reads the campaign strategy database, creates a Draft entry in
the content calendar for every child page of an unprocessed campaign, copies
the page body onto it and marks the campaign processed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if envFile != "" {
			cfg, err = config.Load(envFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, true)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd processes every unprocessed campaign once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every unprocessed campaign",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(func(ctx context.Context, h *handler.Handler) error {
			return printResponse(cmd.OutOrStdout(), h.Process(ctx, handler.Event{Source: "cli"}))
		})
	},
}

// processCmd processes one campaign regardless of its Processed flag
var processCmd = &cobra.Command{
	Use:   "process [campaign-id]",
	Short: "Process a single campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(func(ctx context.Context, h *handler.Handler) error {
			return printResponse(cmd.OutOrStdout(), h.Process(ctx, handler.Event{CampaignID: args[0], Source: "cli"}))
		})
	},
}

// propertiesCmd helps map calendar property names when the database schema
// changes.
var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List the content calendar database properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		props, err := a.Calendar.DescribeProperties(ctx)
		if err != nil {
			return fmt.Errorf("describe content calendar: %w", err)
		}
		return printProperties(cmd.OutOrStdout(), props)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file (default: .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Minute, "Operation timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(propertiesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

func withHandler(fn func(context.Context, *handler.Handler) error) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a.Handler(nil))
}

// printResponse writes the response body indented and turns a non-200
// status into an error so the exit code reflects it.
func printResponse(w io.Writer, resp handler.Response) error {
	var body any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		fmt.Fprintln(w, resp.Body)
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(body); err != nil {
			return err
		}
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("processing failed with status %d", resp.StatusCode)
	}
	return nil
}

func printProperties(w io.Writer, props []notion.DatabaseProperty) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tID")
	for _, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Type, p.ID)
	}
	return tw.Flush()
}
