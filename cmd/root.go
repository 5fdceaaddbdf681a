package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sherine-k/pickups/pkg/batch"
	"github.com/sherine-k/pickups/pkg/chart"
	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/jobs"
	"github.com/sherine-k/pickups/pkg/logger"
)

var (
	configFile  string
	jobsFile    string
	targetDate  string
	poolSize    int
	cooldown    time.Duration
	strategy    string
	showTable   bool
	tableLimit  int
	showSummary bool
	csvOutput   string
)

var rootCmd = &cobra.Command{
	Use:   "pickups",
	Short: "Pickup driver assignment",
	Long: `A CLI tool that assigns drivers to the pickup jobs of a single day.

This tool reads a job table (xlsx or csv), keeps the jobs of the requested
date, assigns each one in pickup-time order to a driver who has rested for
the configured cooldown, and prints a per-driver job count chart.`,
	SilenceUsage: true,
	RunE:         runAssignments,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to configuration file")

	rootCmd.Flags().StringVarP(&jobsFile, "jobs", "j", "", "Path to the job table (.xlsx or .csv)")
	rootCmd.Flags().StringVarP(&targetDate, "date", "d", "", "Date to assign, as YYYY-MM-DD")
	rootCmd.Flags().IntVarP(&poolSize, "pool-size", "n", config.DefaultPoolSize, "Number of drivers in the pool")
	rootCmd.Flags().DurationVar(&cooldown, "cooldown", config.DefaultCooldown, "Minimum rest between two pickups of the same driver")
	rootCmd.Flags().StringVar(&strategy, "strategy", config.DefaultStrategy, "Driver selection strategy (first-fit, least-recent, least-loaded)")
	rootCmd.Flags().BoolVarP(&showTable, "table", "t", false, "Show the assignment table")
	rootCmd.Flags().IntVarP(&tableLimit, "table-limit", "l", 50, "Limit number of assignments to display")
	rootCmd.Flags().BoolVarP(&showSummary, "summary", "s", true, "Show run summary")
	rootCmd.Flags().StringVar(&csvOutput, "csv", "", "Write the assignments to this csv file")

	_ = rootCmd.MarkFlagRequired("jobs")
	_ = rootCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(serveCmd)
}

func runAssignments(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadOptional(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	log := logger.New(cfg.Logging, "cli")

	date, err := time.ParseInLocation(time.DateOnly, targetDate, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", targetDate)
	}

	parsed, err := jobs.ReadFile(jobsFile, jobs.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to read jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d jobs from %s\n", len(parsed), jobsFile)
	fmt.Fprintf(out, "  - Pool Size: %d\n", cfg.PoolSize)
	fmt.Fprintf(out, "  - Cooldown: %s\n", cfg.Cooldown)
	fmt.Fprintf(out, "  - Strategy: %s\n", cfg.Strategy)
	fmt.Fprintf(out, "  - Recurring Pickups: %d\n\n", len(cfg.Recurring))

	res, err := batch.NewRunner(cfg, log, nil).Run(batch.Request{
		Jobs:       parsed,
		TargetDate: date,
	})
	if err != nil {
		return fmt.Errorf("assignment failed: %w", err)
	}

	render(out, res, renderOptions{
		table:      showTable,
		tableLimit: tableLimit,
		summary:    showSummary,
	})

	if csvOutput != "" {
		if err := writeCSVFile(csvOutput, res); err != nil {
			return err
		}
		fmt.Fprintf(out, "Assignments written to %s\n", csvOutput)
	}

	return nil
}

// applyFlags overrides configuration values with the flags that were set
// explicitly, then re-validates.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("pool-size") {
		cfg.PoolSize = poolSize
	}
	if flags.Changed("cooldown") {
		cfg.Cooldown = cooldown
	}
	if flags.Changed("strategy") {
		cfg.Strategy = strategy
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

type renderOptions struct {
	table      bool
	tableLimit int
	summary    bool
}

func render(w io.Writer, res *batch.Result, opts renderOptions) {
	chartGen := chart.NewGenerator()

	if res.EmptyRoster {
		fmt.Fprintf(w, "Warning: the driver pool is empty, all %d jobs are unassigned\n\n", len(res.Assignments))
	}

	// Display run summary
	if opts.summary {
		fmt.Fprintln(w, chartGen.GenerateSummary(res.Assignments, res.Counts, res.PoolSize))
	}

	// Display assignment table if requested
	if opts.table {
		fmt.Fprintln(w, chartGen.GenerateAssignmentTable(res.Assignments, opts.tableLimit))
	}

	fmt.Fprintln(w, chartGen.GenerateCountChart(res.Counts))
}

func writeCSVFile(path string, res *batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv output: %w", err)
	}
	if err := chart.WriteCSV(f, res.Assignments); err != nil {
		f.Close()
		return fmt.Errorf("failed to write csv output: %w", err)
	}
	return f.Close()
}
