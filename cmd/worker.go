package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/property-management/internal/payment"
	paymentPostgres "github.com/frahmantamala/property-management/internal/payment/postgres"
	"github.com/frahmantamala/property-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background jobs such as the late payment sweep.`,
}

var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue pending payments as late",
	Long: `Run the late payment sweep. With --once it sweeps a single time and exits,
otherwise it sweeps on every interval until interrupted. Concurrent sweepers
coordinate through a Redis lock when Redis is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

var (
	sweepOnce     bool
	sweepInterval time.Duration
)

func startSweepWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	dbs, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer dbs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	locker, redisClient, err := newLocker(ctx, config.Redis, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to redis: %v\n", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sweeper := payment.NewSweeper(paymentPostgres.NewPaymentRepository(dbs.Gorm), locker, config.Sweeper.LockTTL, lg)

	if sweepOnce {
		sweeper.RunOnce(ctx)
		return
	}

	interval := getDurationFlag(sweepInterval, config.Sweeper.Interval)
	lg.Info("late payment sweeper running. Press Ctrl+C to stop.", "interval", interval)
	sweeper.Run(ctx, interval)
	lg.Info("late payment sweeper stopped")
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	sweepWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "Sweep once and exit")
	sweepWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")

	workerCmd.AddCommand(sweepWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
