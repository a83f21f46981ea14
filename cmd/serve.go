package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clubsmell/fragdash/internal/daemon"
	"github.com/clubsmell/fragdash/internal/logger"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/web"
)

var (
	flagServeAddr         string
	flagServeInterval     time.Duration
	flagServeEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard and JSON API, reloading the workbook when it changes",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 0, "Workbook polling interval (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	path, err := workbookPath(cfg)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	interval := flagServeInterval
	if interval <= 0 {
		interval = cfg.PollInterval()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := daemon.New(daemon.Config{
		Workbook:     path,
		Options:      pipeline.OptionsFromConfig(cfg),
		UseCache:     !flagNoCache,
		CachePath:    pipeline.CachePath(),
		Interval:     interval,
		EventsBuffer: flagServeEventsBuffer,
		Logger:       log,
	})

	minVol, maxVol := cfg.BottleRange()
	srv := web.NewServer(svc, web.Options{
		Consumption: cfg.ConsumptionModel(),
		MinVolume:   minVol,
		MaxVolume:   maxVol,
	}, log)

	runErr := make(chan error, 1)
	go func() { runErr <- svc.Run(ctx) }()

	log.Info("fragdash dashboard",
		zap.String("url", "http://"+addr+"/"),
		zap.String("workbook", path),
		zap.Duration("poll_interval", interval),
	)
	if !flagQuiet {
		fmt.Printf("  Dashboard: http://%s/\n", addr)
	}

	err = web.ListenAndServe(ctx, addr, srv.Handler(), log)
	stop()
	if werr := <-runErr; werr != nil {
		log.Warn("workbook watcher stopped", zap.Error(werr))
	}
	return err
}
