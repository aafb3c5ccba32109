package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exile-bot/internal/bot"
	"exile-bot/internal/config"
	"exile-bot/internal/crash"
	"exile-bot/internal/handler"
	"exile-bot/internal/logger"
	"exile-bot/internal/moderation"
	"exile-bot/internal/service"
	"exile-bot/internal/storage"
	"exile-bot/internal/translate"

	cli "github.com/urfave/cli/v2"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")
	crash.SetupCrashHandler()

	if err := run(os.Args); err != nil {
		log.Fatalf("exiting: %v", err)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "exile-bot",
		Usage: "Discord moderation bot that sends rule breakers into exile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				Value:   "configs/config.yaml",
				EnvVars: []string{"EXILE_CONFIG"},
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect to Discord and start moderating (default)",
				Action: runBot,
			},
			dbCmd,
		},
	}
	return app.Run(args)
}

// loadConfig reads and validates the configuration and sets up logging.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Setup(cfg); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, nil
}

func runBot(cctx *cli.Context) error {
	configPath := cctx.String("config")
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer storage.Close(db)

	sanctions, err := service.InitSanctions(db)
	if err != nil {
		return err
	}

	botService, err := bot.Initialize(cfg)
	if err != nil {
		return err
	}

	config.Watch(configPath, func(c *config.Config) {
		logger.SetLevel(logger.ParseLevel(c.Logger.Level))
		logger.Debugf("%d enforcer(s), %d monitored guild(s)", len(c.Exile.Enforcers), len(c.Bot.ServerIDs))
	})

	getter := config.Getter(config.Get)
	mod := moderation.New(botService.Platform, sanctions, getter, moderation.TimerScheduler{})
	h := handler.New(botService.Platform, mod, translate.New(cfg.Translation), getter)
	h.Register(botService.Session)

	server := bot.NewStatusServer(cfg.Bot.Status, bot.StatusSource{
		BotUser:   botService.UserTag,
		Guilds:    func() []string { return config.Get().Bot.ServerIDs },
		Sanctions: sanctions.Count,
		Details:   handler.GetDetailedStatus,
	})
	if cfg.Bot.Status.Listen != "" {
		crash.SafeGoroutine("status-server", func() {
			if err := server.Start(); err != nil {
				logger.Errorf("Status server error: %v", err)
			}
		})
	}

	stopStats := make(chan struct{})
	crash.SafeGoroutine("processing-stats", func() {
		handler.LogProcessingStats(5*time.Minute, stopStats)
	})

	if err := botService.Start(); err != nil {
		return err
	}
	logger.Infof("Bot is running, monitoring %d guild(s)", len(cfg.Bot.ServerIDs))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)
	close(stopStats)

	if err := botService.Stop(); err != nil {
		logger.Warningf("Error closing gateway connection: %v", err)
	}

	logger.Info("Waiting for event handlers to complete...")
	if handler.WaitForHandlers(30 * time.Second) {
		logger.Info("All event handlers completed")
	} else {
		logger.Warning("Timeout waiting for event handlers, proceeding with shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("Status server shutdown error: %v", err)
	}

	logger.Info("Bot gracefully stopped")
	return nil
}
