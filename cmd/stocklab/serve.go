package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	"StockLab/internal/notifier"
	"StockLab/internal/scheduler"
)

func (s *stocklab) serve(c *cli.Context) error {
	cfg := s.cfg
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	ctx := c.Context

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, s.runner, tn, s.options)
	if err := sched.RegisterAll(cfg.Schedule.SnapshotCron, cfg.Schedule.SentimentCron, cfg.Schedule.OptimizeCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing snapshot task now")
		go sched.RunSnapshotNow()
	}

	log.Info().Msg("StockLab is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	return nil
}
