package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/internal/scheduler"
	"cep_lookup/platform/config"
	"cep_lookup/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UserWorkbook == "" {
		panic("USER_WORKBOOK is required for the mirror worker")
	}
	mirror := repository.NewUserWorkbook(cfg.UserWorkbook)
	log.Info("mirroring saved postal codes", "workbook", mirror.Path())

	worker, err := scheduler.NewWorker(cfg, mirror, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
