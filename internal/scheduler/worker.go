package scheduler

import (
	"context"
	"fmt"

	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/platform/config"
	"cep_lookup/platform/logger"

	"github.com/hibiken/asynq"
)

// MirrorSink receives mirrored postal codes.
type MirrorSink interface {
	Append(e repository.Entry) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sink   MirrorSink
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sink MirrorSink, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sink:   sink,
		log:    log,
	}

	mux.HandleFunc(TaskPostalCodeMirror, w.handlePostalCodeMirror)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handlePostalCodeMirror(_ context.Context, task *asynq.Task) error {
	payload, err := ParsePostalCodeMirrorPayload(task)
	if err != nil {
		return fmt.Errorf("parse mirror payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.City == "" || payload.Region == "" || payload.Code == "" {
		return fmt.Errorf("incomplete mirror payload: %w", asynq.SkipRetry)
	}

	if err := w.sink.Append(repository.Entry{
		City:   payload.City,
		Region: payload.Region,
		Code:   payload.Code,
		Source: repository.SourceUser,
	}); err != nil {
		w.log.StoreError("scheduler.mirror", err)
		return err
	}

	w.log.Info("postal code mirrored", "city", payload.City, "region", payload.Region)
	return nil
}
