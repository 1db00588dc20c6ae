// Command cep is the interactive postal code lookup client.
//
// With no arguments it runs the terminal UI. With a city and a region code
// it performs one lookup and prints the result:
//
//	cep "Springfield" IL
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cep_lookup/internal/clipboard"
	"cep_lookup/internal/lookup"
	"cep_lookup/internal/postalcode/client"
	"cep_lookup/internal/tui"
	"cep_lookup/platform/config"
	"cep_lookup/platform/logger"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	log, closeLog := openLog(cfg)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow := lookup.NewFlow(client.New(cfg.GetAPIBaseURL(), log), clipboard.New(), lookup.Options{
		LoadingDelay:           cfg.GetLoadingDelay(),
		CopyResetDelay:         cfg.GetCopyResetDelay(),
		DiscardFormOnSaveError: cfg.GetDiscardFormOnSaveError(),
		Logger:                 log,
	})

	if args := os.Args[1:]; len(args) > 0 {
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: cep [city region]")
			return 2
		}
		return lookupOnce(ctx, flow, args[0], args[1], os.Stdout)
	}

	log.Info("starting client", "api", cfg.GetAPIBaseURL())
	program := tea.NewProgram(tui.New(ctx, flow), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		log.Error("client stopped", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// openLog writes to the configured file so log lines stay off the screen.
func openLog(cfg *config.Config) (*logger.Logger, func()) {
	path := cfg.GetClientLogFile()
	if path == "" {
		return logger.Discard(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log file unavailable:", err)
		return logger.Discard(), func() {}
	}
	return logger.NewWithWriter(cfg.Env, f), func() { _ = f.Close() }
}

// lookupOnce runs a single search through a lookup.Loop and prints the
// settled view. It returns the process exit code.
func lookupOnce(ctx context.Context, flow *lookup.Flow, city, region string, out io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settled := make(chan lookup.View, 1)
	loop := lookup.NewLoop(flow, func(v lookup.View) {
		switch v.Kind {
		case lookup.ViewValidation, lookup.ViewFound, lookup.ViewNotFound, lookup.ViewError:
			select {
			case settled <- v:
			default:
			}
		}
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	if err := loop.Submit(city, region); err != nil {
		fmt.Fprintln(out, "error:", err)
		return 1
	}

	var v lookup.View
	select {
	case v = <-settled:
	case <-ctx.Done():
		return 130
	}
	cancel()
	<-done

	switch v.Kind {
	case lookup.ViewFound:
		fmt.Fprintln(out, v.Code)
		return 0
	case lookup.ViewNotFound:
		fmt.Fprintln(out, v.Message)
		return 3
	default:
		fmt.Fprintln(out, v.Message)
		if v.Detail != "" {
			fmt.Fprintln(out, v.Detail)
		}
		return 1
	}
}
