// Command receiptd runs the receipt printing service: an HTTP API that
// composes fuel receipts and drives a thermal printer.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.uber.org/zap"

	"github.com/fuelpos/receiptd/internal/api"
	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/internal/printer"
	"github.com/fuelpos/receiptd/internal/render"
)

func main() {
	fs := ff.NewFlagSet("receiptd")
	var (
		configPath = fs.StringLong("config", "config.json", "path to the configuration file")
		addr       = fs.StringLong("addr", "", "listen address (overrides the configured host:port)")
		debug      = fs.BoolLong("debug", "enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTD"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := config.NewStore(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	cfg := store.Snapshot()

	driver := printer.NewDriver(cfg.Printer, log)
	defer driver.Disconnect()

	engine := render.NewEngine(render.NewFontCache(), log)

	// The server is created after the queue, so the notify hook goes
	// through a variable the closure captures.
	var server *api.Server
	queue := printer.NewQueue(driver, func(job printer.Job) {
		server.BroadcastJob(job)
	}, log)
	defer queue.Stop()

	server = api.NewServer(store, engine, driver, queue, log)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(listenAddr)
	}()

	log.Info("receiptd started",
		zap.String("addr", listenAddr),
		zap.String("transport", cfg.Printer.Transport),
		zap.String("config", *configPath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
