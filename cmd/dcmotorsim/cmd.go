package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/erh/dcmotorsim"
	"github.com/erh/dcmotorsim/status"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	configPath := flag.String("config", "", "yaml config file, DCMOTORSIM_* env vars override it")
	flag.Parse()

	cfg, err := dcmotorsim.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := dcmotorsim.NewLogger("dcmotorsim", cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := dcmotorsim.NewSimulator(cfg, nil, logger)
	sim.Start()

	statusErr := make(chan error, 1)
	if cfg.StatusAddr != "" {
		go func() {
			err := status.NewServer(sim, logger).ListenAndServe(ctx, cfg.StatusAddr)
			if err != nil {
				logger.Errorw("status api failed", "error", err)
				stop()
			}
			statusErr <- err
		}()
	} else {
		statusErr <- nil
	}

	err = dcmotorsim.Serve(ctx, sim, cfg)
	stop()
	return multierr.Combine(err, <-statusErr, sim.Close())
}
