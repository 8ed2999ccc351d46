package daemon

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/logfields"
	"git.home.luguber.info/inful/formtrack/internal/server"
)

// replayInterval is how often dead-lettered events are retried.
const replayInterval = time.Minute

// Daemon runs the API server, the page watcher and the scheduled jobs.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	runtime   *Runtime
	server    *server.Server
	watcher   *PageWatcher
	scheduler *Scheduler
}

// New wires a daemon from cfg. Nothing runs until Run is called.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt, err := OpenRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	d := &Daemon{cfg: cfg, logger: logger, runtime: rt}

	d.server = server.NewServer(cfg.Server, server.Deps{
		Tracker:    rt.Tracker,
		Projection: rt.Projection,
		Registry:   rt.Registry,
		Logger:     logger,
	})

	s, err := NewScheduler()
	if err != nil {
		_ = rt.Close()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	d.scheduler = s

	if cfg.Watch.Enabled {
		w, err := NewPageWatcher(cfg.Watch.Dir, cfg.Watch.DebounceDuration(), rt.Tracker)
		if err != nil {
			d.close()
			return nil, err
		}
		d.watcher = w
	}
	return d, nil
}

// Runtime returns the shared components.
func (d *Daemon) Runtime() *Runtime { return d.runtime }

// Server returns the API server.
func (d *Daemon) Server() *server.Server { return d.server }

// Run starts every component and blocks until ctx is done or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.scheduleJobs(ctx); err != nil {
		d.close()
		return err
	}
	d.scheduler.Start()

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			d.close()
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		d.logger.Info("Starting HTTP server", slog.String("addr", d.server.Addr))
		if err := d.server.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = errors.WrapError(err, errors.CategoryNetwork, "HTTP server failed").
				WithContext("addr", d.server.Addr).
				Build()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("HTTP server shutdown failed", logfields.Error(err))
	}
	d.close()
	return runErr
}

func (d *Daemon) scheduleJobs(ctx context.Context) error {
	if _, err := d.scheduler.ScheduleEvery(replayJobName, replayInterval, ReplayJob(ctx, d.runtime.Tracker)); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to schedule replay").Build()
	}

	rc := d.cfg.Report
	if !rc.Enabled {
		return nil
	}
	if d.runtime.Projection == nil {
		d.logger.Warn("Failure report needs the event store; report disabled", logfields.Job(reportJobName))
		return nil
	}
	task := ReportJob(ctx, d.runtime.Projection, rc.Top)
	var err error
	if rc.Cron != "" {
		_, err = d.scheduler.ScheduleCron(reportJobName, rc.Cron, task)
	} else {
		_, err = d.scheduler.ScheduleEvery(reportJobName, rc.IntervalDuration(), task)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to schedule failure report").Build()
	}
	return nil
}

func (d *Daemon) close() {
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("Page watcher stop failed", logfields.Error(err))
		}
	}
	if err := d.scheduler.Stop(); err != nil {
		d.logger.Warn("Scheduler stop failed", logfields.Error(err))
	}
	if err := d.runtime.Close(); err != nil {
		d.logger.Warn("Closing sinks failed", logfields.Error(err))
	}
}
