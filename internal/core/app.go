package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"fcdn/internal/config"
	"fcdn/internal/discord"
	"fcdn/internal/edsm"
	"fcdn/internal/journal"
	"fcdn/internal/settings"
	"fcdn/internal/update"
	logx "fcdn/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *Supervisor

	log  logx.Logger
	logs *logx.Service

	store    settings.Store
	resolver *edsm.Client
	webhook  *discord.Client
	checker  *update.Checker
	watcher  *journal.Watcher

	pm *PluginManager
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	busyTimeout, err := config.ParseDurationField("settings.busy_timeout", cfg.Settings.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(settings.Config{
		Driver:      cfg.Settings.Driver,
		Path:        cfg.Settings.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "settings")))
	if err != nil {
		return nil, err
	}

	resolver := edsm.New(edsm.Config{
		BaseURL:    cfg.EDSM.BaseURL,
		RatePerSec: cfg.EDSM.RatePerSec,
	}, log.With(logx.String("comp", "edsm")))

	webhook := discord.NewClient(log.With(logx.String("comp", "discord")))
	checker := update.New(cfg.Update.URL, Version, log.With(logx.String("comp", "update")))

	pm := NewPluginManager(log.With(logx.String("comp", "plugins")), cfgm, PluginDeps{
		Logger:   log,
		Settings: store,
		Resolver: resolver,
		Webhook:  webhook,
		Version:  Version,
	})

	pollInterval, err := config.ParseDurationOrDefault("journal.poll_interval", cfg.Journal.PollInterval, 2*time.Second)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfgPath:  cfgPath,
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		store:    store,
		resolver: resolver,
		webhook:  webhook,
		checker:  checker,
		pm:       pm,
	}
	a.watcher = journal.NewWatcher(journal.WatcherConfig{
		Dir:          cfg.Journal.Dir,
		PollInterval: pollInterval,
		FromStart:    cfg.Journal.FromStart,
	}, log.With(logx.String("comp", "journal")), pm.DispatchJournal)

	return a, nil
}

func (a *App) Plugins() *PluginManager { return a.pm }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, WithLogger(a.log), WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(c context.Context, cfg *config.Config) error {
		return validateConfig(cfg)
	})

	if err := a.pm.StartAll(a.sup.Context()); err != nil {
		return err
	}

	a.sup.Go("journal.watch", func(c context.Context) error {
		return a.watcher.Run(c)
	})

	if cfg := a.cfgm.Get(); cfg != nil && cfg.Update.Enabled {
		schedule := cfg.Update.Schedule
		a.sup.Go("update.check", func(c context.Context) error {
			return a.checker.Run(c, schedule)
		})
	}

	// hot reload config fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				// apply logging updates
				a.logs.Apply(logx.Config{
					Level:   newCfg.Logging.Level,
					Console: newCfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: newCfg.Logging.File.Enabled,
						Path:    newCfg.Logging.File.Path,
					},
				})

				// apply plugin enable/disable + per-plugin config
				a.pm.OnConfigUpdate(c, newCfg)

				// journal/settings/edsm endpoints are bound at startup
				a.log.Info("config reloaded (journal/settings/edsm changes require restart)")
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started", logx.String("version", Version))
	return nil
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// First, cancel the app run context so background loops start unwinding immediately.
	a.sup.Cancel()

	// Helper: run a shutdown step with an upper bound so one component can't stall the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()

		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			// respect the caller's deadline; never extend it
			if dl, ok := ctx.Deadline(); ok {
				rem := time.Until(dl)
				if rem <= 0 {
					max = 0
				} else if rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Err(stepCtx.Err()),
				logx.Duration("elapsed", time.Since(start)),
			)
		}
	}

	step("plugins", 4*time.Second, func(c context.Context) error { a.pm.StopAll(c, reason); return nil })
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	if a.store != nil {
		step("settings", 1*time.Second, func(context.Context) error { return a.store.Close() })
	}

	a.log.Info("stopped")
	_ = a.logs.Close()
	return nil
}

func validateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := config.ParseDurationField("journal.poll_interval", cfg.Journal.PollInterval); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("settings.busy_timeout", cfg.Settings.BusyTimeout); err != nil {
		return err
	}
	switch d := strings.ToLower(strings.TrimSpace(cfg.Settings.Driver)); d {
	case "", "none", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("settings.driver: unknown driver %q", d)
	}
	if cfg.EDSM.RatePerSec < 0 {
		return fmt.Errorf("edsm.rate_per_sec must be >= 0")
	}
	if s := strings.TrimSpace(cfg.Update.Schedule); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			return fmt.Errorf("update.schedule: %w", err)
		}
	}
	return nil
}
