package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"telegraphbot/internal/adapter/scheduler"
	"telegraphbot/internal/adapter/telegram"
	"telegraphbot/internal/adapter/telegram/handlers"
	"telegraphbot/internal/adapter/telegram/middleware"
	"telegraphbot/internal/adapter/telegram/state"
	"telegraphbot/internal/config"
	"telegraphbot/internal/platform/httpclient"
	"telegraphbot/internal/platform/logger"
	"telegraphbot/internal/shared"
)

const (
	webhookPath     = "/telegram/webhook"
	shutdownTimeout = 5 * time.Second
	pruneAfter      = 10 * time.Minute
)

// App wires application components.
type App struct {
	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, closeLog := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "telegraphbot",
	})
	return &App{cfg: cfg, log: log, closeLog: closeLog}, nil
}

// Run starts the bot and blocks until SIGINT/SIGTERM or a fatal error.
func (a *App) Run() (err error) {
	defer func() {
		if cerr := a.closeLog(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := telegram.NewRouter(telegram.WithStates(state.NewStore()))
	handlers.RegisterUser(router)

	rate := middleware.NewRateLimiter(a.cfg.RateLimit)
	acl := middleware.NewACL(a.cfg.AllowedIDs)
	handler := middleware.Chain(router.Handle,
		middleware.RequestLogger(a.log),
		middleware.Only(router.Routed, acl.Middleware),
		middleware.Only(router.Routed, rate.Middleware),
	)

	b, disp, err := a.newBot(handler)
	if err != nil {
		return err
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return shared.Wrap(err, "getMe")
	}
	router.SetUsername(me.Username)
	a.log.Info("starting", slog.String("username", me.Username), slog.Bool("webhook", a.cfg.Webhook()))

	a.publishCommands(ctx, b, router)

	sched := scheduler.New(a.log)
	if _, err := sched.Add("@every 1m", func(context.Context) error {
		if n := rate.Prune(pruneAfter); n > 0 {
			a.log.Debug("rate limiter pruned", slog.Int("users", n))
		}
		return nil
	}, scheduler.JobOptions{Name: "ratelimit-prune", Timeout: 10 * time.Second}); err != nil {
		return err
	}
	sched.Start()

	if a.cfg.Webhook() {
		err = a.serveWebhook(ctx, b)
	} else {
		err = a.poll(ctx, b)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var result *multierror.Error
	if err != nil {
		result = multierror.Append(result, err)
	}
	if serr := sched.Stop(stopCtx); serr != nil {
		result = multierror.Append(result, serr)
	}
	disp.Close()
	a.log.Info("stopped")
	return result.ErrorOrNil()
}

func (a *App) newBot(h telegram.HandlerFunc) (*bot.Bot, *telegram.Dispatcher, error) {
	client := httpclient.New(
		httpclient.WithLogger(a.log),
		httpclient.WithTimeout(a.cfg.Telegram.PollTimeout+15*time.Second),
	)

	var disp *telegram.Dispatcher
	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, _ *bot.Bot, upd *models.Update) {
			if !disp.Dispatch(ctx, upd) {
				a.log.Warn("update dropped", slog.Int64("update_id", upd.ID))
			}
		}),
		bot.WithAllowedUpdates([]string{"message"}),
		bot.WithHTTPClient(a.cfg.Telegram.PollTimeout, client),
		bot.WithErrorsHandler(func(err error) {
			if shared.IsCanceled(err) {
				return
			}
			a.log.Error("bot", slog.String("kind", shared.KindOf(err).String()), slog.Any("err", err))
		}),
	}
	if a.cfg.Telegram.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(a.cfg.Telegram.WebhookSecret))
	}

	b, err := bot.New(a.cfg.Telegram.Token, opts...)
	if err != nil {
		return nil, nil, shared.Wrap(err, "create bot")
	}
	disp = telegram.NewDispatcher(b, a.cfg.Telegram.Workers, h)
	return b, disp, nil
}

// publishCommands fills the client's command menu. Failure only degrades
// the menu, so it is logged and ignored.
func (a *App) publishCommands(ctx context.Context, b *bot.Bot, r *telegram.Router) {
	names := r.Commands()
	cmds := make([]models.BotCommand, 0, len(names))
	for _, n := range names {
		cmds = append(cmds, models.BotCommand{Command: n, Description: handlers.Description(n)})
	}
	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: cmds}); err != nil {
		a.log.Warn("setMyCommands", slog.Any("err", err))
	}
}

func (a *App) poll(ctx context.Context, b *bot.Bot) error {
	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		return shared.Wrap(err, "deleteWebhook")
	}
	b.Start(ctx)
	return nil
}

func (a *App) serveWebhook(ctx context.Context, b *bot.Bot) error {
	if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            a.cfg.Telegram.WebhookURL,
		SecretToken:    a.cfg.Telegram.WebhookSecret,
		AllowedUpdates: []string{"message"},
	}); err != nil {
		return shared.Wrap(err, "setWebhook")
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           NewHTTPHandler(b.WebhookHandler(), a.cfg.Env),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("http listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return shared.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		b.StartWebhook(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
