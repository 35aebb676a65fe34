package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-telegram/bot/models"

	"telegraphbot/internal/adapter/telegram/state"
	"telegraphbot/internal/platform/logger"
	"telegraphbot/internal/shared"
)

// CommandRouter is where command handlers get registered.
type CommandRouter interface {
	OnCommand(name string, states state.Filter, h CommandHandler)
}

// StateReader returns the current conversation state of a chat.
type StateReader interface {
	Get(chatID int64) state.State
}

// ErrorHandler receives errors returned by command handlers.
type ErrorHandler func(ctx context.Context, upd *models.Update, cmd Command, err error)

type route struct {
	name    string
	states  state.Filter
	handler CommandHandler
}

// Router matches command messages against registered routes.
type Router struct {
	mu       sync.RWMutex
	routes   []route
	username string
	states   StateReader
	onError  ErrorHandler
}

// RouterOption configures Router.
type RouterOption func(*Router)

// WithStates sets where chat states are read from. Without it every chat
// is Idle.
func WithStates(s StateReader) RouterOption {
	return func(r *Router) { r.states = s }
}

// WithErrorHandler replaces the default error handler, which logs.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		if h != nil {
			r.onError = h
		}
	}
}

// NewRouter creates an empty router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{onError: logError}
	for _, o := range opts {
		o(r)
	}
	return r
}

var _ CommandRouter = (*Router)(nil)

// OnCommand routes command name (without the slash) to h while the chat is
// in a state selected by states. Routes are tried in registration order.
func (r *Router) OnCommand(name string, states state.Filter, h CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{name: name, states: states, handler: h})
}

// SetUsername sets the bot username used to ignore commands addressed to
// other bots ("/start@other_bot").
func (r *Router) SetUsername(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.username = username
}

// Resolve returns the handler for command in state st. Command names are
// compared case-insensitively.
func (r *Router) Resolve(command string, st state.State) (CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.routes {
		if strings.EqualFold(rt.name, command) && rt.states.Match(st) {
			return rt.handler, true
		}
	}
	return nil, false
}

// Commands returns the distinct registered command names in registration
// order.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.routes))
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		if _, ok := seen[rt.name]; ok {
			continue
		}
		seen[rt.name] = struct{}{}
		out = append(out, rt.name)
	}
	return out
}

// Handle routes a command message to its handler. Other updates are ignored.
func (r *Router) Handle(ctx context.Context, s Sender, upd *models.Update) {
	m, ok := r.match(upd)
	if !ok {
		logger.FromContext(ctx).Debug("update ignored", slog.String("reason", m.reason))
		return
	}
	if err := m.handler(ctx, s, upd.Message); err != nil {
		r.onError(ctx, upd, m.cmd, err)
	}
}

// Routed reports whether Handle would call a handler for upd.
func (r *Router) Routed(upd *models.Update) bool {
	_, ok := r.match(upd)
	return ok
}

type routeMatch struct {
	cmd     Command
	handler CommandHandler
	reason  string
}

func (r *Router) match(upd *models.Update) (routeMatch, bool) {
	if upd == nil || upd.Message == nil {
		return routeMatch{reason: "no message"}, false
	}
	msg := upd.Message
	cmd, ok := ParseCommand(msg.Text)
	if !ok {
		return routeMatch{reason: "not a command"}, false
	}

	r.mu.RLock()
	username := r.username
	r.mu.RUnlock()
	if !cmd.For(username) {
		return routeMatch{cmd: cmd, reason: "command for another bot"}, false
	}

	st := state.Idle
	if r.states != nil {
		st = r.states.Get(msg.Chat.ID)
	}
	h, ok := r.Resolve(cmd.Name, st)
	if !ok {
		return routeMatch{cmd: cmd, reason: "no route in state " + st.String()}, false
	}
	return routeMatch{cmd: cmd, handler: h}, true
}

func logError(ctx context.Context, _ *models.Update, cmd Command, err error) {
	logger.FromContext(ctx).Error("command failed",
		slog.String("command", cmd.Name),
		slog.String("kind", shared.KindOf(err).String()),
		slog.Any("err", err))
}
