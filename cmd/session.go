package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/gateway"
	"github.com/spigell/resume-analyzer/internal/notice"
	"github.com/spigell/resume-analyzer/internal/session"
)

// consoleNotifier prints notices on the terminal. They are never stored.
type consoleNotifier struct {
	w     io.Writer
	color bool
}

func (n *consoleNotifier) Notify(msg notice.Notice) {
	icon := "x"
	if n.color {
		icon = promptui.IconBad
	}

	fmt.Fprintf(n.w, "%s %s\n", icon, msg.Message)
}

// startSession wires the gateway into a controller and starts its event loop.
// The returned stop function shuts the loop down and waits for it.
func startSession(ctx context.Context, config *Config, logger *zap.Logger, notifier notice.Notifier, onChange func(session.Snapshot)) (*session.Controller, func() error) {
	client := gateway.New(logger.Named("gateway"), config.Endpoint, config.Timeout)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	ctrl := session.New(session.Deps{
		Analyzer:     client,
		Notifier:     notifier,
		Logger:       logger.Named("session"),
		OnChange:     onChange,
		MaxLogLength: config.MaxLogLength,
	})

	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ctrl.Run(ctx)
	}()

	stop := func() error {
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	return ctrl, stop
}
