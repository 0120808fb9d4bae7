package main

import (
	"chat-hub/client"
	"chat-hub/ui"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	err = newRootCommand(config).Execute()
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code, exit.err
	}
	if err != nil {
		return exitConfig, err
	}
	return exitOK, nil
}

func newRootCommand(config Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chat-client",
		Short:         "Terminal client of the chat hub",
		Example:       "chat-client --name alice --addr localhost:8080",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if config.Name == "" {
				return exitError{code: exitConfig, err: fmt.Errorf("a name is required (--name or CHAT_NAME)")}
			}
			if err := chat(cmd.Context(), config); err != nil {
				return exitError{code: exitRuntime, err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddress, "addr", "a", config.ServerAddress, "chat hub gRPC address")
	cmd.Flags().StringVarP(&config.Name, "name", "n", config.Name, "name to register under")
	cmd.Flags().BoolVar(&config.Colours, "colours", config.Colours, "colorized output")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "client log level")
	return cmd
}

func chat(parent context.Context, config Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logs.GetLoggerFromString(config.LogLevel)

	c, err := client.Dial(ctx, log, config.ServerAddress)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()

	registerCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = c.Register(registerCtx, config.Name)
	cancel()
	if err != nil {
		return fmt.Errorf("registration as %s failed: %w", config.Name, err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".chat_hub_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return fmt.Errorf("error initializing readline: %w", err)
	}
	defer rl.Close()

	renderer := ui.NewRenderer(rl.Stdout(), config.Colours)
	renderer.SetSelf(config.Name)
	sh := newShell(c, renderer)
	renderer.Info(fmt.Sprintf("Connected to %s as %s, type /help", config.ServerAddress, config.Name))

	go func() {
		for n := range c.Notifications() {
			sh.Notify(n)
			rl.Refresh()
		}
		// The hub went away: unblock Readline.
		_ = rl.Close()
	}()

	for {
		rl.SetPrompt(sh.Prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			if sessionErr := c.Err(); sessionErr != nil && !errors.Is(sessionErr, client.ErrClosed) {
				return fmt.Errorf("connection lost: %w", sessionErr)
			}
			return nil
		}
		if sh.Handle(ctx, line) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
