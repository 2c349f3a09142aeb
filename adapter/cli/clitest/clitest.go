// Package clitest builds in-memory CLI applications for command tests.
package clitest

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	internalApp "github.com/felixgeelhaar/flowstate/internal/app"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// Now is the manual clock's starting time: Tuesday 2025-03-04 10:00 UTC.
var Now = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

// Config returns a memory-backed configuration.
func Config() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		LogLevel:              "error",
		UserID:                "tester",
		Store:                 config.StoreMemory,
		NotifyDefaultDuration: 12 * time.Second,
		NotifySnoozeDuration:  20 * time.Minute,
		StoreBreakerFailures:  5,
		StoreBreakerTimeout:   30 * time.Second,
	}
}

// Logger discards everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// NewApp builds a container on a memory store and a manual clock, installs
// it as the global CLI app and undoes both when the test ends.
func NewApp(t *testing.T) (*cli.App, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(Now)
	container, err := internalApp.NewContainer(context.Background(), Config(), Logger(), internalApp.WithClock(clk))
	require.NoError(t, err)

	a := cli.FromContainer(container)
	cli.SetApp(a)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return a, clk
}

// Run resets cmd's flags, applies flags, and invokes RunE with args. It
// returns everything the command wrote.
func Run(t *testing.T, cmd *cobra.Command, args []string, flags map[string]string) (string, error) {
	t.Helper()

	ResetFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}

	var out Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// ResetFlags restores every flag of cmd to its default.
func ResetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// Buffer is a bytes.Buffer safe for commands that write from timer callbacks.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
