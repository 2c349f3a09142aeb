package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/flowstate/internal/mcp"
	"github.com/spf13/cobra"
)

var (
	addr         string
	detectorFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on the configured address (MCP_ADDR).

With --triggers the smart trigger detector runs inside the server, so
notifications appear and snoozes re-fire while clients are connected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app := cli.GetApp()
		if app == nil || app.Config == nil {
			return fmt.Errorf("the MCP server requires an initialized application")
		}

		cfg := *app.Config
		if addr != "" {
			cfg.MCPAddr = addr
		}

		if detectorFlag && app.Detector != nil {
			if err := app.Detector.Start(ctx); err != nil {
				return fmt.Errorf("failed to start triggers: %w", err)
			}
			defer app.Detector.Stop()
		}

		err := mcpinternal.Serve(ctx, &cfg, app, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to MCP_ADDR)")
	serveCmd.Flags().BoolVar(&detectorFlag, "triggers", true, "run the trigger detector while serving")
}
