package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uitree/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run uitree as an MCP server",
	Long:  "Expose the capture engine over the Model Context Protocol so agents can read the desktop UI as a tool.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio or streamable-http")
	serveCmd.Flags().Int("port", 8931, "Port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl-ms", 1000, "Snapshot cache TTL in milliseconds (0 = disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	ttlMs, _ := cmd.Flags().GetInt("cache-ttl-ms")

	cfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(ttlMs) * time.Millisecond,
	}
	s, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	return s.Serve(cfg)
}
