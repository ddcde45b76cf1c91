// Command anki-mcp-http starts the MCP HTTP bridge for AnkiConnect.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"anki-mcp/internal/config"
	"anki-mcp/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anki-mcp-http",
		Short: "MCP HTTP bridge for the AnkiConnect API",
		Long: `anki-mcp-http exposes a running Anki instance (via the AnkiConnect add-on)
as schema-described MCP tools over HTTP. Anki must be running locally with
AnkiConnect installed; this bridge forwards tool calls to it and relays the
results.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				log.Println("WARN: token not set; /mcp endpoints will be open. Set ANKI_MCP_TOKEN to secure.")
			}
			srv := server.New(server.Config{
				Port:           cfg.Port,
				Token:          cfg.Token,
				AnkiConnectURL: cfg.AnkiConnectURL,
				Debug:          cfg.Debug,
			})
			log.Printf("Starting MCP HTTP bridge on :%s (anki-connect at %s)\n", cfg.Port, cfg.AnkiConnectURL)
			return http.ListenAndServe(":"+cfg.Port, srv.Router())
		},
	}
	flags := cmd.Flags()
	flags.String("port", "3000", "port to listen on")
	flags.String("token", "", "bearer token required on /mcp endpoints")
	flags.String("anki-connect-url", "http://127.0.0.1:8765", "AnkiConnect endpoint URL")
	flags.Bool("debug", false, "log outbound AnkiConnect traffic")
	return cmd
}
