package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve GitHub webhooks and the workflow API",
	Long: `Start the HTTP server.

Routes:
  POST /webhook              GitHub webhook (issues, issue_comment, pull_request)
  GET  /health               liveness
  GET  /api/workflows        tracked workflows
  GET  /api/workflows/{id}   one workflow
  GET  /openapi.json         OpenAPI document

Set github.webhook_secret (or GITHUB_WEBHOOK_SECRET) to verify signatures.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "listen port (default: server.port)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	port := cfg.Server.Port
	if serverPort != 0 {
		port = serverPort
	}

	srv, err := server.New(server.Config{
		Handler:       a.orch,
		Workflows:     a.orch.Registry(),
		WebhookSecret: cfg.GitHub.WebhookSecret,
		Events:        a.orch.Events(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("🚀 AI Dev Team server on :%d\n", port)
	err = srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
	srv.Shutdown()
	return err
}
