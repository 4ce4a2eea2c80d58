package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpserver "github.com/0xcro3dile/intentbot-go/internal/infrastructure/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API and web page",
	Long: `Trains the bot and serves it over HTTP:
  POST /api/chat       {session_id?, message} -> {session_id, reply}
  GET  /api/history    ?session_id=&order=chronological|reverse
  GET  /api/sessions
  POST /api/classify   {message} -> {tag, probability}
  GET  /api/health

With corpus.watch enabled the model is retrained when the corpus file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	sys, err := loadSystem(ctx)
	if err != nil {
		return err
	}
	defer sys.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	server := httpserver.NewServer(sys.Conversation, httpserver.Options{
		Addr:            addr,
		ReadTimeout:     cfg.ReadTimeoutDuration(),
		WriteTimeout:    cfg.WriteTimeoutDuration(),
		ShutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gCtx) })
	g.Go(func() error { return sys.WatchCorpus(gCtx) })

	err = g.Wait()
	logger.Info("intentbot stopped", zap.Error(err))
	return err
}
