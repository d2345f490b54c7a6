package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ciclowiki/internal/config"
	"github.com/conneroisu/ciclowiki/internal/monitoring"
	"github.com/conneroisu/ciclowiki/internal/server"
	"github.com/conneroisu/ciclowiki/internal/version"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the wiki server",
	Long: `Start the wiki server. Pages are rendered on the server; each open tab
keeps a websocket through which navigation, sidebar and menu events are
handled.

With --content-dir the markdown articles in that directory replace the
built-in ones and are reloaded into open tabs as they are edited.

Examples:
  ciclowiki serve                          # http://localhost:8080
  ciclowiki serve -p 3000 --open           # other port, open a browser
  ciclowiki serve --content-dir ./content  # live-edit the articles
  ciclowiki serve --load-delay 0           # swap content without delay`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().String("host", config.DefaultHost, "Host to bind to")
	serveCmd.Flags().Bool("open", false, "Open the wiki in a browser")
	serveCmd.Flags().Bool("no-open", false, "Don't open a browser even if the config says so")
	serveCmd.Flags().Bool("watch", true, "Reload articles from --content-dir when they change")
	serveCmd.Flags().Duration("load-delay", config.DefaultLoadDelay, "Delay before new content replaces the loading indicator")
	serveCmd.Flags().Int("breakpoint", config.DefaultBreakpoint, "Viewport width at or below which the layout is mobile")
	serveCmd.Flags().String("default-page", config.DefaultPage, "Page shown at /")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
	viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
	viper.BindPFlag("content.watch", serveCmd.Flags().Lookup("watch"))
	viper.BindPFlag("browser.load_delay", serveCmd.Flags().Lookup("load-delay"))
	viper.BindPFlag("browser.breakpoint", serveCmd.Flags().Lookup("breakpoint"))
	viper.BindPFlag("browser.default_page", serveCmd.Flags().Lookup("default-page"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		Library: lib,
		Logger:  logger,
		Metrics: monitoring.NewMetrics(version.GetVersion(), runtime.Version()),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
