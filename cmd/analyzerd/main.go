package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/config"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/logging"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/rpc"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region main
func main() {
	configPath := flag.String("config", "vigenere.yaml", "optional YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(os.Stderr, level)

	if err := serve(cfg, logger); err != nil {
		logger.Error("analyzerd stopped", "err", err)
		os.Exit(1)
	}
}

// #endregion main

// #region serve
func serve(cfg config.Config, logger *slog.Logger) error {
	var registry *profile.Registry
	var err error
	if cfg.ProfileDir != "" {
		registry, err = profile.Load(cfg.ProfileDir)
	} else {
		registry, err = profile.Builtin()
	}
	if err != nil {
		return err
	}

	acfg := analysis.DefaultConfig()
	acfg.MaxKeyLength = cfg.MaxKeyLength
	acfg.FoldDiacritics = cfg.FoldDiacritics
	analyzer := analysis.NewAnalyzer(registry, acfg, logger)

	var recorder rpc.Recorder
	if cfg.DBPath != "" {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		recorder = st
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	srv := grpc.NewServer()
	rpc.RegisterAnalyzerServer(srv, rpc.NewServer(analyzer, recorder, logger))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		srv.GracefulStop()
	}()

	logger.Info("analyzerd ready", "addr", lis.Addr().String(), "profiles", registry.Codes(), "db", cfg.DBPath)
	return srv.Serve(lis)
}

// #endregion serve
