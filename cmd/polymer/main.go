package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/polymer/internal/config"
	"github.com/okian/polymer/internal/fetch"
	"github.com/okian/polymer/pkg/logger"
)

func main() {
	var (
		endpointName = flag.String("endpoint", "", "Catalog endpoint name")
		baseURL      = flag.String("base", "", "Base URL")
		path         = flag.String("path", "", "Path template")
		verb         = flag.String("verb", "GET", "HTTP verb")
		slugJSON     = flag.String("slug", "", "JSON slug source")
		paramsJSON   = flag.String("params", "", "JSON parameters")
		keyPath      = flag.String("keypath", "", "Dotted path to the payload")
		appendHeader = flag.Bool("append-header", false, "Merge response headers into the payload")
		timeout      = flag.Duration("timeout", 0, "HTTP request timeout")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fetch.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := fetch.SetupLogging(cfg.LogLevel); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	err = fetch.Run(ctx, cfg, fetch.Options{
		Endpoint:     *endpointName,
		BaseURL:      *baseURL,
		Path:         *path,
		Verb:         *verb,
		Slug:         *slugJSON,
		Params:       *paramsJSON,
		KeyPath:      *keyPath,
		AppendHeader: *appendHeader,
		Timeout:      *timeout,
		Logger:       logger.Get(),
	})
	if err != nil {
		logger.Get().Error(ctx, "fetch failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
