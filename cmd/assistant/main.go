package main

import (
	"context"
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"

	assistant "github.com/sakthi87/ragllmmvp-sub001"
	"github.com/sakthi87/ragllmmvp-sub001/common/logger"
	"github.com/sakthi87/ragllmmvp-sub001/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger.SetLevelByName(*logLevel)

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Errorf("load config %s: %v", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	s, err := assistant.NewServer(context.Background(), "platform-assistant", cfg)
	if err != nil {
		logger.Errorf("start server: %v", err)
		os.Exit(1)
	}

	logger.Infof("platform-assistant %s serving on stdio", assistant.Version)
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("serve: %v", err)
		os.Exit(1)
	}
}
