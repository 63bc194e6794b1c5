package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bookdetector/internal/config"
	"bookdetector/internal/detector"
	"bookdetector/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	service *detector.Service
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// log returns the command logger. Records go to today's log file; --verbose
// mirrors them to stderr. Old log files are pruned on first use.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil || cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		var logger *slog.Logger
		if c.verboseFlag != nil && *c.verboseFlag {
			logger, err = logging.NewFromConfig(cfg)
		} else {
			logger, err = logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{cfg.LogFilePath()},
			})
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
			logger = logging.NewNop()
		}
		logging.PruneDailyLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now())
		c.logger = logger
	})
	return c.logger
}

// detector builds the service once per invocation. The catalog is not loaded.
func (c *commandContext) detector(opts ...detector.Option) (*detector.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	svc, err := detector.New(cfg, c.log(), opts...)
	if err != nil {
		return nil, err
	}
	c.service = svc
	return svc, nil
}

// loadedDetector returns the service with the cached (or freshly scanned)
// catalog installed.
func (c *commandContext) loadedDetector(ctx context.Context) (*detector.Service, error) {
	svc, err := c.detector()
	if err != nil {
		return nil, err
	}
	if svc.Catalog().Len() == 0 {
		if _, err := svc.Load(ctx); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (c *commandContext) close() {
	if c.service != nil {
		_ = c.service.Close()
		c.service = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
