package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"urldeck/internal/config"
	"urldeck/internal/entry"
	"urldeck/internal/iconcache"
	"urldeck/internal/listfile"
	"urldeck/internal/logging"
)

type commandContext struct {
	configFlag *string
	fileFlag   *string
	formatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, fileFlag, formatFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		fileFlag:   fileFlag,
		formatFlag: formatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// listPath returns the list file location from --file or the config.
func (c *commandContext) listPath() (string, error) {
	if c.fileFlag != nil {
		if flag := strings.TrimSpace(*c.fileFlag); flag != "" {
			if strings.HasPrefix(flag, "file://") {
				return listfile.ResolvePath(flag), nil
			}
			return config.ExpandPath(flag)
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return listfile.ResolvePath(cfg.Paths.ListFile), nil
}

func (c *commandContext) listFormat() (string, error) {
	format := ""
	if c.formatFlag != nil {
		format = strings.ToLower(strings.TrimSpace(*c.formatFlag))
	}
	if format == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return "", err
		}
		format = cfg.List.Format
	}
	switch format {
	case config.ListFormatPairs, config.ListFormatLines:
		return format, nil
	default:
		return "", fmt.Errorf("invalid list format %q (want %s or %s)", format, config.ListFormatPairs, config.ListFormatLines)
	}
}

// loadStore reads the list file into a new store. A missing file yields an
// empty store so the first add can create it.
func (c *commandContext) loadStore() (*entry.Store, string, error) {
	path, err := c.listPath()
	if err != nil {
		return nil, "", err
	}
	format, err := c.listFormat()
	if err != nil {
		return nil, "", err
	}
	store := entry.NewStore()
	pairs, err := listfile.Load(path, format)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, path, nil
		}
		return nil, "", err
	}
	store.Replace(pairs)
	return store, path, nil
}

// updateStore loads the list into a store, applies fn and saves the result
// while holding the list file's exclusive lock. The returned store reflects
// the saved state.
func (c *commandContext) updateStore(fn func(*entry.Store) error) (*entry.Store, error) {
	path, err := c.listPath()
	if err != nil {
		return nil, err
	}
	format, err := c.listFormat()
	if err != nil {
		return nil, err
	}
	store := entry.NewStore()
	err = listfile.Update(path, format, func(pairs []entry.Pair) ([]entry.Pair, error) {
		store.Replace(pairs)
		if err := fn(store); err != nil {
			return nil, err
		}
		return store.Pairs(), nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newLogger builds the command logger. The closer releases the log file.
func (c *commandContext) newLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	return logging.NewFromConfig(c.configValue(), cmd.ErrOrStderr())
}

// openCache opens the icon cache when enabled. Open failures are logged and
// yield a nil cache so commands keep working without one.
func (c *commandContext) openCache(logger *slog.Logger) *iconcache.Cache {
	cfg := c.configValue()
	if cfg == nil || !cfg.Cache.Enabled {
		return nil
	}
	cache, err := iconcache.OpenFromConfig(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "icon cache unavailable", "cache_open_failed",
			logging.Error(err),
			logging.String("path", cfg.CacheDBPath()),
			logging.String(logging.FieldErrorHint, "run 'urldeck cache clear' or delete the database file"),
			logging.String(logging.FieldImpact, "icons are fetched from the network"),
		)
		return nil
	}
	return cache
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// parsePosition reads a 1-based position argument.
func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: expected a number", arg)
	}
	return pos, nil
}

func entryLabel(e entry.Entry) string {
	return fmt.Sprintf("#%d %s", e.Position, e.Title)
}
