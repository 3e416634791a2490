package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"urldeck/internal/config"
	"urldeck/internal/iconcache"
	"urldeck/internal/listfile"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit paths.list_file (or export URLDECK_LIST_FILE) to point at your URL list.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration and report on configured paths",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			if exists {
				fmt.Fprintln(out, renderStatusLine("Config file", statusOK, resolved, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, "not found; defaults used", colorize))
			}
			writeListStatus(out, ctx, colorize)
			writeDirStatus(out, "Icon directory", cfg.Paths.IconDir, colorize)
			writeDirStatus(out, "Log directory", cfg.Paths.LogDir, colorize)
			writeCacheStatus(out, cfg, colorize)
			if cfg.Resolver.DisableLookupService {
				fmt.Fprintln(out, renderStatusLine("Lookup service", statusInfo, "disabled", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Lookup service", statusOK, cfg.Resolver.LookupServiceURL, colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func writeListStatus(out io.Writer, ctx *commandContext, colorize bool) {
	path, err := ctx.listPath()
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("List file", statusError, err.Error(), colorize))
		return
	}
	format, err := ctx.listFormat()
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("List file", statusError, err.Error(), colorize))
		return
	}
	pairs, err := listfile.Load(path, format)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintln(out, renderStatusLine("List file", statusWarn, path+" (missing; created on first add)", colorize))
	case err != nil:
		fmt.Fprintln(out, renderStatusLine("List file", statusError, err.Error(), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("List file", statusOK, fmt.Sprintf("%s (%d entries, %s format)", path, len(pairs), format), colorize))
	}
}

func writeDirStatus(out io.Writer, label, dir string, colorize bool) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintln(out, renderStatusLine(label, statusInfo, dir+" (created when needed)", colorize))
	case err != nil:
		fmt.Fprintln(out, renderStatusLine(label, statusError, err.Error(), colorize))
	case !info.IsDir():
		fmt.Fprintln(out, renderStatusLine(label, statusError, dir+" is not a directory", colorize))
	case unix.Access(dir, unix.W_OK) != nil:
		fmt.Fprintln(out, renderStatusLine(label, statusWarn, dir+" is not writable", colorize))
	default:
		fmt.Fprintln(out, renderStatusLine(label, statusOK, dir, colorize))
	}
}

func writeCacheStatus(out io.Writer, cfg *config.Config, colorize bool) {
	if !cfg.Cache.Enabled {
		fmt.Fprintln(out, renderStatusLine("Icon cache", statusInfo, "disabled", colorize))
		return
	}
	cache, err := iconcache.OpenFromConfig(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Icon cache", statusError, err.Error(), colorize))
		return
	}
	defer cache.Close()
	fmt.Fprintln(out, renderStatusLine("Icon cache", statusOK, cache.Path(), colorize))
}
