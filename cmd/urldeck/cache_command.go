package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"urldeck/internal/iconcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the icon cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func withCache(ctx *commandContext, fn func(*iconcache.Cache) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return errors.New("icon cache is disabled (set cache.enabled = true)")
	}
	cache, err := iconcache.OpenFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open icon cache: %w", err)
	}
	defer cache.Close()
	return fn(cache)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show icon cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(cache *iconcache.Cache) error {
				stats, err := cache.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache: %s\n", cache.Path())
				if stats.Entries == 0 {
					fmt.Fprintln(out, "Cache is empty")
					return nil
				}

				rows := [][]string{
					{"Icons", strconv.Itoa(stats.Entries)},
					{"Size", humanize.Bytes(uint64(stats.Bytes))},
					{"Expired", strconv.Itoa(stats.Expired)},
					{"Oldest", humanize.Time(stats.Oldest)},
					{"Newest", humanize.Time(stats.Newest)},
				}
				formats := make([]string, 0, len(stats.ByFormat))
				for format := range stats.ByFormat {
					formats = append(formats, format)
				}
				sort.Strings(formats)
				for _, format := range formats {
					rows = append(rows, []string{"Format " + format, strconv.Itoa(stats.ByFormat[format])})
				}
				fmt.Fprintln(out, renderTable([]column{
					{Header: "Metric"},
					{Header: "Value", Align: alignRight},
				}, rows))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached icon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(cache *iconcache.Cache) error {
				removed, err := cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached icons\n", removed)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached icons older than cache.ttl_hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(cache *iconcache.Cache) error {
				removed, err := cache.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired icons\n", removed)
				return nil
			})
		},
	}
}
