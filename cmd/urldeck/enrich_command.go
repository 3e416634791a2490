package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"urldeck/internal/config"
	"urldeck/internal/enrich"
	"urldeck/internal/entry"
	"urldeck/internal/fetch"
	"urldeck/internal/fileutil"
	"urldeck/internal/iconcache"
	"urldeck/internal/resolver"
	"urldeck/internal/textutil"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var iconsDir string
	var jobs int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch a site icon for every entry",
		Long: `Fetch a site icon for every entry of the list.

Each entry tries /favicon.ico, /favicon.png and the lookup service in that
order. Entries whose sources all fail get a gray placeholder. Icons are
written to the icon directory as <position>-<title>.<ext>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, path, err := ctx.loadStore()
			if err != nil {
				return err
			}
			logger, logCloser, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			target := strings.TrimSpace(iconsDir)
			if target == "" {
				target = cfg.Paths.IconDir
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve icons dir: %w", err)
			}

			var fetcher enrich.Fetcher = fetch.New(fetch.ConfigFrom(cfg))
			if !noCache {
				if cache := ctx.openCache(logger); cache != nil {
					defer cache.Close()
					fetcher = iconcache.NewCachingFetcher(fetcher, cache, logger)
				}
			}

			opts := enrich.OptionsFrom(cfg, logger)
			if cmd.Flags().Changed("jobs") {
				opts.MaxInFlight = jobs
			}

			baseCtx := cmd.Context()
			if baseCtx == nil {
				baseCtx = context.Background()
			}
			runCtx, stop := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := enrich.NewScheduler(store, fetcher, opts)
			run := sched.Start(runCtx)
			progress := newProgressRenderer(cmd.ErrOrStderr(), run.Total(), logger)
			for ev := range run.Events() {
				if ev.Epoch != sched.Epoch() {
					continue
				}
				progress.Update(ev)
			}
			progress.Finish()
			summary := run.Wait()

			interrupted := runCtx.Err() != nil
			files, err := writeIcons(store, target, interrupted)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enriched %d entries from %s in %s\n", summary.Total, path, summary.Duration.Round(time.Millisecond))
			if summary.Total > 0 {
				fmt.Fprintln(out, renderTable([]column{
					{Header: "Source"},
					{Header: "Entries", Align: alignRight},
				}, summaryRows(summary)))
			}
			fmt.Fprintf(out, "Wrote %d icon files (%s) to %s\n", files.written, humanize.Bytes(uint64(files.bytes)), target)
			if files.pruned > 0 {
				fmt.Fprintf(out, "Removed %d stale icon files\n", files.pruned)
			}
			if interrupted {
				fmt.Fprintf(out, "Interrupted: kept %d existing icon files instead of placeholders\n", files.kept)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&iconsDir, "icons-dir", "", "Directory for icon files (overrides paths.icon_dir)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Maximum concurrent entries (0 = all at once)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the icon cache")
	return cmd
}

func summaryRows(summary enrich.Summary) [][]string {
	kinds := make([]string, 0, len(summary.ByKind))
	for kind := range summary.ByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Slice(kinds, func(i, j int) bool { return kindRank(kinds[i]) < kindRank(kinds[j]) })

	rows := make([][]string, 0, len(kinds)+1)
	for _, kind := range kinds {
		rows = append(rows, []string{kind, strconv.Itoa(summary.ByKind[resolver.Kind(kind)])})
	}
	rows = append(rows, []string{"placeholder", strconv.Itoa(summary.Placeholders)})
	return rows
}

func kindRank(kind string) int {
	switch resolver.Kind(kind) {
	case resolver.KindFaviconICO:
		return 0
	case resolver.KindFaviconPNG:
		return 1
	case resolver.KindLookupService:
		return 2
	default:
		return 3
	}
}

// iconFilePattern matches names produced by textutil.IconFileName.
var iconFilePattern = regexp.MustCompile(`^[0-9]{3,}-.+\.[a-z]+$`)

type iconWriteStats struct {
	written int
	bytes   int64
	kept    int
	pruned  int
}

// writeIcons saves every entry icon into dir, skipping files whose content
// is unchanged. An interrupted run leaves existing files in place of its
// placeholders. Icon files left over from earlier positions or titles are
// removed.
func writeIcons(store *entry.Store, dir string, interrupted bool) (iconWriteStats, error) {
	var stats iconWriteStats
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("create icons dir: %w", err)
	}

	existing, err := iconFiles(dir)
	if err != nil {
		return stats, err
	}

	current := make(map[string]bool)
	for _, e := range store.Entries() {
		if !e.HasIcon() {
			continue
		}
		ext := e.Icon.Extension()
		base := textutil.IconFileName(e.Position, e.Title, ext)
		if interrupted && e.Icon.Placeholder {
			if previous := matchingStem(existing, strings.TrimSuffix(base, ext)); len(previous) > 0 {
				for _, name := range previous {
					current[name] = true
				}
				stats.kept++
				continue
			}
		}
		current[base] = true
		name := filepath.Join(dir, base)
		if fileutil.SameContent(name, e.Icon.Data) {
			continue
		}
		if err := fileutil.WriteFileAtomic(name, e.Icon.Data, 0o644); err != nil {
			return stats, fmt.Errorf("write icon for %s: %w", entryLabel(e), err)
		}
		stats.written++
		stats.bytes += int64(len(e.Icon.Data))
	}

	for _, name := range existing {
		if current[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return stats, fmt.Errorf("remove stale icon %s: %w", name, err)
		}
		stats.pruned++
	}
	return stats, nil
}

// iconFiles lists the regular files in dir named like icon files.
func iconFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read icons dir: %w", err)
	}
	var names []string
	for _, de := range entries {
		if de.Type().IsRegular() && iconFilePattern.MatchString(de.Name()) {
			names = append(names, de.Name())
		}
	}
	return names, nil
}

func matchingStem(names []string, stem string) []string {
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, stem+".") && !strings.Contains(name[len(stem)+1:], ".") {
			out = append(out, name)
		}
	}
	return out
}
