package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"urldeck/internal/entry"
	"urldeck/internal/iconcache"
	"urldeck/internal/resolver"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the entries of the list file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := ctx.loadStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store.Len() == 0 {
				fmt.Fprintf(out, "No entries in %s\n", path)
				return nil
			}

			logger, logCloser, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			defer logCloser.Close()
			cache := ctx.openCache(logger)
			if cache != nil {
				defer cache.Close()
			}
			chain := candidateChain(ctx.configValue())

			entries := store.Entries()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				host, err := resolver.Host(e.URL)
				if err != nil {
					host = "-"
				}
				rows = append(rows, []string{
					strconv.Itoa(e.Position),
					e.Title,
					e.URL,
					host,
					cachedIconSummary(cmd.Context(), cache, chain, e),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{Header: "#", Align: alignRight},
				{Header: "Title", MaxWidth: 40},
				{Header: "URL", MaxWidth: 60},
				{Header: "Host", MaxWidth: 32},
				{Header: "Cached Icon"},
			}, rows))
			fmt.Fprintf(out, "%d entries in %s\n", len(entries), path)
			return nil
		},
	}
}

// cachedIconSummary describes the first cached candidate for e.
func cachedIconSummary(ctx context.Context, cache *iconcache.Cache, chain resolver.Chain, e entry.Entry) string {
	if cache == nil {
		return "-"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, candidate := range chain.Candidates(e.URL) {
		rec, ok, err := cache.Get(ctx, candidate.URL)
		if err != nil || !ok {
			continue
		}
		summary := fmt.Sprintf("%s %dx%d, %s, %s",
			rec.Icon.Format, rec.Icon.Width, rec.Icon.Height,
			humanize.Bytes(uint64(len(rec.Icon.Data))),
			humanize.Time(rec.FetchedAt))
		if rec.Expired {
			summary += " (stale)"
		}
		return summary
	}
	return "-"
}
