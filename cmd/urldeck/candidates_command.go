package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"urldeck/internal/config"
	"urldeck/internal/enrich"
	"urldeck/internal/resolver"
)

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <url>",
		Short: "Show the icon sources tried for a URL, in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			out := cmd.OutOrStdout()

			host, err := resolver.Host(raw)
			if err != nil {
				fmt.Fprintf(out, "No candidates: %v\n", err)
				fmt.Fprintln(out, "Entries with this URL receive the placeholder icon.")
				return nil
			}
			fmt.Fprintf(out, "Host: %s\n", host)

			candidates := candidateChain(ctx.configValue()).Candidates(raw)
			rows := make([][]string, 0, len(candidates))
			for i, c := range candidates {
				rows = append(rows, []string{strconv.Itoa(i + 1), string(c.Kind), c.URL})
			}
			fmt.Fprintln(out, renderTable([]column{
				{Header: "#", Align: alignRight},
				{Header: "Kind"},
				{Header: "URL"},
			}, rows))
			return nil
		},
	}
}

func candidateChain(cfg *config.Config) resolver.Chain {
	return enrich.OptionsFrom(cfg, nil).Chain
}
