package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"urldeck/internal/entry"
	"urldeck/internal/resolver"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <url>",
		Short: "Append an entry and save the list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			url := strings.TrimSpace(args[1])
			if title == "" || url == "" {
				return fmt.Errorf("title and url must not be empty")
			}

			var id entry.ID
			store, err := ctx.updateStore(func(store *entry.Store) error {
				id = store.Append(title, url)
				return nil
			})
			if err != nil {
				return err
			}

			added, _ := store.Get(id)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %s (%s)\n", entryLabel(added), added.URL)
			if _, err := resolver.Host(url); err != nil {
				fmt.Fprintf(out, "Warning: %v; enrichment will use the placeholder icon\n", err)
			}
			return nil
		},
	}
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <position> up|down",
		Short: "Swap an entry with its neighbour and save the list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			dir, err := entry.ParseDirection(strings.ToLower(strings.TrimSpace(args[1])))
			if err != nil {
				return err
			}

			var (
				target  entry.Entry
				swapped bool
			)
			store, err := ctx.updateStore(func(store *entry.Store) error {
				var err error
				if target, err = store.At(pos); err != nil {
					return err
				}
				swapped = store.Move(target.ID, dir)
				return nil
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !swapped {
				fmt.Fprintf(out, "%s is already at the %s\n", entryLabel(target), boundaryName(dir))
				return nil
			}
			moved, _ := store.Get(target.ID)
			fmt.Fprintf(out, "Moved %s %s to #%d\n", target.Title, dir, moved.Position)
			return nil
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <position>",
		Aliases: []string{"rm"},
		Short:   "Remove an entry and save the list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			var target entry.Entry
			store, err := ctx.updateStore(func(store *entry.Store) error {
				var err error
				if target, err = store.At(pos); err != nil {
					return err
				}
				store.Select(target.ID)
				store.Delete(target.ID)
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", entryLabel(target))
			if current, ok := store.Current(); ok {
				fmt.Fprintf(out, "Current: %s\n", entryLabel(current))
			} else {
				fmt.Fprintln(out, "List is now empty")
			}
			return nil
		},
	}
}

func boundaryName(dir entry.Direction) string {
	if dir == entry.Up {
		return "top"
	}
	return "bottom"
}
