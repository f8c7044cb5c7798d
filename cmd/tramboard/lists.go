package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tramboard/internal/directory"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites [list | toggle <stop> | remove <stop>]",
	Short: "List or edit favorite stops",
	Args:  cobra.ArbitraryArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		o := a.listOrchestrator()
		action := "list"
		if len(args) > 0 {
			action, args = args[0], args[1:]
		}

		switch action {
		case "list":
		case "toggle":
			name := joinArgs(args)
			if name == "" {
				return errors.New("toggle needs a stop name")
			}
			if o.ToggleFavorite(ctx, name) {
				fmt.Printf("★ %s\n", name)
			} else {
				fmt.Printf("☆ %s\n", name)
			}
		case "remove":
			name := joinArgs(args)
			if name == "" {
				return errors.New("remove needs a stop name")
			}
			o.RemoveFavorite(ctx, name)
		default:
			return fmt.Errorf("unknown action %q (want list, toggle or remove)", action)
		}

		renderList(os.Stdout, "★ Favorites", o.Favorites(), noMark)
		return nil
	}),
}

var recentCmd = &cobra.Command{
	Use:       "recent [list | clear]",
	Short:     "List or clear recently queried stops",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"list", "clear"},
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		o := a.listOrchestrator()
		if len(args) == 1 && args[0] == "clear" {
			o.ClearRecent(ctx)
		}
		renderList(os.Stdout, "Recent", o.Recent(), func(name string) string {
			if o.IsFavorite(name) {
				return " ★"
			}
			return ""
		})
		return nil
	}),
}

var stopsCmd = &cobra.Command{
	Use:   "stops [term...]",
	Short: "List directory stops, optionally only those matching term",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		names := a.dir.Names()
		if term := joinArgs(args); term != "" {
			names = a.dir.Match(term)
		}
		for _, n := range names {
			id, _ := a.dir.Lookup(n)
			fmt.Printf("%s\t%s\n", n, infoStyle.Render(id))
		}
		if len(names) == 0 {
			fmt.Println(infoStyle.Render(a.msgs.NoMatch(joinArgs(args))))
		}
		return nil
	}),
}

var stopsImportCmd = &cobra.Command{
	Use:   "import <gtfs zip url or path>",
	Short: "Build a stop directory file from a GTFS feed",
	Long: `Reads stops.txt from a GTFS feed archive and writes a YAML stop directory
that can be used with --directory. Platforms are folded into their stations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		logger := newLogger(cmd)

		dl := directory.NewDownloader(os.TempDir(), logger)
		dir, err := dl.Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := dir.WriteYAML(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("stop directory written", "path", out, "stops", dir.Len())
		return nil
	},
}

func init() {
	stopsImportCmd.Flags().StringP("out", "o", "stops.yaml", "output file")
	stopsCmd.AddCommand(stopsImportCmd)
}
