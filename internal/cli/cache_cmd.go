package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/render"
	"github.com/benedict2310/ngxer/pkg/route"
	"github.com/spf13/cobra"
)

// cacheSeed is one `path<file.json` argument.
type cacheSeed struct {
	Route route.Route
	File  string
}

func parseCacheSeed(arg string) (cacheSeed, error) {
	target, file, ok := strings.Cut(arg, "<")
	if !ok || strings.TrimSpace(file) == "" {
		return cacheSeed{}, fmt.Errorf("invalid cache argument %q (expected <route><<file.json>)", arg)
	}
	r, err := route.Parse(target)
	if err != nil {
		return cacheSeed{}, fmt.Errorf("invalid cache argument %q: %w", arg, err)
	}
	return cacheSeed{Route: r, File: strings.TrimSpace(file)}, nil
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache <route<data.json>...",
		Short: "Seed cache entries from JSON files",
		Long: "Each argument pairs a route with a JSON object, e.g. 'about<about.json'\n" +
			"or 'posts:abc<abc.json'. Seeded paths are added to pathRender; the next\n" +
			"generate composes their pages from the cache without a browser.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds := make([]cacheSeed, 0, len(args))
			for _, arg := range args {
				seed, err := parseCacheSeed(arg)
				if err != nil {
					return exitCodeError(exitUsage, err)
				}
				seeds = append(seeds, seed)
			}

			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			tpl, err := render.LoadTemplate(rt.Project)
			if err != nil {
				if errors.Is(err, render.ErrNoBuildOutput) {
					return exitCodeError(exitUsage, err)
				}
				return err
			}
			store := cache.New(rt.Project.RCDir, cache.Options{
				BaseURL:  rt.Project.URL,
				Defaults: tpl.Defaults,
				Renders:  rt.Project.DatabaseRender,
			})

			var paths []string
			for _, seed := range seeds {
				data, err := readJSONObject(seed.File)
				if err != nil {
					return err
				}
				entry, err := store.Save(cmd.Context(), seed.Route, data)
				if err != nil {
					return err
				}
				if entry == nil {
					return exitCodeError(exitUsage, fmt.Errorf("%s: %w", seed.Route.Collection, cache.ErrDisallowedCollection))
				}
				if !seed.Route.IsItem() {
					paths = append(paths, seed.Route.Path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  + cached   %s -> %s\n", seed.Route, entry.Key)
			}

			if len(paths) > 0 {
				if err := config.Update(rt.Project.Path, func(c *config.Config) { c.AddPaths(paths...) }); err != nil {
					return fmt.Errorf("add paths to config: %w", err)
				}
			}
			return nil
		},
	}
	return cmd
}

func readJSONObject(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, exitCodeError(exitUsage, fmt.Errorf("%s must hold a JSON object: %w", path, err))
	}
	return data, nil
}
