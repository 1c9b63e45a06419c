// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/launchpad"
	"github.com/poiesic/launchpad/catalog"
	"github.com/poiesic/launchpad/config"
	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/search"
	"github.com/poiesic/launchpad/storage"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "launchpad",
		Usage: "Index and search launcher entries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Entry definition file (overrides the config)",
			},
			&cli.StringFlag{
				Name:  "cache-backend",
				Usage: "Snapshot cache backend: file, badger or none (overrides the config)",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Snapshot cache directory (overrides the config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Rank entries for a query and print the results",
				ArgsUsage: "[query]",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (0 uses the config)",
					},
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Only entries in this category (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only entries carrying this tag (repeatable)",
					},
					&cli.StringFlag{
						Name:  "alias",
						Usage: "Only entries of this mode",
					},
				},
			},
			{
				Name:   "load",
				Usage:  "Load the entry set and report what was loaded",
				Action: loadCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Parse the source even when the cache is current",
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Reload whenever the source file changes",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period after a change before reloading",
						Value: defaultWatchDebounce,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear the snapshot cache",
				Subcommands: []*cli.Command{
					{
						Name:   "inspect",
						Usage:  "Describe the stored snapshot",
						Action: cacheInspectCommand,
					},
					{
						Name:   "clear",
						Usage:  "Remove the stored snapshot",
						Action: cacheClearCommand,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Write a synthetic entry file for load testing",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Path of the YAML file to write",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of entries to generate",
						Value: 1000,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "File of titles, one per line (defaults to a built-in list)",
					},
				},
			},
			{
				Name:      "launch",
				Usage:     "Record a launch of an entry and print its action",
				ArgsUsage: "<id>",
				Action:    launchCommand,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), slog.Default())
	if err != nil {
		return nil, err
	}
	if v := c.String("source"); v != "" {
		cfg.Source = v
	}
	if v := c.String("cache-backend"); v != "" {
		cfg.CacheBackend = v
	}
	if v := c.String("cache-dir"); v != "" {
		cfg.CacheDir = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openLauncher(c *cli.Context) (*launchpad.Launcher, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	l, err := launchpad.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open launcher: %w", err)
	}
	return l, nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()
	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	if _, err := l.Start(ctx); err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	var opts []search.SessionOption
	if n := c.Int("limit"); n > 0 {
		opts = append(opts, search.WithLimit(n))
	}
	session, err := l.NewSession(opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	filter := search.Filter{
		Categories: c.StringSlice("category"),
		Tags:       c.StringSlice("tag"),
		Alias:      c.String("alias"),
	}
	if !filter.IsZero() {
		if _, err := session.SetFilter(ctx, filter); err != nil {
			return err
		}
	}
	results, err := session.SetQuery(ctx, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	printResults(c.App.Writer, results)
	return nil
}

func printResults(w io.Writer, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}
	for i, r := range results {
		title := r.Title
		if r.Field == search.FieldTitle {
			title = search.Highlight(r.Title, r.Spans, "[", "]")
		}
		fmt.Fprintf(w, "%3d. %-40s %6.1f  %-11s %s\n", i+1, title, r.Score, r.Tier, r.ID)
		if r.Subtitle != "" {
			sub := r.Subtitle
			if r.Field == search.FieldSubtitle {
				sub = search.Highlight(sub, r.Spans, "[", "]")
			}
			fmt.Fprintf(w, "     %s\n", sub)
		}
	}
}

func loadCommand(c *cli.Context) error {
	ctx := context.Background()
	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	set, err := l.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if c.Bool("force") {
		if set, err = l.ForceReload(ctx); err != nil {
			return fmt.Errorf("failed to reload entries: %w", err)
		}
	}
	printSet(c.App.Writer, l.Config().Source, set)
	return nil
}

func printSet(w io.Writer, name string, set *core.EntrySet) {
	origin := "source"
	if set.FromCache {
		origin = "cache"
	}
	fmt.Fprintf(w, "Source: %s\n", name)
	fmt.Fprintf(w, "Version: %d (from %s)\n", set.Version, origin)
	fmt.Fprintf(w, "Fingerprint: %s\n", set.Fingerprint)
	fmt.Fprintf(w, "Entries: %s\n", humanize.Comma(int64(set.Len())))
	diags := set.Diagnostics()
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(w, "Dropped: %d\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(w, "  %s\n", d.Error())
	}
}

func watchCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	set, err := l.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	w := c.App.Writer
	printSet(w, l.Config().Source, set)

	unsubscribe := l.Catalog().Subscribe(func(ev catalog.Event) {
		switch ev.Kind {
		case catalog.EventPublished:
			fmt.Fprintf(w, "reloaded: version %d, %d entries\n", ev.Set.Version, ev.Set.Len())
		case catalog.EventReloadFailed:
			fmt.Fprintf(w, "reload failed, keeping previous entries: %v\n", ev.Err)
		}
	})
	defer unsubscribe()

	watcher, err := NewWatcher(l.Config().Source, c.Duration("debounce"), l.RequestReload)
	if err != nil {
		return fmt.Errorf("failed to watch source: %w", err)
	}
	defer watcher.Close()

	fmt.Fprintf(w, "watching %s\n", l.Config().Source)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func inspector(l *launchpad.Launcher) (storage.SnapshotInspector, error) {
	insp, ok := l.Snapshots().(storage.SnapshotInspector)
	if !ok {
		return nil, fmt.Errorf("cache backend %q keeps no snapshot", l.Config().CacheBackend)
	}
	return insp, nil
}

func cacheInspectCommand(c *cli.Context) error {
	ctx := context.Background()
	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	insp, err := inspector(l)
	if err != nil {
		return err
	}
	set, size, err := insp.Inspect(ctx)
	w := c.App.Writer
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintln(w, "no snapshot stored")
		return nil
	case err != nil:
		fmt.Fprintf(w, "snapshot unreadable (%s): %v\n", humanize.Bytes(uint64(size)), err)
		return nil
	}
	fmt.Fprintf(w, "Backend: %s\n", l.Config().CacheBackend)
	fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "Written: %s\n", humanize.Time(set.LoadedAt))
	printSet(w, l.Config().Source, set)
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	insp, err := inspector(l)
	if err != nil {
		return err
	}
	if err := insp.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "cache cleared")
	return nil
}

func launchCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	ctx := context.Background()
	l, err := openLauncher(c)
	if err != nil {
		return err
	}
	defer l.Close()

	set, err := l.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	e, ok := set.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", launchpad.ErrUnknownEntry, id)
	}
	if !e.Enabled {
		return fmt.Errorf("entry %s is disabled", id)
	}
	n, err := l.RecordLaunch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to record launch: %w", err)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%s (%s launch)\n", e.Title, humanize.Ordinal(int(n)))
	if e.Action.IsZero() {
		fmt.Fprintln(w, "no action")
		return nil
	}
	fmt.Fprintf(w, "%s %s\n", e.Action.Kind, e.Action.Payload)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
