package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/catalog"
	"github.com/vmunix/reelcat/internal/poster"
)

var posterCmd = &cobra.Command{
	Use:   "poster <url>",
	Short: "Resolve a poster through the local cache",
	Long: `Resolve a poster URL the way detail pages do. Posters from excluded
origins are returned unchanged; others are fetched once and served from
the cache until they expire.

Examples:
  reelcat poster https://img.example.com/heat.jpg
  reelcat poster https://img.example.com/heat.jpg --out heat`,
	Args: cobra.ExactArgs(1),
	RunE: runPosterCmd,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage locally cached data",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached posters",
	Args:  cobra.NoArgs,
	RunE:  runCacheListCmd,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached posters",
	Args:  cobra.NoArgs,
	RunE:  runCacheClearCmd,
}

func init() {
	rootCmd.AddCommand(posterCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	posterCmd.Flags().String("out", "", "Write the poster image to this file")
	cacheClearCmd.Flags().Bool("demo", false, "Also remove demo movies")
}

func runPosterCmd(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return resolvePoster(ctx, a, args[0], out)
	})
}

func resolvePoster(ctx context.Context, a *app, sourceURL, out string) error {
	resolved := a.posters.Display(ctx, sourceURL)
	if out == "" {
		fmt.Fprintln(a.out, posterLabel(resolved))
		return nil
	}

	if !strings.HasPrefix(resolved, "data:") {
		return fmt.Errorf("poster %s is not cached locally", sourceURL)
	}
	body, _, err := poster.DecodeDataURL(resolved)
	if err != nil {
		return err
	}
	if filepath.Ext(out) == "" {
		out += mimetype.Detect(body).Extension()
	}
	if err := afero.WriteFile(a.fs, out, body, 0o644); err != nil {
		return fmt.Errorf("writing poster: %w", err)
	}
	fmt.Fprintf(a.out, "Wrote %s (%s)\n", out, humanize.Bytes(uint64(len(body))))
	return nil
}

type cacheRow struct {
	SourceURL string    `json:"source_url"`
	Size      int       `json:"size"`
	CachedAt  time.Time `json:"cached_at"`
	Expired   bool      `json:"expired"`
}

func runCacheListCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, listCache)
}

func listCache(ctx context.Context, a *app) error {
	entries, err := a.posters.Entries(ctx)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAtEpochMillis > entries[j].CachedAtEpochMillis
	})

	list := make([]cacheRow, 0, len(entries))
	var total int
	for _, e := range entries {
		list = append(list, cacheRow{
			SourceURL: e.SourceURL,
			Size:      len(e.DataURL),
			CachedAt:  e.CachedAt(),
			Expired:   a.posters.Expired(e),
		})
		total += len(e.DataURL)
	}

	if jsonOutput {
		return printJSON(a.out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "Poster cache is empty.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		age := humanize.Time(r.CachedAt)
		if r.Expired {
			age += " (expired)"
		}
		rows = append(rows, []string{r.SourceURL, humanize.Bytes(uint64(r.Size)), age})
	}
	fmt.Fprintln(a.out, renderTable(a.out,
		[]string{"Poster", "Size", "Cached"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(a.out, "%d posters, %s\n", len(list), humanize.Bytes(uint64(total)))
	return nil
}

func runCacheClearCmd(cmd *cobra.Command, args []string) error {
	demo, _ := cmd.Flags().GetBool("demo")
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return clearCache(ctx, a, demo)
	})
}

func clearCache(ctx context.Context, a *app, demo bool) error {
	n, err := a.posters.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d cached posters.\n", n)

	if demo {
		m, err := a.store.DeletePrefix(ctx, catalog.DemoKeyPrefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %d demo movies.\n", m)
	}
	return nil
}
