package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/catalog"
	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/internal/livesearch"
	"github.com/vmunix/reelcat/pkg/ranking"
)

const maxSuggestions = 3

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search movies by title",
	Long: `Search the catalog by title.

Only titles containing every query word longer than one character are
shown. Exact titles come first, then titles matching more query words,
then titles with the words in query order, then higher rated movies.

With --live, each line read from stdin is one state of the search box.
Lines arriving faster than the debounce delay are coalesced, and only
the newest query's results are printed.

Examples:
  reelcat search "dark knight"
  reelcat search --elastic matrix
  printf 'ma\nmat\nmatrix\n' | reelcat search --live`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Bool("elastic", false, "Use the backend full-text search")
	searchCmd.Flags().Int("limit", catalog.DefaultElasticLimit, "Result limit for --elastic")
	searchCmd.Flags().Bool("fallback", false, "Search each word separately when the full query finds nothing")
	searchCmd.Flags().Bool("live", false, "Read search box input from stdin")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	elastic, _ := cmd.Flags().GetBool("elastic")
	limit, _ := cmd.Flags().GetInt("limit")
	fallback, _ := cmd.Flags().GetBool("fallback")
	live, _ := cmd.Flags().GetBool("live")

	query := strings.Join(args, " ")
	if !live && strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query required")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		switch {
		case live:
			return liveSearch(ctx, a, cmd.InOrStdin())
		case elastic:
			return printFilms(a.out, a.catalog.ElasticSearch(ctx, query, limit))
		default:
			return search(ctx, a, query, fallback)
		}
	})
}

func search(ctx context.Context, a *app, query string, fallback bool) error {
	var films []film.Film
	if fallback {
		films = a.catalog.SearchWithFallback(ctx, query)
	} else {
		films = a.catalog.Search(ctx, query)
	}
	if err := printFilms(a.out, films); err != nil {
		return err
	}
	if len(films) == 0 && !jsonOutput {
		printSuggestions(ctx, a, query)
	}
	return nil
}

// printSuggestions offers close titles from the first page of the catalog.
func printSuggestions(ctx context.Context, a *app, query string) {
	movies := a.catalog.Movies(ctx)
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	suggestions := ranking.Suggest(query, titles, maxSuggestions)
	if len(suggestions) == 0 {
		return
	}
	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		names = append(names, fmt.Sprintf("%q", s.Title))
	}
	fmt.Fprintf(a.out, "Did you mean: %s?\n", strings.Join(names, ", "))
}

func liveSearch(ctx context.Context, a *app, in io.Reader) error {
	d := livesearch.New(ctx, a.catalog.Search,
		livesearch.WithDelay(a.cfg.Search.Debounce),
		livesearch.WithCacheTTL(a.cfg.Search.CacheTTL),
		livesearch.WithMinLength(a.cfg.Search.MinLength),
		livesearch.WithLogger(a.log),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for res := range d.Results() {
			printLiveResult(a.out, res)
		}
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		d.Submit(scanner.Text())
	}
	d.Close()
	wg.Wait()
	return scanner.Err()
}

func printLiveResult(w io.Writer, res livesearch.Result) {
	if jsonOutput {
		_ = printJSON(w, res)
		return
	}
	switch {
	case res.Cleared:
		fmt.Fprintln(w, "(cleared)")
		return
	case res.Fallback != "":
		fmt.Fprintf(w, "%s: nothing found, showing results for %q\n", res.Query, res.Fallback)
	case res.Cached:
		fmt.Fprintf(w, "%s (cached):\n", res.Query)
	default:
		fmt.Fprintf(w, "%s:\n", res.Query)
	}
	_ = printFilms(w, res.Films)
}
