package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/catalog"
	"github.com/vmunix/reelcat/internal/film"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List movies",
	Long: `List movies from the catalog. Without --page, demo movies added with
'reelcat add --demo' are listed before the first page.

Examples:
  reelcat movies
  reelcat movies --page 2 --size 24`,
	Args: cobra.NoArgs,
	RunE: runMoviesCmd,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCmd,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List top rated movies",
	Args:  cobra.NoArgs,
	RunE:  runTopCmd,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Personal recommendations",
	Long: `Recommendations for the signed-in user. Falls back to top rated
movies when signed out or when the backend has nothing to suggest.`,
	Args: cobra.NoArgs,
	RunE: runRecommendCmd,
}

var similarCmd = &cobra.Command{
	Use:   "similar <id>",
	Short: "Movies similar to a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilarCmd,
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genres (dataset source)",
	Args:  cobra.NoArgs,
	RunE:  runGenresCmd,
}

var streamURLCmd = &cobra.Command{
	Use:   "stream-url <id>",
	Short: "Print the video stream URL of a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreamURLCmd,
}

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Warm the poster cache for top rated movies",
	Args:  cobra.NoArgs,
	RunE:  runPreloadCmd,
}

func init() {
	rootCmd.AddCommand(moviesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(streamURLCmd)
	rootCmd.AddCommand(preloadCmd)

	moviesCmd.Flags().Int("page", 0, "Page number (1-based)")
	moviesCmd.Flags().Int("size", catalog.AllMoviesPageSize, "Page size when --page is set")
	recommendCmd.Flags().IntP("count", "n", catalog.DefaultRecommendations, "Number of recommendations")
}

func parseMovieID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", arg)
	}
	return id, nil
}

func runMoviesCmd(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	return withApp(cmd, func(ctx context.Context, a *app) error {
		return listMovies(ctx, a, page, size)
	})
}

func listMovies(ctx context.Context, a *app, page, size int) error {
	if page <= 0 {
		films := append(a.catalog.DemoMovies(ctx), a.catalog.Movies(ctx)...)
		return printFilms(a.out, films)
	}

	films, total := a.catalog.AllMovies(ctx, page, size)
	if jsonOutput {
		if films == nil {
			films = []film.Film{}
		}
		return printJSON(a.out, map[string]any{
			"page":   page,
			"size":   size,
			"total":  total,
			"movies": films,
		})
	}
	if err := printFilms(a.out, films); err != nil {
		return err
	}
	if size > 0 && total > 0 {
		pages := (total + size - 1) / size
		fmt.Fprintf(a.out, "Page %d of %d (%d movies)\n", page, pages, total)
	}
	return nil
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return showMovie(ctx, a, id)
	})
}

func showMovie(ctx context.Context, a *app, id int64) error {
	f, ok := a.catalog.Movie(ctx, id)
	if !ok {
		return fmt.Errorf("movie %d not found", id)
	}
	return printFilm(a.out, f)
}

func runTopCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return printFilms(a.out, a.catalog.TopRated(ctx))
	})
}

func runRecommendCmd(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return printFilms(a.out, a.catalog.Recommendations(ctx, count))
	})
}

func runSimilarCmd(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		return printFilms(a.out, a.catalog.Similar(ctx, id))
	})
}

func runGenresCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, listGenres)
}

func listGenres(ctx context.Context, a *app) error {
	genres, err := a.catalog.Genres(ctx)
	if errors.Is(err, catalog.ErrUnsupported) {
		return fmt.Errorf("genres are only available with source = %q", "dataset")
	}
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(a.out, genres)
	}
	rows := make([][]string, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name})
	}
	fmt.Fprintln(a.out, renderTable(a.out, []string{"ID", "Genre"}, rows, []columnAlignment{alignRight, alignLeft}))
	return nil
}

func runStreamURLCmd(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		u, err := a.catalog.StreamURL(id)
		if errors.Is(err, catalog.ErrUnsupported) {
			return fmt.Errorf("streaming needs source = %q", "backend")
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, u)
		return nil
	})
}

func runPreloadCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		n, err := a.catalog.PreloadTopMovies(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Cached %d posters.\n", n)
		return nil
	})
}
