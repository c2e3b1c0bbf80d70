package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/api"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Upload a new movie (admin)",
	Long: `Upload a new movie to the backend. Requires an admin session.

With --demo the movie is stored locally only. Demo movies appear first
in 'reelcat movies' and can be opened with 'reelcat show'.

Examples:
  reelcat add --title "Heat" --description "Crime saga" --genres "Crime|Drama" --poster heat.png
  reelcat add --demo --title "Heat" --description "Crime saga" --genres "Crime"`,
	Args: cobra.NoArgs,
	RunE: runAddCmd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("title", "", "Movie title")
	addCmd.Flags().String("description", "", "Movie description")
	addCmd.Flags().String("genres", "", "Genres separated by '|'")
	addCmd.Flags().String("poster", "", "Poster image file")
	addCmd.Flags().Bool("demo", false, "Store the movie locally instead of uploading it")
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	var req api.AddMovieRequest
	req.Title, _ = cmd.Flags().GetString("title")
	req.Description, _ = cmd.Flags().GetString("description")
	req.Genres, _ = cmd.Flags().GetString("genres")
	req.PosterPath, _ = cmd.Flags().GetString("poster")
	demo, _ := cmd.Flags().GetBool("demo")

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if demo {
			return addDemoMovie(ctx, a, req)
		}
		return addMovie(ctx, a, req)
	})
}

func addMovie(ctx context.Context, a *app, req api.AddMovieRequest) error {
	u, ok := a.session.User()
	if !ok {
		return fmt.Errorf("not signed in, run 'reelcat login'")
	}
	if !u.IsAdmin() {
		return fmt.Errorf("adding movies requires an admin account (signed in as %s)", displayName(u))
	}

	resp, err := a.catalog.AddMovie(ctx, req)
	if err != nil {
		var addErr *api.AddMovieError
		if errors.As(err, &addErr) {
			return fmt.Errorf("upload rejected: %s", addErr.Error())
		}
		return err
	}
	if jsonOutput {
		return printJSON(a.out, resp)
	}
	fmt.Fprintf(a.out, "Uploaded %q\n", req.Title)
	return nil
}

func addDemoMovie(ctx context.Context, a *app, req api.AddMovieRequest) error {
	f, err := a.catalog.AddDemoMovie(ctx, req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(a.out, f)
	}
	fmt.Fprintf(a.out, "Added demo movie %q with id %d\n", f.Title, f.ID)
	return nil
}
