package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/vmunix/reelcat/internal/film"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// maxTitleWidth keeps long titles from pushing the table off screen.
const maxTitleWidth = 48

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFilms writes films as a table, or as JSON with --json.
func printFilms(w io.Writer, films []film.Film) error {
	if jsonOutput {
		if films == nil {
			films = []film.Film{}
		}
		return printJSON(w, films)
	}
	if len(films) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return nil
	}

	rows := make([][]string, 0, len(films))
	for _, f := range films {
		rows = append(rows, filmRow(f))
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"ID", "Title", "Year", "Rating", "Genres"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

func filmRow(f film.Film) []string {
	year := "-"
	if y := f.Year(); y > 0 {
		year = strconv.Itoa(y)
	}
	rating := "-"
	if f.Rating > 0 {
		rating = strconv.FormatFloat(f.Rating, 'f', 1, 64)
	}
	return []string{
		strconv.FormatInt(f.ID, 10),
		text.Trim(f.Title, maxTitleWidth),
		year,
		rating,
		strings.Join(f.Genres, ", "),
	}
}

// printFilm writes the detail view of one movie.
func printFilm(w io.Writer, f film.Film) error {
	if jsonOutput {
		return printJSON(w, f)
	}
	fmt.Fprintf(w, "%s\n", f.Title)
	if y := f.Year(); y > 0 {
		fmt.Fprintf(w, "  Year:     %d\n", y)
	}
	if f.Rating > 0 {
		fmt.Fprintf(w, "  Rating:   %.1f\n", f.Rating)
	}
	if len(f.Genres) > 0 {
		fmt.Fprintf(w, "  Genres:   %s\n", strings.Join(f.Genres, ", "))
	}
	if f.DurationSeconds > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", f.Duration())
	}
	if f.PosterURL != "" {
		fmt.Fprintf(w, "  Poster:   %s\n", posterLabel(f.PosterURL))
	}
	if f.VideoURL != "" {
		fmt.Fprintf(w, "  Video:    %s\n", f.VideoURL)
	}
	if f.Description != "" {
		fmt.Fprintf(w, "\n%s\n", f.Description)
	}
	return nil
}

// posterLabel shortens inline posters, which are far too long to print.
func posterLabel(u string) string {
	if strings.HasPrefix(u, "data:") {
		meta, _, _ := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
		return fmt.Sprintf("(cached %s)", strings.TrimSuffix(meta, ";base64"))
	}
	return u
}
