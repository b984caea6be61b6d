package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	mutedColor   = color.New(color.FgHiBlack)
	starColor    = color.New(color.FgYellow)
)

// listFlags are the shared search/filter/sort/page flags of list commands
type listFlags struct {
	search string
	status string
	rating int
	sort   string
	page   int
}

func (f *listFlags) register(cmd *cobra.Command, sorts, statuses []string, withRating bool) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Case-insensitive search")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "Sort order ("+strings.Join(sorts, ", ")+")")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number")
	if len(statuses) > 0 {
		cmd.Flags().StringVar(&f.status, "status", "", "Filter by status ("+strings.Join(statuses, ", ")+")")
	}
	if withRating {
		cmd.Flags().IntVar(&f.rating, "rating", 0, "Minimum rating (1-5)")
	}
}

// apply sets the criteria on c; the page is set last because every criteria change resets it
func applyList[T any](c *listview.Controller[T], f listFlags) error {
	if f.search != "" {
		c.SetSearch(f.search)
	}
	if f.status != "" {
		c.SetFilter(listview.FilterStatus, f.status)
	}
	if f.rating != 0 {
		if f.rating < model.MinRating || f.rating > model.MaxRating {
			return fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
		}
		c.SetFilter(listview.FilterRating, strconv.Itoa(f.rating))
	}
	if f.sort != "" && !c.SetSort(f.sort) {
		return fmt.Errorf("unknown sort %q", f.sort)
	}
	c.SetPage(f.page)
	return nil
}

// printPager prints "Showing X–Y of N" and the page buttons
func printPager[T any](w io.Writer, c *listview.Controller[T]) {
	start, end, total := c.Range()
	if total == 0 {
		mutedColor.Fprintln(w, "No results.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d–%d of %d", start, end, total)
	if c.TotalPages() > 1 {
		b.WriteString("   ")
		nav := c.Nav()
		if nav.Prev {
			b.WriteString("‹ ")
		}
		for _, p := range c.PageNumbers() {
			switch {
			case p.Ellipsis:
				b.WriteString("… ")
			case p.Current:
				fmt.Fprintf(&b, "[%d] ", p.Number)
			default:
				fmt.Fprintf(&b, "%d ", p.Number)
			}
		}
		if nav.Next {
			b.WriteString("›")
		}
	}
	mutedColor.Fprintln(w, strings.TrimRight(b.String(), " "))
}

func stars(rating int) string {
	return starColor.Sprint(model.Stars(rating))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// printFieldErrors lists the per-field problems of a 422 response, if any
func printFieldErrors(w io.Writer, err error) bool {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	fields, ok := apiErr.Detail.(api.FieldErrors)
	if !ok || len(fields) == 0 {
		return false
	}
	for _, fe := range fields {
		errorColor.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
	}
	return true
}

// reportInvalid prints local validation or 422 field errors and reports whether err was one of them
func reportInvalid(w io.Writer, err error) bool {
	if errs, ok := validate.AsErrors(err); ok {
		warnColor.Fprintln(w, "Please fix the following:")
		for _, field := range slices.Sorted(maps.Keys(errs)) {
			errorColor.Fprintf(w, "  %s: %s\n", field, errs[field])
		}
		return true
	}
	return printFieldErrors(w, err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
