package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"egovlaw-backend/models"
	"egovlaw-backend/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const cliDateLayout = "2006-01-02"

var searchOpts struct {
	category string
	name     string
	number   string
	keyword  string
	from     string
	to       string
	sort     string
	desc     bool
	links    bool
}

// searchCmd lists laws of a category with optional filters
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List and filter laws",
	Long: `Fetches the law list of a category and filters it.

Categories: 1 all, 2 constitution/law, 3 cabinet/imperial order,
4 ministerial ordinance/rule.

Example:
  lawsearch search --category 2 --name 労働 --from 1947-01-01`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.category, "category", string(models.CategoryAll), "Law category code")
	f.StringVar(&searchOpts.name, "name", "", "Substring of the law name")
	f.StringVar(&searchOpts.number, "number", "", "Substring of the law number")
	f.StringVar(&searchOpts.keyword, "keyword", "", "Substring of the name or number")
	f.StringVar(&searchOpts.from, "from", "", "Earliest promulgation date (YYYY-MM-DD)")
	f.StringVar(&searchOpts.to, "to", "", "Latest promulgation date (YYYY-MM-DD)")
	f.StringVar(&searchOpts.sort, "sort", "", "Sort column: category, name, number or date")
	f.BoolVar(&searchOpts.desc, "desc", false, "Sort descending")
	f.BoolVar(&searchOpts.links, "links", false, "Show viewer links")
}

func runSearch(cmd *cobra.Command, args []string) error {
	req, err := buildSearchRequest()
	if err != nil {
		return err
	}

	var order *models.SortState
	if searchOpts.sort != "" {
		order = &models.SortState{Key: models.SortKey(searchOpts.sort), Ascending: !searchOpts.desc}
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	result, err := application.Laws.Search(ctx, req, order)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	renderSearchResult(cmd.OutOrStdout(), result, searchOpts.links)
	return nil
}

func buildSearchRequest() (service.SearchRequest, error) {
	from, err := parseCLIDate(searchOpts.from)
	if err != nil {
		return service.SearchRequest{}, err
	}
	to, err := parseCLIDate(searchOpts.to)
	if err != nil {
		return service.SearchRequest{}, err
	}
	return service.SearchRequest{
		Category: models.LawCategory(searchOpts.category),
		Filters: models.SearchFilters{
			NameQuery:   searchOpts.name,
			NumberQuery: searchOpts.number,
			Keyword:     searchOpts.keyword,
			DateFrom:    from,
			DateTo:      to,
		},
	}, nil
}

func parseCLIDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(cliDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func renderSearchResult(w io.Writer, result *service.LawSearchResult, links bool) {
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+warning))
	}
	if len(result.Table.Rows) == 0 {
		fmt.Fprintln(w, result.Message)
		return
	}
	fmt.Fprintln(w, renderLawTable(result.Table, links))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d of %d laws, sorted by %s", len(result.Table.Rows), result.Total, describeSort(result.Table.Sort))))
}

func renderLawTable(t models.FilteredTable, links bool) string {
	headers := []string{"Category", "Name", "Number", "Promulgated", "Law ID"}
	if links {
		headers = append(headers, "Link")
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := []string{r.CategoryLabel, r.Name, r.Number, formatDate(r.PromulgationDate), r.ID}
		if links {
			row = append(row, r.ViewerURL)
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatDate(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format(cliDateLayout)
}

func describeSort(s models.SortState) string {
	dir := "ascending"
	if !s.Ascending {
		dir = "descending"
	}
	return fmt.Sprintf("%s (%s)", s.Key, dir)
}
