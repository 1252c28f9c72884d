package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	// JSON formatting.
	defaultJSONIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidPageSize = errors.New("page size must be a positive number or 'all'")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFieldNotSet     = errors.New("field has no value")
)

// pageFlags are the paging and filter flags shared by list commands.
type pageFlags struct {
	filter   string
	include  []string
	sort     string
	page     int
	pageSize string
	all      bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "filter", "", "filter expression, e.g. \"status = 'Incomplete'\"")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "related entities to side-load")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort expression")
	cmd.Flags().IntVar(&f.page, "page", 0, "page number to fetch")
	cmd.Flags().StringVar(&f.pageSize, "page-size", strconv.Itoa(constants.DefaultPageSize), "page size, or 'all'")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch every page")
}

// queryParams builds the query from the flags, folding extra filter terms in
// with AND.
func (f *pageFlags) queryParams(terms ...string) (*caseapi.QueryParams, error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.And(append(terms, f.filter)...)).
		WithInclude(f.include...)
	params.Sort = f.sort

	if f.all || strings.EqualFold(f.pageSize, caseapi.PageSizeAll) {
		return params.All(), nil
	}

	size, err := strconv.Atoi(f.pageSize)
	if err != nil || size <= 0 {
		return nil, ErrInvalidPageSize
	}

	return params.WithPage(f.page).WithPageSize(size), nil
}

// truncate shortens s to the table cell width.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= constants.TableCellMaxWidth {
		return s
	}

	return string(runes[:constants.TableCellMaxWidth-3]) + "..."
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}
