package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(output))
	return err
}

// printTable writes rows as aligned columns under header.
func (a *app) printTable(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// emit prints v as JSON with --json, otherwise as a table.
func (a *app) emit(v any, header []string, rows [][]string) error {
	if a.jsonOut {
		return a.printJSON(v)
	}
	return a.printTable(header, rows)
}

var (
	postHeader = []string{"ID", "TYPE", "STATUS", "SLUG", "TITLE"}
	termHeader = []string{"TERM_ID", "TAXONOMY", "SLUG", "NAME"}
)

func postRow(p *types.Post) []string {
	return []string{strconv.FormatInt(p.ID, 10), p.Type, p.Status, p.Slug, p.Title}
}

func termRow(t *types.Term) []string {
	return []string{strconv.FormatInt(t.ID, 10), t.Taxonomy, t.Slug, t.Name}
}

func postRows(posts []*types.Post) [][]string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, postRow(p))
	}
	return rows
}

func termRows(terms []*types.Term) [][]string {
	rows := make([][]string, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, termRow(t))
	}
	return rows
}

// parseID parses a positive integer id argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError{fmt.Errorf("%w: %q", types.ErrInvalidID, s)}
	}
	return id, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
