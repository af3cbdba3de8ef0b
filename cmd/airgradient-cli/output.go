package main

import (
	"fmt"
	"os"
	"text/tabwriter"
)

func printTable(rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(w, joinRow(row))
	}
	_ = w.Flush()
}

func joinRow(row []string) string {
	if len(row) == 0 {
		return ""
	}
	out := row[0]
	for i := 1; i < len(row); i++ {
		out += "\t" + row[i]
	}
	return out
}

func addStringRow(rows *[][]string, label, value string) {
	if value == "" {
		return
	}
	*rows = append(*rows, []string{label, value})
}

func addIntRow(rows *[][]string, label string, value *int) {
	if value == nil {
		return
	}
	*rows = append(*rows, []string{label, fmt.Sprintf("%d", *value)})
}

func addFloatRow(rows *[][]string, label string, value *float64, unit string) {
	if value == nil {
		return
	}
	formatted := fmt.Sprintf("%.2f", *value)
	if unit != "" {
		formatted = fmt.Sprintf("%s %s", formatted, unit)
	}
	*rows = append(*rows, []string{label, formatted})
}
