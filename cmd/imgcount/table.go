package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/imgcount/internal/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderReport 把报告渲染成终端表格：每部影片一行，末尾附摘要。
func renderReport(rr domain.RunReport) string {
	headers := []string{"#", "IMDb", "图片数", "URL / 错误"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}

	rows := make([][]string, 0, len(rr.Items))
	for i, it := range rr.Items {
		id := it.IMDbID
		if id == "" {
			id = "-"
		}
		count := "-"
		detail := it.URL
		if it.OK() {
			count = strconv.Itoa(*it.Count)
		} else {
			detail = it.ErrorCode
			if msg := strings.TrimSpace(it.ErrorMsg); msg != "" {
				detail += ": " + truncate(msg, 80)
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), id, count, detail})
	}

	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(renderTable(headers, rows, aligns))
		b.WriteString("\n")
	}
	s := rr.Summary
	fmt.Fprintf(&b, "run_id=%s total=%d pages=%d movies=%d (catalog=%d lookup=%d)\n",
		rr.RunID, s.Total, s.Pages, s.Movies, s.FromCatalog, s.FromLookup,
	)
	b.WriteString(summaryLine(s))
	return b.String()
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

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
