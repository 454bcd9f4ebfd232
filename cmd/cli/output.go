package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

func renderKPIs(w io.Writer, k pipeline.KPIs) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total Transactions\t%s\n", pipeline.FormatThousands(fmt.Sprint(k.Transactions)))
	fmt.Fprintf(tw, "Total Revenue\t%s\n", pipeline.FormatKES(k.TotalRevenue))
	fmt.Fprintf(tw, "Total Discount\t%s\n", pipeline.FormatKES(k.TotalDiscount))
	fmt.Fprintf(tw, "Average Sale\t%s\n", pipeline.FormatAverage(k.AverageSale))
	tw.Flush()
}

func renderResult(w io.Writer, r pipeline.Result) {
	if r.Pivot != nil {
		renderPivot(w, r.Pivot)
		return
	}
	if r.Series != nil {
		renderSeries(w, r.Series)
	}
}

func renderSeries(w io.Writer, s *pipeline.Series) {
	fmt.Fprintf(w, "%s\n\n", s.Title)
	if len(s.Points) == 0 {
		fmt.Fprintln(w, "No matching transactions.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tRevenue\tCount\t\n", s.Dimension)
	for _, p := range s.Points {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", p.Key, pipeline.FormatKES(p.Revenue), p.Count)
	}
	if s.UnattributedCount > 0 {
		fmt.Fprintf(tw, "(unattributed)\t%s\t%d\t\n", pipeline.FormatKES(s.Unattributed), s.UnattributedCount)
	}
	fmt.Fprintf(tw, "Total\t%s\t\t\n", pipeline.FormatKES(s.Total()))
	tw.Flush()
}

func renderPivot(w io.Writer, p *pipeline.Pivot) {
	fmt.Fprintf(w, "%s\n\n", p.Title)
	if len(p.Rows) == 0 {
		fmt.Fprintln(w, "No matching transactions.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Category\t")
	for _, month := range p.Columns {
		fmt.Fprintf(tw, "%s\t", month)
	}
	fmt.Fprint(tw, "Total\t\n")

	totals := p.RowTotals()
	for i, category := range p.Rows {
		fmt.Fprintf(tw, "%s\t", category)
		for _, month := range p.Columns {
			v, _ := p.Cell(category, month)
			fmt.Fprintf(tw, "%s\t", v.StringFixed(2))
		}
		fmt.Fprintf(tw, "%s\t\n", totals[i].StringFixed(2))
	}
	tw.Flush()

	if !p.Unattributed.IsZero() {
		fmt.Fprintf(w, "\nUnattributed: %s\n", pipeline.FormatKES(p.Unattributed))
	}
}

func renderDomains(w io.Writer, d pipeline.Domains) {
	groups := make([]string, len(d.AgeGroups))
	for i, g := range d.AgeGroups {
		groups[i] = string(g)
	}

	sections := []struct {
		title  string
		values []string
	}{
		{"County", d.Counties},
		{"Store Name", d.StoreNames},
		{"Category", d.Categories},
		{"Product", d.Products},
		{"Payment Method", d.PaymentMethods},
		{"Gender", d.Genders},
		{"Age Group", groups},
	}
	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", sec.title, len(sec.values))
		for _, v := range sec.values {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
}
