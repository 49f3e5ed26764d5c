package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	scope := r.Platform
	if scope == "" {
		scope = "all platforms"
	}

	// Header
	sb.WriteString("# E-commerce Trend Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Scope: %s | Window: %d days\n\n", scope, r.Days))

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	if s.Narrative != "" {
		sb.WriteString(s.Narrative + "\n\n")
	}
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Overall Direction | %s |\n", s.OverallDirection))
	sb.WriteString(fmt.Sprintf("| Overall Growth | %.2f%% (%s) |\n", s.OverallGrowth, s.OverallLabel))
	if s.TopCategory != nil {
		sb.WriteString(fmt.Sprintf("| Top Category | %s (%.0f) |\n", s.TopCategory.Category, s.TopCategory.Value))
	}
	if s.FastestCategory != nil {
		sb.WriteString(fmt.Sprintf("| Fastest Growing | %s (%.2f%%) |\n", s.FastestCategory.Category, s.FastestCategory.Value))
	}
	sb.WriteString(fmt.Sprintf("| Price Direction | %s (%.2f%%) |\n", s.PriceDirection, s.PriceChangeRate))
	if !s.Period.Start.IsZero() {
		sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n", s.Period.Start.Format(time.DateOnly), s.Period.End.Format(time.DateOnly)))
	}
	sb.WriteString("\n")
	if len(s.Explosive) > 0 {
		sb.WriteString(fmt.Sprintf("Explosive categories: %s\n\n", strings.Join(s.Explosive, ", ")))
	}
	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("**Incomplete data:** %s\n\n", s.Error))
	}

	// Categories
	sb.WriteString("## Categories\n\n")
	if len(r.Categories) > 0 {
		sb.WriteString("| Category | Sales | Growth% |\n")
		sb.WriteString("|----------|-------|---------|\n")
		for _, c := range r.Categories {
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.2f |\n", escapeCell(c.Category), c.Total, c.GrowthRate))
		}
	} else {
		sb.WriteString("No category data available.\n")
	}
	sb.WriteString("\n")

	writeRanking(&sb, "Hot Products", r.Hot, "Popularity", func(row RankingRow) string {
		return fmt.Sprintf("%.2f", row.Popularity)
	})
	writeRanking(&sb, "Rising Products", r.Rising, "Growth%", func(row RankingRow) string {
		return optional(row.GrowthRate)
	})
	writeRanking(&sb, "Best Value", r.Value, "Value Score", func(row RankingRow) string {
		return optional(row.ValueScore)
	})

	// Platforms
	sb.WriteString("## Platforms\n\n")
	if len(r.Platforms) > 0 {
		sb.WriteString("| Platform | Products | Avg Price | Avg Rating | Total Sales |\n")
		sb.WriteString("|----------|----------|-----------|------------|-------------|\n")
		for _, p := range r.Platforms {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %d |\n",
				p.Platform, p.ProductCount, p.AveragePrice, p.AverageRating, p.TotalSales))
		}
	} else {
		sb.WriteString("No platform statistics available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeRanking(sb *strings.Builder, title string, rows []RankingRow, metric string, value func(RankingRow) string) {
	sb.WriteString("## " + title + "\n\n")
	if len(rows) == 0 {
		sb.WriteString("No products available.\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("| # | Platform | Product | Category | Price | Rating | Sales | %s |\n", metric))
	sb.WriteString("|---|----------|---------|----------|-------|--------|-------|------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.2f | %.1f | %d | %s |\n",
			row.Rank, row.Platform, escapeCell(displayName(row)), escapeCell(row.Category),
			row.Price, row.Rating, row.SalesVolume, value(row)))
	}
	sb.WriteString("\n")
}

func displayName(row RankingRow) string {
	if row.Name != "" {
		return row.Name
	}
	return row.ProductID
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
