package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderCSV renders ranking rows as CSV string.
func RenderCSV(rows []RankingRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	w.Write([]string{
		"rank", "platform", "product_id", "name", "category",
		"price", "rating", "sales_volume", "popularity_score",
		"growth_rate", "value_score",
	})

	// Rows
	for _, r := range rows {
		w.Write([]string{
			strconv.Itoa(r.Rank),
			r.Platform,
			r.ProductID,
			r.Name,
			r.Category,
			formatFloat(r.Price),
			formatFloat(r.Rating),
			strconv.FormatInt(r.SalesVolume, 10),
			formatFloat(r.Popularity),
			formatOptional(r.GrowthRate),
			formatOptional(r.ValueScore),
		})
	}

	w.Flush()
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
