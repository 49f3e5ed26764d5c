package reporting

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var rankingHeader = []interface{}{
	"Rank", "Platform", "Product ID", "Name", "Category",
	"Price", "Rating", "Sales", "Popularity", "Growth %", "Value Score",
}

// RenderExcel renders the report as an xlsx workbook with one sheet per section.
func RenderExcel(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	s := r.Summary
	summaryRows := [][]interface{}{
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Platform", r.Platform},
		{"Window (days)", r.Days},
		{"Overall Direction", string(s.OverallDirection)},
		{"Overall Growth %", s.OverallGrowth},
		{"Overall Label", s.OverallLabel},
		{"Price Direction", string(s.PriceDirection)},
		{"Price Change %", s.PriceChangeRate},
		{"Narrative", s.Narrative},
	}
	if s.Error != "" {
		summaryRows = append(summaryRows, []interface{}{"Error", s.Error})
	}
	if err := writeRows(f, "Summary", summaryRows); err != nil {
		return nil, err
	}

	categories := [][]interface{}{{"Category", "Sales", "Growth %"}}
	for _, c := range r.Categories {
		categories = append(categories, []interface{}{c.Category, c.Total, c.GrowthRate})
	}
	if err := addSheet(f, "Categories", categories); err != nil {
		return nil, err
	}

	for _, section := range []struct {
		name string
		rows []RankingRow
	}{
		{"Hot", r.Hot},
		{"Rising", r.Rising},
		{"Value", r.Value},
	} {
		if err := addSheet(f, section.name, rankingSheet(section.rows)); err != nil {
			return nil, err
		}
	}

	platforms := [][]interface{}{{"Platform", "Products", "Avg Price", "Avg Rating", "Total Sales"}}
	for _, p := range r.Platforms {
		platforms = append(platforms, []interface{}{p.Platform, p.ProductCount, p.AveragePrice, p.AverageRating, p.TotalSales})
	}
	if err := addSheet(f, "Platforms", platforms); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rankingSheet(rows []RankingRow) [][]interface{} {
	out := [][]interface{}{rankingHeader}
	for _, r := range rows {
		out = append(out, []interface{}{
			r.Rank, r.Platform, r.ProductID, r.Name, r.Category,
			r.Price, r.Rating, r.SalesVolume, r.Popularity,
			cellValue(r.GrowthRate), cellValue(r.ValueScore),
		})
	}
	return out
}

func cellValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
