package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// MenuItemRow is the flat export layout of a menu item.
type MenuItemRow struct {
	Name        string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category    string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price       float64 `parquet:"name=price, type=DOUBLE"`
	Description string  `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	DietaryInfo string  `parquet:"name=dietary_info, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsAvailable bool    `parquet:"name=is_available, type=BOOLEAN"`
	Rating      float64 `parquet:"name=rating, type=DOUBLE"`
	ReviewCount int32   `parquet:"name=review_count, type=INT32"`
}

var menuItemHeader = []string{"name", "category", "price", "description", "dietary_info", "is_available", "rating", "review_count"}

func NewMenuItemRow(item *models.MenuItem) MenuItemRow {
	tags := make([]string, len(item.DietaryTags))
	for i, t := range item.DietaryTags {
		tags[i] = string(t)
	}
	return MenuItemRow{
		Name:        item.Name,
		Category:    string(item.Category),
		Price:       item.Price,
		Description: item.Description,
		DietaryInfo: strings.Join(tags, ";"),
		IsAvailable: item.IsAvailable,
		Rating:      item.Rating,
		ReviewCount: int32(item.ReviewCount),
	}
}

// ExportCSV writes one row per item, in the order given, after a header row.
func ExportCSV(w io.Writer, items []*models.MenuItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(menuItemHeader); err != nil {
		return err
	}
	for _, item := range items {
		row := NewMenuItemRow(item)
		if err := cw.Write([]string{
			row.Name,
			row.Category,
			strconv.FormatFloat(row.Price, 'f', 2, 64),
			row.Description,
			row.DietaryInfo,
			strconv.FormatBool(row.IsAvailable),
			strconv.FormatFloat(row.Rating, 'f', 2, 64),
			strconv.Itoa(int(row.ReviewCount)),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportParquet writes items to fw and closes it.
func ExportParquet(fw source.ParquetFile, items []*models.MenuItem) error {
	pw, err := writer.NewParquetWriter(fw, new(MenuItemRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, item := range items {
		if err := pw.Write(NewMenuItemRow(item)); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write %s: %w", item.Name, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return fw.Close()
}
