// Package excel handles the spreadsheet surfaces: bulk product import and
// the profit and loss export.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type ProductRow struct {
	Name            string
	SellPrice       float64
	Vendor          *string
	RackID          *string
	OpeningQuantity int
	OpeningUnitCost float64
}

var headerAliases = map[string]string{
	"name":             "name",
	"product_name":     "name",
	"product name":     "name",
	"product":          "name",
	"sell_price":       "sell_price",
	"sell price":       "sell_price",
	"price":            "sell_price",
	"vendor":           "vendor",
	"supplier":         "vendor",
	"rack_id":          "rack_id",
	"rack":             "rack_id",
	"quantity":         "quantity",
	"qty":              "quantity",
	"opening_quantity": "quantity",
	"unit_cost":        "unit_cost",
	"cost":             "unit_cost",
	"purchase_price":   "unit_cost",
}

// ParseProducts reads an xlsx sheet of products with optional opening stock.
// Name and sell_price columns are required; quantity and unit_cost seed the
// opening PURCHASE entry when present.
func ParseProducts(reader io.Reader) ([]ProductRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	if _, ok := colMap["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}
	if _, ok := colMap["sell_price"]; !ok {
		return nil, fmt.Errorf("missing required column: sell_price")
	}

	result := make([]ProductRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		sellPrice, err := parseFloat(readCell(cells, colMap["sell_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sell_price: %w", index+1, err)
		}

		row := ProductRow{Name: name, SellPrice: sellPrice}
		if col, ok := colMap["vendor"]; ok {
			if vendor := strings.TrimSpace(readCell(cells, col)); vendor != "" {
				row.Vendor = &vendor
			}
		}
		if col, ok := colMap["rack_id"]; ok {
			if rack := strings.TrimSpace(readCell(cells, col)); rack != "" {
				row.RackID = &rack
			}
		}
		if col, ok := colMap["quantity"]; ok {
			if raw := strings.TrimSpace(readCell(cells, col)); raw != "" {
				quantity, err := strconv.Atoi(raw)
				if err != nil || quantity < 0 {
					return nil, fmt.Errorf("row %d: invalid quantity %q", index+1, raw)
				}
				row.OpeningQuantity = quantity
			}
		}
		if col, ok := colMap["unit_cost"]; ok {
			if raw := strings.TrimSpace(readCell(cells, col)); raw != "" {
				cost, err := parseFloat(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid unit_cost: %w", index+1, err)
				}
				row.OpeningUnitCost = cost
			}
		}
		result = append(result, row)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no data rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for index, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := headerAliases[key]; ok {
			if _, exists := colMap[canonical]; !exists {
				colMap[canonical] = index
			}
		}
	}
	return colMap
}

func readCell(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return cells[index]
}

func parseFloat(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return value, nil
}
