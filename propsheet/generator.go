package propsheet

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FieldMapping binds a sheet column title to the template cell its value is
// written into.
type FieldMapping struct {
	Column string
	Cell   string
}

// DefaultFieldMappings mirrors the layout of the bundled schedule template.
var DefaultFieldMappings = []FieldMapping{
	{Column: "Property Address", Cell: "B3"},
	{Column: "Local authority", Cell: "B5"},
	{Column: "EPC Score ( Rd SAP)", Cell: "B6"},
	{Column: "Tenure", Cell: "B7"},
}

// CellMappings converts a column title to cell reference map into a mapping
// slice with a deterministic (cell reference) order.
func CellMappings(cells map[string]string) []FieldMapping {
	if len(cells) == 0 {
		return DefaultFieldMappings
	}
	mappings := make([]FieldMapping, 0, len(cells))
	for column, cell := range cells {
		mappings = append(mappings, FieldMapping{Column: column, Cell: cell})
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Cell < mappings[j].Cell
	})
	return mappings
}

func NewGenerator(templatePath string, outputDir string, addressColumn string, mappings []FieldMapping) *Generator {
	if addressColumn == "" {
		addressColumn = DefaultAddressColumn
	}
	if len(mappings) == 0 {
		mappings = DefaultFieldMappings
	}
	return &Generator{
		templatePath:  templatePath,
		outputDir:     outputDir,
		addressColumn: addressColumn,
		mappings:      mappings,
	}
}

type Generator struct {
	templatePath  string
	outputDir     string
	addressColumn string
	mappings      []FieldMapping
}

// Generate copies the template into a per-address folder and fills the mapped
// cells from row. Rows without a usable address are skipped and return an
// empty path with no error. Repeated calls for the same address overwrite the
// previous file.
func (g *Generator) Generate(row RowValues) (string, error) {
	address := row.Text(g.addressColumn)
	if address == "" {
		return "", nil
	}
	if !safeAddress(address) {
		slog.Warn("skipping row with path-unsafe address", slog.String("address", address))
		return "", nil
	}

	dir := filepath.Join(g.outputDir, address)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create property folder: %w", err)
	}

	path := filepath.Join(dir, address+".xlsx")
	if err := copyFile(g.templatePath, path); err != nil {
		return "", fmt.Errorf("failed to copy template: %w", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open generated file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	sheet := file.GetSheetName(file.GetActiveSheetIndex())
	for _, mapping := range g.mappings {
		value, ok := row[mapping.Column]
		if !ok || value == nil || value == "" {
			continue
		}
		if err = file.SetCellValue(sheet, mapping.Cell, value); err != nil {
			return "", fmt.Errorf("failed to set cell %s: %w", mapping.Cell, err)
		}
	}

	if err = file.Save(); err != nil {
		return "", fmt.Errorf("failed to save generated file: %w", err)
	}
	return path, nil
}

// safeAddress rejects addresses that would escape the output directory when
// used as a folder name.
func safeAddress(address string) bool {
	if address == "." || address == ".." {
		return false
	}
	return !strings.ContainsAny(address, `/\`)
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
