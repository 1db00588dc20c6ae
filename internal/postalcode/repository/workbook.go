package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Column header aliases, compared case-insensitively.
var (
	cityHeaders   = []string{"cidade", "city"}
	regionHeaders = []string{"estado", "state", "uf", "region"}
	codeHeaders   = []string{"cep", "postalcode", "code"}
)

// userHeaders is the header row written to new user workbooks.
var userHeaders = []interface{}{"Cidade", "Estado", "CEP"}

// ReadWorkbook loads every entry from the first sheet of an xlsx file.
// A missing file yields fs.ErrNotExist.
func ReadWorkbook(path, source string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cityCol, regionCol, codeCol, err := headerColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := Entry{
			City:   cell(row, cityCol),
			Region: cell(row, regionCol),
			Code:   cell(row, codeCol),
			Source: source,
		}
		if e.City == "" || e.Region == "" || e.Code == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func headerColumns(header []string) (city, region, code int, err error) {
	city, region, code = -1, -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case city < 0 && contains(cityHeaders, name):
			city = i
		case region < 0 && contains(regionHeaders, name):
			region = i
		case code < 0 && contains(codeHeaders, name):
			code = i
		}
	}

	var missing []string
	if city < 0 {
		missing = append(missing, "city")
	}
	if region < 0 {
		missing = append(missing, "region")
	}
	if code < 0 {
		missing = append(missing, "postal code")
	}
	if len(missing) > 0 {
		return 0, 0, 0, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return city, region, code, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// UserWorkbook appends user-supplied entries to an xlsx file, creating it
// on first write.
type UserWorkbook struct {
	path string
	mu   sync.Mutex
}

// NewUserWorkbook returns a writer for path.
func NewUserWorkbook(path string) *UserWorkbook {
	return &UserWorkbook{path: path}
}

// Path returns the workbook location.
func (w *UserWorkbook) Path() string {
	return w.path
}

// Append writes e as the last row of the first sheet.
func (w *UserWorkbook) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, sheet, next, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	cellName, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cellName, &[]interface{}{e.City, e.Region, e.Code}); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

// open returns the workbook, its first sheet and the next free row.
func (w *UserWorkbook) open() (*excelize.File, string, int, error) {
	f, err := excelize.OpenFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		f = excelize.NewFile()
		sheet := f.GetSheetName(0)
		if err := f.SetSheetRow(sheet, "A1", &userHeaders); err != nil {
			_ = f.Close()
			return nil, "", 0, err
		}
		return f, sheet, 2, nil
	}
	if err != nil {
		return nil, "", 0, fmt.Errorf("open workbook %s: %w", w.path, err)
	}

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, "", 0, fmt.Errorf("read rows of %s: %w", w.path, err)
	}
	if len(rows) == 0 {
		if err := f.SetSheetRow(sheet, "A1", &userHeaders); err != nil {
			_ = f.Close()
			return nil, "", 0, err
		}
		return f, sheet, 2, nil
	}
	return f, sheet, len(rows) + 1, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
