package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"cep_lookup/platform/logger"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func newStore(t *testing.T, base [][]interface{}, user [][]interface{}) (*SpreadsheetStore, string) {
	t.Helper()
	dir := t.TempDir()
	basePath := filepath.Join(dir, "cep.xlsx")
	userPath := filepath.Join(dir, "user_ceps.xlsx")
	writeWorkbook(t, basePath, base)
	if user != nil {
		writeWorkbook(t, userPath, user)
	}

	s, err := NewSpreadsheetStore(context.Background(), basePath, userPath, logger.Discard())
	if err != nil {
		t.Fatalf("NewSpreadsheetStore: %v", err)
	}
	return s, userPath
}

func TestSpreadsheetFindIgnoresAccentsAndCase(t *testing.T) {
	s, _ := newStore(t, [][]interface{}{
		{"Cidade", "Estado", "CEP"},
		{"São Paulo", "SP", "01001-000"},
	}, nil)

	e, err := s.Find(context.Background(), "  sao   paulo ", "sp")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if e.Code != "01001-000" || e.Source != SourceBase {
		t.Fatalf("unexpected entry %+v", e)
	}

	if _, err := s.Find(context.Background(), "Nowhere", "ZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSpreadsheetBaseWinsOverUser(t *testing.T) {
	s, _ := newStore(t,
		[][]interface{}{{"City", "State", "PostalCode"}, {"Springfield", "IL", "62701"}},
		[][]interface{}{{"Cidade", "Estado", "CEP"}, {"Springfield", "IL", "99999"}, {"Chicago", "IL", "60601"}},
	)

	e, err := s.Find(context.Background(), "Springfield", "IL")
	if err != nil || e.Code != "62701" {
		t.Fatalf("expected base entry, got %+v, %v", e, err)
	}
	e, err = s.Find(context.Background(), "Chicago", "IL")
	if err != nil || e.Code != "60601" || e.Source != SourceUser {
		t.Fatalf("expected user entry, got %+v, %v", e, err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", s.Len())
	}
}

func TestSpreadsheetAddPersistsToUserWorkbook(t *testing.T) {
	s, userPath := newStore(t, [][]interface{}{{"Cidade", "UF", "CEP"}}, nil)

	persisted, err := s.Add(context.Background(), Entry{City: "Nowhere", Region: "ZZ", Code: "12345-678"})
	if err != nil || !persisted {
		t.Fatalf("expected persisted add, got %v, %v", persisted, err)
	}

	e, err := s.Find(context.Background(), "nowhere", "zz")
	if err != nil || e.Code != "12345-678" {
		t.Fatalf("expected indexed entry, got %+v, %v", e, err)
	}

	entries, err := ReadWorkbook(userPath, SourceUser)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(entries) != 1 || entries[0].Code != "12345-678" {
		t.Fatalf("unexpected user workbook %+v", entries)
	}

	if _, err := s.Add(context.Background(), Entry{City: "Elsewhere", Region: "ZZ", Code: "1"}); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	entries, _ = ReadWorkbook(userPath, SourceUser)
	if len(entries) != 2 {
		t.Fatalf("expected appended row, got %+v", entries)
	}
}

func TestSpreadsheetAddKeepsEntryWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "cep.xlsx")
	writeWorkbook(t, basePath, [][]interface{}{{"Cidade", "Estado", "CEP"}})

	// A directory where the workbook should be makes every save fail.
	userPath := filepath.Join(dir, "user_ceps.xlsx")
	if err := os.Mkdir(userPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	s := &SpreadsheetStore{user: NewUserWorkbook(userPath), log: logger.Discard(), index: map[string]Entry{}}

	persisted, err := s.Add(context.Background(), Entry{City: "Nowhere", Region: "ZZ", Code: "00000"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if persisted {
		t.Fatalf("expected in-memory only add")
	}
	if _, err := s.Find(context.Background(), "Nowhere", "ZZ"); err != nil {
		t.Fatalf("expected entry in memory, got %v", err)
	}
}

func TestSpreadsheetMissingBaseFails(t *testing.T) {
	_, err := NewSpreadsheetStore(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "", logger.Discard())
	if err == nil {
		t.Fatalf("expected error for missing base workbook")
	}
}

func TestReadWorkbookRejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	writeWorkbook(t, path, [][]interface{}{{"Cidade", "CEP"}, {"Campinas", "13010-000"}})

	_, err := ReadWorkbook(path, SourceBase)
	if err == nil || !strings.Contains(err.Error(), "region") {
		t.Fatalf("expected missing region column error, got %v", err)
	}
}

func TestReadWorkbookSkipsIncompleteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"CEP", "Cidade", "Estado"},
		{"13010-000", "Campinas", "SP"},
		{"", "Blank", "SP"},
	})

	entries, err := ReadWorkbook(path, SourceBase)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(entries) != 1 || entries[0].City != "Campinas" || entries[0].Code != "13010-000" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
