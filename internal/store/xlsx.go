package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// SheetName is the worksheet that holds the leads.
const SheetName = "Leads"

// DateLayout is how DateAdded is written to the workbook.
const DateLayout = "02.01.2006, 15:04:05"

var columns = []struct {
	header string
	width  float64
}{
	{"Имя компании", 30},
	{"Телефон", 20},
	{"Категория", 20},
	{"Канал/Группа", 25},
	{"Ссылка на сообщение", 50},
	{"Оригинальное сообщение", 60},
	{"Дата добавления", 25},
}

// XLSXStore keeps leads in a single workbook. Every append rewrites the
// file through a temp file and rename, so a crash never leaves it half
// written.
type XLSXStore struct {
	path string
	mu   sync.Mutex
}

// NewXLSX returns a store backed by the workbook at path. The file is
// created on first write.
func NewXLSX(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

// Migrate creates the workbook with its header row when it does not exist.
func (s *XLSXStore) Migrate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.exists()
	if err != nil || ok {
		return err
	}
	f, _, err := s.open()
	if err != nil {
		return err
	}
	zap.L().Info("created leads workbook", zap.String("path", s.path))
	return s.save(f)
}

func (s *XLSXStore) Close() error { return nil }

func (s *XLSXStore) AppendLead(_ context.Context, l model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return err
	}
	addLeadRow(sheet, l)
	return s.save(f)
}

func (s *XLSXStore) ImportLeads(_ context.Context, leads []model.Lead) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.open()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, l := range readLeads(sheet) {
		seen[l.Key()] = struct{}{}
	}
	fresh := newLeads(leads, seen)
	if len(fresh) == 0 {
		return 0, nil
	}
	for _, l := range fresh {
		addLeadRow(sheet, l)
	}
	if err := s.save(f); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// LoadLeads reads every data row. Rows without a name or phone are skipped.
// A missing workbook holds no leads.
func (s *XLSXStore) LoadLeads(_ context.Context) ([]model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.exists()
	if err != nil || !ok {
		return nil, err
	}
	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", s.path)
	}
	sheet, ok := f.Sheet[SheetName]
	if !ok {
		return nil, nil
	}
	return readLeads(sheet), nil
}

// CountLeads returns the number of data rows, header excluded.
func (s *XLSXStore) CountLeads(ctx context.Context) (int, error) {
	leads, err := s.LoadLeads(ctx)
	return len(leads), err
}

// open loads the workbook, or starts a new one when the file is missing.
// The leads sheet is added if absent.
func (s *XLSXStore) open() (*xlsx.File, *xlsx.Sheet, error) {
	ok, err := s.exists()
	if err != nil {
		return nil, nil, err
	}
	f := xlsx.NewFile()
	if ok {
		if f, err = xlsx.OpenFile(s.path); err != nil {
			return nil, nil, eris.Wrapf(err, "xlsx: open %s", s.path)
		}
	}

	if sheet, ok := f.Sheet[SheetName]; ok {
		return f, sheet, nil
	}
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: add sheet")
	}
	addHeaderRow(sheet)
	return f, sheet, nil
}

func (s *XLSXStore) exists() (bool, error) {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, eris.Wrapf(err, "xlsx: stat %s", s.path)
	}
}

func (s *XLSXStore) save(f *xlsx.File) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "xlsx: create dir %s", dir)
		}
	}
	tmp := s.path + ".tmp"
	if err := f.Save(tmp); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return eris.Wrapf(err, "xlsx: save %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrapf(err, "xlsx: rename to %s", s.path)
	}
	return nil
}

func addHeaderRow(sheet *xlsx.Sheet) {
	style := xlsx.NewStyle()
	style.Font.Bold = true
	style.ApplyFont = true

	row := sheet.AddRow()
	for i, col := range columns {
		cell := row.AddCell()
		cell.SetString(col.header)
		cell.SetStyle(style)
		sheet.SetColWidth(i, i, col.width) //nolint:errcheck
	}
}

func addLeadRow(sheet *xlsx.Sheet, l model.Lead) {
	row := sheet.AddRow()
	for _, v := range []string{
		l.Name,
		l.Phone,
		l.Category,
		l.Channel,
		l.MessageLink,
		l.OriginalMessage,
		l.DateAdded.Local().Format(DateLayout),
	} {
		row.AddCell().SetString(v)
	}
}

func readLeads(sheet *xlsx.Sheet) []model.Lead {
	var leads []model.Lead
	for i, row := range sheet.Rows {
		if i == 0 || row == nil {
			continue
		}
		cells := make([]string, len(columns))
		for j := 0; j < len(columns) && j < len(row.Cells); j++ {
			cells[j] = strings.TrimSpace(row.Cells[j].String())
		}
		if cells[0] == "" || cells[1] == "" {
			continue
		}
		l := model.Lead{
			Name:            cells[0],
			Phone:           cells[1],
			Category:        cells[2],
			Channel:         cells[3],
			MessageLink:     cells[4],
			OriginalMessage: cells[5],
		}
		if t, err := time.ParseInLocation(DateLayout, cells[6], time.Local); err == nil {
			l.DateAdded = t
		}
		leads = append(leads, l)
	}
	return leads
}
