package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadscout/internal/model"
)

func newTestXLSXStore(t *testing.T) (*XLSXStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	return NewXLSX(path), path
}

func TestXLSX_LoadMissingFile(t *testing.T) {
	st, _ := newTestXLSXStore(t)

	leads, err := st.LoadLeads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)

	n, err := st.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestXLSX_MigrateWritesHeader(t *testing.T) {
	st, path := newTestXLSXStore(t)
	require.NoError(t, st.Migrate(context.Background()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 1)

	var headers []string
	for _, c := range sheet.Rows[0].Cells {
		headers = append(headers, c.String())
	}
	assert.Equal(t, []string{
		"Имя компании", "Телефон", "Категория", "Канал/Группа",
		"Ссылка на сообщение", "Оригинальное сообщение", "Дата добавления",
	}, headers)

	// Migrate on an existing workbook leaves it alone.
	require.NoError(t, st.AppendLead(context.Background(), sampleLead("OKEY", "+998901194777")))
	require.NoError(t, st.Migrate(context.Background()))
	n, err := st.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestXLSX_AppendAndLoad(t *testing.T) {
	st, path := newTestXLSXStore(t)
	ctx := context.Background()

	first := sampleLead("OKEY", "+998901194777")
	second := sampleLead("Korzinka", "+998712000000")
	require.NoError(t, st.AppendLead(ctx, first))
	require.NoError(t, st.AppendLead(ctx, second))

	leads, err := st.LoadLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, first.Name, leads[0].Name)
	assert.Equal(t, first.Phone, leads[0].Phone)
	assert.Equal(t, first.MessageLink, leads[0].MessageLink)
	assert.True(t, first.DateAdded.Equal(leads[0].DateAdded))
	assert.Equal(t, "Korzinka", leads[1].Name)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "14.03.2025, 09:26:53", f.Sheet[SheetName].Rows[1].Cells[6].String())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestXLSX_LoadSkipsIncompleteRows(t *testing.T) {
	st, path := newTestXLSXStore(t)
	ctx := context.Background()
	require.NoError(t, st.AppendLead(ctx, sampleLead("OKEY", "+998901194777")))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheet[SheetName]
	row := sheet.AddRow()
	row.AddCell().SetString("No Phone Inc")
	row.AddCell().SetString("")
	row = sheet.AddRow()
	row.AddCell().SetString("Short Row")
	row.AddCell().SetString("+998900000000")
	require.NoError(t, f.Save(path))

	leads, err := st.LoadLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Short Row", leads[1].Name)
	assert.Empty(t, leads[1].Category)
	assert.True(t, leads[1].DateAdded.IsZero())
}

func TestXLSX_ImportSkipsKnownKeys(t *testing.T) {
	st, _ := newTestXLSXStore(t)
	ctx := context.Background()
	require.NoError(t, st.AppendLead(ctx, sampleLead("OKEY", "+998901194777")))

	n, err := st.ImportLeads(ctx, []model.Lead{
		sampleLead(" okey", "+998901194777 "),
		sampleLead("Korzinka", "+998712000000"),
		sampleLead("korzinka", "+998712000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := st.CountLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestXLSX_CorruptFile(t *testing.T) {
	st, path := newTestXLSXStore(t)
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	err := st.AppendLead(context.Background(), sampleLead("OKEY", "+998901194777"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open")

	// The unreadable file is left in place.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not a workbook", string(data))
}
