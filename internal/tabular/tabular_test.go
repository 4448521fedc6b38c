package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSV_ThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "mapping.csv")
	header := []string{"country", "country_code", "region"}
	rows := [][]string{{"France", "FR", "Europe"}, {"Côte d'Ivoire", "CI", "Africa"}, {"Nowhere", "", ""}}

	require.NoError(t, WriteCSV(path, header, rows, WriteOptions{BOM: true}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\ufeffcountry,"))

	tbl, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, header, tbl.Header, "the BOM is not part of the first column name")
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "Côte d'Ivoire", tbl.Get(1, "country"))
	assert.Equal(t, "", tbl.Get(2, "region"))
}

func TestWriteCSV_IsByteStable(t *testing.T) {
	dir := t.TempDir()
	header := []string{"airline", "modernity_index"}
	rows := [][]string{{"AIR FRANCE", FormatFloat(0.1 + 0.2)}, {"KLM, CITYHOPPER", FormatFloat(1)}}

	a, b := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")
	require.NoError(t, WriteCSV(a, header, rows, WriteOptions{}))
	require.NoError(t, WriteCSV(b, header, rows, WriteOptions{}))

	ra, _ := os.ReadFile(a)
	rb, _ := os.ReadFile(b)
	assert.Equal(t, ra, rb)
	assert.Equal(t, "airline,modernity_index\nAIR FRANCE,0.30000000000000004\n\"KLM, CITYHOPPER\",1\n", string(ra))
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	var mf *MissingFileError
	require.True(t, errors.As(err, &mf))
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestTable_Columns(t *testing.T) {
	tbl, err := DecodeCSV("raw", strings.NewReader(" Airline_Name ,aircraft_type,country\nAir X,A320neo,France\nAir Y\n"))
	require.NoError(t, err)

	assert.NoError(t, tbl.Require("airline_name", "country"))

	err = tbl.Require("fleet_size")
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "fleet_size", mc.Column)
	assert.Equal(t, "raw", mc.Table)

	col, err := tbl.FirstOf("detailed_aircraft_type", "aircraft_type")
	require.NoError(t, err)
	assert.Equal(t, "aircraft_type", col)

	_, err = tbl.FirstOf("registration", "msn")
	assert.ErrorContains(t, err, "registration|msn")

	assert.Equal(t, "", tbl.Get(1, "country"), "short rows are padded")
}

func TestTable_Numbers(t *testing.T) {
	tbl, err := DecodeCSV("t", strings.NewReader("fleet_size,pct\n12.0,\n7,abc\n"))
	require.NoError(t, err)

	n, ok := tbl.Int(0, "fleet_size")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	assert.Nil(t, tbl.Float(0, "pct"))
	assert.Nil(t, tbl.Float(1, "pct"))
	require.NotNil(t, tbl.Float(1, "fleet_size"))
	assert.Equal(t, 7.0, *tbl.Float(1, "fleet_size"))
}

func TestTable_FloatRejectsNonFinite(t *testing.T) {
	tbl, err := DecodeCSV("t", strings.NewReader("fleet_size\nNaN\nInf\n-Inf\n+Infinity\n3.5\n"))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Nil(t, tbl.Float(i, "fleet_size"), tbl.Get(i, "fleet_size"))
	}
	require.NotNil(t, tbl.Float(4, "fleet_size"))
	assert.Equal(t, 3.5, *tbl.Float(4, "fleet_size"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.5", FormatFloat(0.5))
	assert.Equal(t, "0", FormatFloat(0))
	assert.Equal(t, "", FormatOptFloat(nil))
}

func TestReadXLSX_PrefersDataSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet(DefaultSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A1", &[]any{"airline_name", "aircraft_type", "country"}))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A2", &[]any{"Air X", "A220-300", "Suisse"}))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A3", &[]any{"Air Y", "B737 MAX 8"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"airline_name", "aircraft_type", "country"}, tbl.Header)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "A220-300", tbl.Get(0, "aircraft_type"))
	assert.Equal(t, "", tbl.Get(1, "country"))
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "dataset.xlsx"), "")
	var mf *MissingFileError
	assert.True(t, errors.As(err, &mf))
}
