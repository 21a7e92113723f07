package dataset

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const households = "Household,Location,Consumption\n" +
	"H1,Leeds,10\n" +
	"H2,York,20\n" +
	"H3,Hull,30\n"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
		columns []string
		rows    int
	}{
		{
			name:    "header and rows",
			input:   []byte(households),
			columns: []string{"Household", "Location", "Consumption"},
			rows:    3,
		},
		{
			name:    "column names kept exactly",
			input:   []byte(" Monthly Consumption (kWh),CO2 Offset (kg) \n1,2\n"),
			columns: []string{" Monthly Consumption (kWh)", "CO2 Offset (kg) "},
			rows:    1,
		},
		{
			name:    "header only",
			input:   []byte("Location,Consumption\n"),
			columns: []string{"Location", "Consumption"},
			rows:    0,
		},
		{
			name:    "utf-8 bom stripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, []byte("Location,Consumption\nLeeds,1\n")...),
			columns: []string{"Location", "Consumption"},
			rows:    1,
		},
		{
			name:    "utf-16 little endian with bom",
			input:   []byte{0xFF, 0xFE, 'A', 0, ',', 0, 'B', 0, '\n', 0, '1', 0, ',', 0, '2', 0, '\n', 0},
			columns: []string{"A", "B"},
			rows:    1,
		},
		{name: "empty input", input: []byte{}, wantErr: true},
		{name: "invalid utf-8", input: []byte{0xC3, 0x28, ',', 'a', '\n'}, wantErr: true},
		{name: "binary data", input: []byte("PK\x03\x04\x00\x00"), wantErr: true},
		{name: "ragged rows", input: []byte("a,b\n1,2,3\n"), wantErr: true},
		{name: "bare quote", input: []byte("a,b\n1,\"x\"y\n"), wantErr: true},
		{name: "duplicate header", input: []byte("a,a\n1,2\n"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsParseError(err), "expected *ParseError, got %T", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.columns, ds.Columns())
			assert.Equal(t, tt.rows, ds.Len())
		})
	}
}

func TestParse_RaggedRowReportsLine(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n3\n"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

func TestDataset_Floats(t *testing.T) {
	ds, err := Parse([]byte("Location,Consumption\nLeeds, 10.5 \nYork,-3\nHull,0\n"))
	require.NoError(t, err)

	values, err := ds.Floats("Consumption")
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, -3, 0}, values)

	_, err = ds.Floats("consumption")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDataset_FloatsRejectsBadCells(t *testing.T) {
	for _, cell := range []string{"", "abc", "NaN", "Inf", "1,5"} {
		t.Run(cell, func(t *testing.T) {
			ds, err := Parse([]byte("Consumption\n1\n\"" + strings.ReplaceAll(cell, `"`, `""`) + "\"\n"))
			require.NoError(t, err)

			_, err = ds.Floats("Consumption")
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "Consumption", pe.Column)
			assert.Equal(t, 3, pe.Line)
		})
	}
}

func TestDataset_Strings(t *testing.T) {
	ds, err := Parse([]byte(households))
	require.NoError(t, err)

	locations, err := ds.Strings("Location")
	require.NoError(t, err)
	assert.Equal(t, []string{"Leeds", "York", "Hull"}, locations)
	assert.True(t, ds.HasColumn("Location"))
	assert.False(t, ds.HasColumn("Cluster"))
}

func TestDataset_WithColumn(t *testing.T) {
	ds, err := Parse([]byte(households))
	require.NoError(t, err)

	labeled, err := ds.WithColumn("Persona", []string{"Saver", "Moderate", "Overconsumer"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Household", "Location", "Consumption", "Persona"}, labeled.Columns())
	assert.Equal(t, []string{"H3", "Hull", "30", "Overconsumer"}, labeled.Row(2))

	// Source untouched
	assert.Equal(t, []string{"Household", "Location", "Consumption"}, ds.Columns())
	assert.Equal(t, []string{"H1", "Leeds", "10"}, ds.Row(0))

	replaced, err := labeled.WithColumn("Persona", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, replaced.Columns(), 4)
	assert.Equal(t, "b", replaced.Row(1)[3])

	_, err = ds.WithColumn("Persona", []string{"only one"})
	assert.Error(t, err)
}

func TestDataset_Page(t *testing.T) {
	input := "n\n" + strings.Repeat("x\n", 23)
	ds, err := Parse([]byte(input))
	require.NoError(t, err)

	first := ds.Page(1, 10)
	assert.Equal(t, 3, first.Pages)
	assert.Equal(t, 23, first.Total)
	assert.Len(t, first.Rows, 10)

	last := ds.Page(3, 10)
	assert.Len(t, last.Rows, 3)

	clamped := ds.Page(99, 10)
	assert.Equal(t, 3, clamped.Number)

	empty, err := Parse([]byte("n\n"))
	require.NoError(t, err)
	page := empty.Page(1, 10)
	assert.Equal(t, 1, page.Pages)
	assert.Empty(t, page.Rows)
}

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(households))

	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{name: "csv base64", uri: "data:text/csv;base64," + payload, want: households},
		{name: "excel mime type", uri: "data:application/vnd.ms-excel;base64," + payload, want: households},
		{name: "short payload", uri: "data:text/csv;base64,YSxi", want: "a,b"},
		{name: "unpadded short", uri: "data:text/csv;base64,YQ", want: "a"},
		{name: "percent encoded", uri: "data:text/csv,a%2Cb%0A1%2C2", want: "a,b\n1,2"},
		{name: "not a data uri", uri: "a,b\n1,2", wantErr: true},
		{name: "no separator", uri: "data:text/csv;base64", wantErr: true},
		{name: "bad base64", uri: "data:text/csv;base64,!!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataURI(tt.uri)
			if tt.wantErr {
				assert.True(t, IsParseError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
