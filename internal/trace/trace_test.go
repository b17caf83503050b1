package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldmeasure/fieldpatch/internal/area"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parkingLotLines = `# Linnanmaa parking lot
25.45756870519559,65.05334320638865
25.45989149809213,65.05376177921661
25.459194123831278,65.05440433228317

25.4590,65.0550
pop
25.45691961071701,65.05405364503399
`

func TestParse_Lines(t *testing.T) {
	ops, err := Parse(strings.NewReader(parkingLotLines))
	require.NoError(t, err)
	require.Len(t, ops, 6)

	assert.Equal(t, OpPush, ops[0].Kind)
	assert.Equal(t, 2, ops[0].Line)
	assert.Equal(t, geo.GeoPoint{Latitude: 65.05334320638865, Longitude: 25.45756870519559}, ops[0].Point)
	assert.Equal(t, OpPop, ops[4].Kind)
	assert.Equal(t, 7, ops[4].Line)
	assert.Equal(t, OpPush, ops[5].Kind)
}

func TestParse_Polyline(t *testing.T) {
	ops, err := Parse(strings.NewReader("  [[25.1,65.1],[25.2,65.2],[25.3,65.3]]\n"))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	for _, op := range ops {
		assert.Equal(t, OpPush, op.Kind)
		assert.Equal(t, 0, op.Line)
	}
	assert.Equal(t, geo.GeoPoint{Latitude: 65.3, Longitude: 25.3}, ops[2].Point)
}

func TestParse_Keywords(t *testing.T) {
	ops, err := Parse(strings.NewReader("25,65\nPOP\n  Clear  \n"))
	require.NoError(t, err)

	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []OpKind{OpPush, OpPop, OpClear}, kinds)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{name: "empty", input: "", wantErr: ErrEmptyTrace},
		{name: "only comments", input: "# nothing\n\n# here\n", wantErr: ErrEmptyTrace},
		{name: "empty polyline", input: "[]", wantErr: ErrEmptyTrace},
		{name: "bad coordinate", input: "25,65\nnorth,65\n", wantErr: geo.ErrInvalidCoordinates, wantMsg: "line 2"},
		{name: "unknown keyword", input: "undo\n", wantErr: geo.ErrInvalidCoordinates, wantMsg: "line 1"},
		{name: "broken json", input: "[[25,65]", wantMsg: "failed to parse polyline JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.trace")
	require.NoError(t, os.WriteFile(path, []byte(parkingLotLines), 0644))

	ops, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, ops, 6)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.trace"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReplay(t *testing.T) {
	ops, err := Parse(strings.NewReader(parkingLotLines))
	require.NoError(t, err)

	e := area.NewEngine(area.DefaultOptions())
	Replay(ops, e)

	assert.Equal(t, 4, e.Len())
	assert.NoError(t, e.Err())
	assert.InDelta(t, 9428.68, e.Area().Sqm, 0.5)
	assert.Equal(t, Points(ops), e.Points())
}

func TestReplay_PopOnEmptyIsIgnored(t *testing.T) {
	ops, err := Parse(strings.NewReader("pop\n25,65\nclear\npop\n25.1,65.1\n"))
	require.NoError(t, err)

	e := area.NewEngine(area.DefaultOptions())
	Replay(ops, e)

	assert.Equal(t, []geo.GeoPoint{{Latitude: 65.1, Longitude: 25.1}}, e.Points())
	assert.Equal(t, e.Points(), Points(ops))
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "push", OpPush.String())
	assert.Equal(t, "pop", OpPop.String())
	assert.Equal(t, "clear", OpClear.String())
	assert.Equal(t, "OpKind(7)", OpKind(7).String())
}
