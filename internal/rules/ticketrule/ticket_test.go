package ticketrule_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropindrop/internal/rules/ticketrule"
)

func TestIsValidTicketFormat(t *testing.T) {
	cases := map[string]bool{
		"TKT-20251015-0001":  true,
		"TKT-19991231-9999":  true,
		"TKT-2025101-0001":   false,
		"TKT-202510150-0001": false,
		"TKT-20251015-001":   false,
		"TKT-20251015-00011": false,
		"tkt-20251015-0001":  false,
		"TKX-20251015-0001":  false,
		"TKT20251015-0001":   false,
		"TKT-20251015-0001 ": false,
		" TKT-20251015-0001": false,
		"TKT-2025101a-0001":  false,
		"TKT-٢٠٢٥١٠١٥-0001":  false, // dígitos não ASCII
		"":                   false,
	}

	for code, want := range cases {
		assert.Equal(t, want, ticketrule.IsValidTicketFormat(code), "code=%q", code)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	g := &ticketrule.Generator{
		Now:      func() time.Time { return time.Date(2025, 10, 14, 23, 30, 0, 0, time.UTC) },
		Location: loc,
		Entropy:  bytes.NewReader([]byte{0x00, 0x07, 0x00, 0x07, 0x00, 0x07, 0x00, 0x07}),
	}

	code, err := g.Generate()

	require.NoError(t, err)
	assert.True(t, ticketrule.IsValidTicketFormat(code))
	// 23h30 UTC já é 15/10 em WAT
	assert.Equal(t, "TKT-20251015-", code[:13])
}

func TestGenerator_EntropyFailure(t *testing.T) {
	g := &ticketrule.Generator{Entropy: failingReader{}}

	_, err := g.Generate()

	assert.Error(t, err)
}

func TestGenerateTicketCode_MatchesFormatAndToday(t *testing.T) {
	for i := 0; i < 200; i++ {
		before := time.Now().Format("20060102")
		code := ticketrule.GenerateTicketCode()
		after := time.Now().Format("20060102")

		require.True(t, ticketrule.IsValidTicketFormat(code), code)
		date := code[4:12]
		assert.True(t, date == before || date == after, "data %s fora de [%s, %s]", date, before, after)
	}
}

func TestNewGenerator_UsesLocation(t *testing.T) {
	code, err := ticketrule.NewGenerator(time.UTC).Generate()

	require.NoError(t, err)
	assert.True(t, ticketrule.IsValidTicketFormat(code))
}

func TestTicketDate(t *testing.T) {
	d, ok := ticketrule.TicketDate("TKT-20251015-0001", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = ticketrule.TicketDate("TKT-20251340-0001", time.UTC)
	assert.False(t, ok)

	_, ok = ticketrule.TicketDate("invalido", time.UTC)
	assert.False(t, ok)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("sem entropia") }
