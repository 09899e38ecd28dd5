package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Parsed
	}{
		{
			name: "empty input",
			text: "",
			want: []Parsed{},
		},
		{
			name: "whitespace only",
			text: "   ",
			want: []Parsed{},
		},
		{
			name: "name quantity and unit",
			text: "flour - 2 - cups, sugar - 1",
			want: []Parsed{
				{Name: "flour", Quantity: strPtr("2"), Unit: strPtr("cups")},
				{Name: "sugar", Quantity: strPtr("1")},
			},
		},
		{
			name: "no spaces around separators",
			text: "water-1-liter,salt",
			want: []Parsed{
				{Name: "water", Quantity: strPtr("1"), Unit: strPtr("liter")},
				{Name: "salt"},
			},
		},
		{
			name: "quantity kept as free text",
			text: "pepper - a pinch",
			want: []Parsed{
				{Name: "pepper", Quantity: strPtr("a pinch")},
			},
		},
		{
			name: "blank entries skipped",
			text: "eggs - 2, , milk,",
			want: []Parsed{
				{Name: "eggs", Quantity: strPtr("2")},
				{Name: "milk"},
			},
		},
		{
			name: "empty quantity reads as absent",
			text: "butter -  - tbsp",
			want: []Parsed{
				{Name: "butter", Unit: strPtr("tbsp")},
			},
		},
		{
			name: "extra fields ignored",
			text: "rice - 1 - cup - rinsed",
			want: []Parsed{
				{Name: "rice", Quantity: strPtr("1"), Unit: strPtr("cup")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMissingName(t *testing.T) {
	_, err := Parse("flour - 2, - 3 - cups")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingName)
	assert.Contains(t, err.Error(), "entry 2")
}

func TestParseIsIdempotent(t *testing.T) {
	text := "flour - 2 - cups, sugar - 1, salt"

	first, err := Parse(text)
	require.NoError(t, err)
	second, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reparsed, err := Parse(Format(first))
	require.NoError(t, err)
	assert.Equal(t, first, reparsed)
}

func TestFormat(t *testing.T) {
	parsed := []Parsed{
		{Name: "flour", Quantity: strPtr("2"), Unit: strPtr("cups")},
		{Name: "sugar", Quantity: strPtr("1")},
		{Name: "salt"},
	}
	assert.Equal(t, "flour - 2 - cups, sugar - 1, salt", Format(parsed))
	assert.Equal(t, "", Format(nil))
}
