package money

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FromString_ParsesValidAmounts(t *testing.T) {
	m, err := FromString("150000")
	require.NoError(t, err)
	assert.True(t, m.Equal(FromInt(150000)))

	m, err = FromString(" 99.5 ")
	require.NoError(t, err)
	assert.Equal(t, "99.5", m.Decimal().String())
}

func Test_FromString_RejectsGarbage(t *testing.T) {
	_, err := FromString("seratus ribu")
	assert.Error(t, err)
}

func Test_Arithmetic_KeepsDecimalPrecision(t *testing.T) {
	// 10% off 100000, then 5% off the remainder: exact until rounded.
	m := FromInt(100000)
	m = m.Sub(m.Percent(decimal.NewFromInt(10)))
	m = m.Sub(m.Percent(decimal.NewFromInt(5)))

	assert.Equal(t, "85500", m.Decimal().String())
}

func Test_Percent_OfOddAmountIsUnrounded(t *testing.T) {
	m := FromInt(99999).Percent(decimal.NewFromInt(10))
	assert.Equal(t, "9999.9", m.Decimal().String())
}

func Test_Round_HalfUpToWholeRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100.4", "100"},
		{"100.5", "101"},
		{"100.6", "101"},
		{"0.5", "1"},
		{"0", "0"},
	}

	for _, tt := range tests {
		m, err := FromString(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Round().Decimal().String(), "rounding %s", tt.in)
	}
}

func Test_ClampZero_FloorsNegativeAmounts(t *testing.T) {
	assert.True(t, FromInt(-500).ClampZero().IsZero())
	assert.True(t, FromInt(500).ClampZero().Equal(FromInt(500)))
}

func Test_Min_PicksSmallerAmount(t *testing.T) {
	a := FromInt(150000)
	b := FromInt(200000)
	assert.True(t, a.Min(b).Equal(a))
	assert.True(t, b.Min(a).Equal(a))
}

func Test_ZeroValue_IsReadyToUse(t *testing.T) {
	var m Money
	assert.True(t, m.IsZero())
	assert.True(t, m.Add(FromInt(100)).Equal(FromInt(100)))
}

func Test_JSON_RoundTripsAsDecimalString(t *testing.T) {
	m := FromInt(125000)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"125000"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(m))
}

func Test_JSON_AcceptsBareNumbers(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`125000.75`), &m))
	assert.Equal(t, "125000.75", m.Decimal().String())
}

func Test_JSON_RejectsNonNumericStrings(t *testing.T) {
	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"gratis"`), &m))
}
