package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ngn(t *testing.T, amount string) Money {
	t.Helper()
	m, err := NewMoneyFromString(amount, "NGN")
	require.NoError(t, err)
	return m
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	naira := ngn(t, "100.00")
	euro, err := NewMoneyFromString("100.00", "EUR")
	require.NoError(t, err)

	t.Run("add", func(t *testing.T) {
		_, err := naira.Add(euro)
		var mismatch *CurrencyMismatchError
		assert.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "NGN", mismatch.Left)
		assert.Equal(t, "EUR", mismatch.Right)
	})

	t.Run("subtract", func(t *testing.T) {
		_, err := naira.Subtract(euro)
		assert.Error(t, err)
	})

	t.Run("multiply", func(t *testing.T) {
		_, err := naira.Multiply(euro)
		assert.Error(t, err)
	})

	t.Run("divide", func(t *testing.T) {
		_, err := naira.Divide(euro)
		assert.Error(t, err)
	})

	t.Run("mod", func(t *testing.T) {
		_, err := naira.Mod(euro)
		assert.Error(t, err)
	})

	t.Run("comparisons", func(t *testing.T) {
		_, err := naira.LessThan(euro)
		assert.Error(t, err)
		_, err = naira.GreaterThan(euro)
		assert.Error(t, err)
		_, err = naira.LessThanOrEqual(euro)
		assert.Error(t, err)
		_, err = naira.GreaterThanOrEqual(euro)
		assert.Error(t, err)
		_, err = naira.Equal(euro)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := ngn(t, "500.00")
	b := ngn(t, "100.50")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "NGN 600.50", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "NGN 399.50", diff.String())

	mod, err := a.Mod(ngn(t, "150.00"))
	require.NoError(t, err)
	assert.Equal(t, "NGN 50.00", mod.String())

	// Operands are unchanged.
	assert.Equal(t, "NGN 500.00", a.String())
	assert.Equal(t, "NGN 100.50", b.String())
}

func TestMoney_ScalarOperations(t *testing.T) {
	a := ngn(t, "100.00")

	doubled := a.MultiplyScalar(decimal.NewFromInt(2))
	assert.Equal(t, "NGN 200.00", doubled.String())

	halved := a.DivideScalar(decimal.NewFromInt(2))
	assert.Equal(t, "NGN 50.00", halved.String())
	assert.Equal(t, "NGN", halved.Currency())
}

func TestMoney_Comparisons(t *testing.T) {
	small := ngn(t, "99.99")
	large := ngn(t, "100.00")

	less, err := small.LessThan(large)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, greater)

	gte, err := large.GreaterThanOrEqual(ngn(t, "100.00"))
	require.NoError(t, err)
	assert.True(t, gte)

	lte, err := large.LessThanOrEqual(ngn(t, "100.00"))
	require.NoError(t, err)
	assert.True(t, lte)

	equal, err := large.Equal(ngn(t, "100.00"))
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("rejects more than two decimal places", func(t *testing.T) {
		_, err := NewMoneyFromString("100.005", "NGN")
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := NewMoneyFromString("abc", "NGN")
		assert.Error(t, err)
	})

	t.Run("accepts whole and fractional amounts", func(t *testing.T) {
		m, err := NewMoneyFromString("100", "NGN")
		require.NoError(t, err)
		assert.Equal(t, "NGN 100.00", m.String())

		m, err = NewMoneyFromString("0.01", "NGN")
		require.NoError(t, err)
		assert.True(t, m.IsPositive())
	})
}

func TestMoney_JSON(t *testing.T) {
	m := ngn(t, "1234.56")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"NGN"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	equal, err := decoded.Equal(m)
	require.NoError(t, err)
	assert.True(t, equal)

	var invalid Money
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.234","currency":"NGN"}`), &invalid))
}

func TestZeroMoney(t *testing.T) {
	zero := ZeroMoney("NGN")
	assert.False(t, zero.IsPositive())
	assert.Equal(t, "NGN 0.00", zero.String())
}
