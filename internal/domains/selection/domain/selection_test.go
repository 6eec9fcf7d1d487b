package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

func TestWithValue_KeepsBoundedMostRecentFirstHistory(t *testing.T) {
	now := time.Now()
	rec := Record{Key: KeyRegion}
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "c"} {
		rec = rec.WithValue(v, now)
	}
	assert.Equal(t, "c", rec.Value)
	assert.Equal(t, []string{"c", "f", "e", "d", "b"}, rec.Recent)
}

func TestWithValue_ClearKeepsHistoryAndDoesNotAlias(t *testing.T) {
	rec := Record{Key: KeyProducer}.WithValue("Pfizer", time.Now())
	cleared := rec.WithValue("", time.Now())
	assert.False(t, cleared.IsSet())
	assert.Equal(t, []string{"Pfizer"}, cleared.Recent)

	cleared.Recent[0] = "changed"
	assert.Equal(t, "Pfizer", rec.Recent[0])
}

func TestNormalize(t *testing.T) {
	v, err := Normalize(KeyRegion, " mazowieckie ")
	require.NoError(t, err)
	assert.Equal(t, "Mazowieckie", v)

	v, err = Normalize(KeyProducer, "johnson & johnson")
	require.NoError(t, err)
	assert.Equal(t, "Johnson & Johnson", v)

	v, err = Normalize(KeyRegion, "")
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = Normalize(KeyRegion, "Bavaria")
	assert.ErrorIs(t, err, orderdomain.ErrUnknownRegion)
	_, err = Normalize(KeyProducer, "Acme")
	assert.ErrorIs(t, err, capdomain.ErrUnknownProducer)
	_, err = Normalize(Key("theme"), "dark")
	assert.ErrorIs(t, err, ErrUnknownKey)
}
