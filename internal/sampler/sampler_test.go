package sampler_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/upi-synth/internal/domain"
	"lumina/upi-synth/internal/sampler"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

var anchor = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func generate(seed int64, rate float64, n int) []domain.Transaction {
	return sampler.New(sampler.Options{Seed: seed, FraudRate: rate, Anchor: anchor}).Generate(n)
}

func fraudRate(rows []domain.Transaction) float64 {
	n := 0
	for _, tx := range rows {
		if tx.IsFraud {
			n++
		}
	}
	return float64(n) / float64(len(rows))
}

func between(d decimal.Decimal, lo, hi float64) bool {
	return d.GreaterThanOrEqual(decimal.NewFromFloat(lo)) && d.LessThanOrEqual(decimal.NewFromFloat(hi))
}

// ─── Shape ────────────────────────────────────────────────────────────────────

func TestGenerate_ExactCount_UniqueIDs(t *testing.T) {
	for _, n := range []int{0, 1, 10, 2500} {
		rows := generate(42, 0.05, n)
		require.Len(t, rows, n)

		seen := make(map[string]bool, n)
		for i, tx := range rows {
			assert.Equal(t, domain.TransactionID(i), tx.TransactionID)
			assert.False(t, seen[tx.TransactionID], "duplicate %s", tx.TransactionID)
			seen[tx.TransactionID] = true
		}
	}
}

func TestGenerate_IDsContinueAcrossCalls(t *testing.T) {
	s := sampler.New(sampler.Options{Seed: 1, FraudRate: 0.1, Anchor: anchor})
	first := s.Generate(3)
	second := s.Generate(2)
	assert.Equal(t, "TXN_00000002", first[2].TransactionID)
	assert.Equal(t, "TXN_00000003", second[0].TransactionID)
}

func TestGenerate_FieldsWithinPools(t *testing.T) {
	start := anchor.Add(-domain.HistoryWindow)
	for _, tx := range generate(7, 0.3, 5000) {
		assert.True(t, tx.Amount.IsPositive(), "amount %s", tx.Amount)
		assert.True(t, strings.HasPrefix(tx.UserID, "USER_"))
		assert.True(t, strings.HasPrefix(tx.RecipientID, "RECIP_"))
		assert.Contains(t, domain.TransactionTypes, tx.TransactionType)
		assert.Contains(t, domain.Locations, tx.Location)
		assert.Equal(t, domain.DeviceID(tx.UserID), tx.DeviceID)
		assert.False(t, tx.Timestamp.Before(start), "timestamp %s before window", tx.Timestamp)
		assert.False(t, tx.Timestamp.After(anchor), "timestamp %s after anchor", tx.Timestamp)
		assert.Equal(t, tx.Amount.Round(2).String(), tx.Amount.String())
	}
}

// ─── Labels ───────────────────────────────────────────────────────────────────

func TestGenerate_LabelsConsistent(t *testing.T) {
	for _, tx := range generate(42, 0.2, 5000) {
		if tx.IsFraud {
			assert.True(t, domain.IsArchetype(tx.FraudType), "got %q", tx.FraudType)
		} else {
			assert.Equal(t, domain.Legitimate, tx.FraudType)
		}
	}
}

func TestGenerate_ZeroFraudRate_AllLegitimate(t *testing.T) {
	rows := generate(42, 0, 10)
	require.Len(t, rows, 10)
	for _, tx := range rows {
		assert.False(t, tx.IsFraud)
		assert.Equal(t, domain.Legitimate, tx.FraudType)
	}
}

func TestGenerate_FraudRateConverges(t *testing.T) {
	const rate = 0.05
	got := fraudRate(generate(42, rate, 100000))
	assert.InDelta(t, rate, got, 0.01)
}

func TestGenerate_AllArchetypesAppear(t *testing.T) {
	counts := map[string]int{}
	for _, tx := range generate(3, 1, 4000) {
		counts[tx.FraudType]++
	}
	for _, a := range domain.Archetypes {
		assert.Greater(t, counts[a], 800, a)
	}
	assert.Zero(t, counts[domain.Legitimate])
}

// ─── Amounts ──────────────────────────────────────────────────────────────────

func TestGenerate_ArchetypeAmountRanges(t *testing.T) {
	micro := map[string]bool{"1": true, "2": true, "5": true, "10": true}
	for _, tx := range generate(11, 1, 4000) {
		switch tx.FraudType {
		case domain.FraudMicropayScam:
			assert.True(t, micro[tx.Amount.String()], "micropay amount %s", tx.Amount)
		case domain.FraudVelocityAttack:
			assert.True(t, between(tx.Amount, 5000, 50000), "velocity amount %s", tx.Amount)
		case domain.FraudNewRecipient:
			// at least 3x the 1000 floor of the user average
			assert.True(t, tx.Amount.GreaterThanOrEqual(decimal.NewFromInt(3000)), "new_recipient amount %s", tx.Amount)
		case domain.FraudFakeRefund:
			assert.True(t, between(tx.Amount, 1000, 20000), "fake_refund amount %s", tx.Amount)
		}
	}
}

func TestGenerate_LegitAmountClamped(t *testing.T) {
	for _, tx := range generate(5, 0, 20000) {
		assert.True(t, between(tx.Amount, 10, 100000), "legit amount %s", tx.Amount)
	}
}

func TestGenerate_LegitPrefersFrequentContacts(t *testing.T) {
	rows := generate(9, 0, 20000)
	frequent := 0
	for _, tx := range rows {
		if tx.RecipientID <= domain.RecipientID(domain.FrequentContacts) {
			frequent++
		}
	}
	// 0.8 direct plus 0.2 * 50/500 from the full pool
	assert.InDelta(t, 0.82, float64(frequent)/float64(len(rows)), 0.02)
}

// ─── Determinism ──────────────────────────────────────────────────────────────

func TestGenerate_SameSeedSameRows(t *testing.T) {
	a := generate(42, 0.05, 3000)
	b := generate(42, 0.05, 3000)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].UserID, b[i].UserID)
		assert.Equal(t, a[i].Timestamp, b[i].Timestamp)
		assert.Equal(t, a[i].Amount.String(), b[i].Amount.String())
		assert.Equal(t, a[i].RecipientID, b[i].RecipientID)
		assert.Equal(t, a[i].FraudType, b[i].FraudType)
	}
}

func TestGenerate_DifferentSeedDifferentRows(t *testing.T) {
	a := generate(1, 0.05, 50)
	b := generate(2, 0.05, 50)
	same := 0
	for i := range a {
		if a[i].UserID == b[i].UserID && a[i].Amount.Equal(b[i].Amount) {
			same++
		}
	}
	assert.Less(t, same, 5)
}
