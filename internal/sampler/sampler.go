// Package sampler draws independent synthetic UPI transactions.
//
// Every record is drawn from one seeded *rand.Rand in a fixed order, so the
// same seed, anchor and count always produce the same rows. The sampler has
// no memory across records; cross-record patterns are added afterwards by
// the injector.
package sampler

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"lumina/upi-synth/internal/domain"
)

// Amount shaping constants.
const (
	avgFloor = 1000.0 // every user average starts here
	avgScale = 9000.0 // exponential scale on top of the floor

	legitMin = 10.0
	legitMax = 100000.0

	frequentContactProb = 0.8
)

var micropayAmounts = []int64{1, 2, 5, 10}

// Options configures a Sampler.
type Options struct {
	Seed      int64
	FraudRate float64   // probability in [0,1]
	Anchor    time.Time // end of the history window; zero means time.Now()
}

// Sampler generates transactions. It is not safe for concurrent use.
type Sampler struct {
	rng       *rand.Rand
	fraudRate float64
	start     time.Time
	next      int
}

// New creates a sampler seeded from opts.
func New(opts Options) *Sampler {
	anchor := opts.Anchor
	if anchor.IsZero() {
		anchor = time.Now()
	}
	return &Sampler{
		rng:       rand.New(rand.NewSource(opts.Seed)),
		fraudRate: opts.FraudRate,
		start:     anchor.Add(-domain.HistoryWindow),
	}
}

// Generate returns exactly n records in generation order. Transaction IDs
// continue from the previous call on the same sampler.
func (s *Sampler) Generate(n int) []domain.Transaction {
	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.one())
	}
	return out
}

// one draws a single record. The draw order is part of the output contract:
// changing it changes every dataset produced for a given seed.
func (s *Sampler) one() domain.Transaction {
	userID := domain.UserID(1 + s.rng.Intn(domain.UserPoolSize))
	offset := time.Duration(s.rng.Float64() * float64(domain.HistoryWindow))
	ts := s.start.Add(offset).Truncate(time.Microsecond)

	isFraud := s.rng.Float64() < s.fraudRate

	// Resampled for every record, so a user's "average" drifts between rows.
	userAvg := avgFloor + s.rng.ExpFloat64()*avgScale

	var (
		amount    float64
		recipient string
		fraudType = domain.Legitimate
	)
	if isFraud {
		fraudType = domain.Archetypes[s.rng.Intn(len(domain.Archetypes))]
		amount = s.fraudAmount(fraudType, userAvg)
		recipient = domain.RecipientID(1 + s.rng.Intn(domain.RecipientPoolSize))
	} else {
		amount = s.legitAmount(userAvg)
		recipient = s.legitRecipient()
	}

	tx := domain.Transaction{
		TransactionID:   domain.TransactionID(s.next),
		UserID:          userID,
		Timestamp:       ts,
		Amount:          roundTo2(amount),
		RecipientID:     recipient,
		TransactionType: domain.TransactionTypes[s.rng.Intn(len(domain.TransactionTypes))],
		DeviceID:        domain.DeviceID(userID),
		Location:        domain.Locations[s.rng.Intn(len(domain.Locations))],
		IsFraud:         isFraud,
		FraudType:       fraudType,
	}
	s.next++
	return tx
}

// ─── Fraud archetypes ─────────────────────────────────────────────────────────

func (s *Sampler) fraudAmount(archetype string, userAvg float64) float64 {
	switch archetype {
	case domain.FraudMicropayScam:
		return float64(micropayAmounts[s.rng.Intn(len(micropayAmounts))])
	case domain.FraudVelocityAttack:
		return s.uniform(5000, 50000)
	case domain.FraudNewRecipient:
		return userAvg * s.uniform(3, 10)
	default: // domain.FraudFakeRefund
		return s.uniform(1000, 20000)
	}
}

// ─── Legitimate traffic ───────────────────────────────────────────────────────

func (s *Sampler) legitAmount(userAvg float64) float64 {
	amount := userAvg + s.rng.NormFloat64()*(userAvg/3)
	if amount < legitMin {
		amount = legitMin
	}
	if amount > legitMax {
		amount = legitMax
	}
	return amount
}

// legitRecipient favours the frequent-contacts sub-pool.
func (s *Sampler) legitRecipient() string {
	if s.rng.Float64() < frequentContactProb {
		return domain.RecipientID(1 + s.rng.Intn(domain.FrequentContacts))
	}
	return domain.RecipientID(1 + s.rng.Intn(domain.RecipientPoolSize))
}

// ─── Utilities ────────────────────────────────────────────────────────────────

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func roundTo2(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
