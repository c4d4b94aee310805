// Package domain contains all core types used across the generator.
// Keeping the record layout and the fixed pools in one place makes the
// sampling and relabeling rules easy to reason about.
package domain

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// ─── Fraud labels ─────────────────────────────────────────────────────────────

// Fraud type labels written to the fraud_type column.
const (
	FraudMicropayScam   = "micropay_scam"   // tiny priming payment, then a large one
	FraudVelocityAttack = "velocity_attack" // rapid high-value transfers
	FraudNewRecipient   = "new_recipient"   // unusually large payment to a stranger
	FraudFakeRefund     = "fake_refund"     // "refund" request scam
	Legitimate          = "legitimate"
)

// Archetypes lists the fraud labels in the order the sampler draws from.
var Archetypes = []string{
	FraudMicropayScam,
	FraudVelocityAttack,
	FraudNewRecipient,
	FraudFakeRefund,
}

// IsArchetype reports whether label is one of the four fraud archetypes.
func IsArchetype(label string) bool {
	for _, a := range Archetypes {
		if a == label {
			return true
		}
	}
	return false
}

// ─── Channels & locations ─────────────────────────────────────────────────────

// Transaction channels.
const (
	TypeP2P         = "P2P"
	TypeP2M         = "P2M"
	TypeRecharge    = "Recharge"
	TypeBillPayment = "Bill Payment"
)

// TransactionTypes is the uniform pool for transaction_type.
var TransactionTypes = []string{TypeP2P, TypeP2M, TypeRecharge, TypeBillPayment}

// Locations is the uniform pool for location.
var Locations = []string{"Delhi", "Mumbai", "Bangalore", "Chennai", "Kolkata", "Hyderabad"}

// ─── Pools ────────────────────────────────────────────────────────────────────

const (
	UserPoolSize      = 1000
	RecipientPoolSize = 500
	FrequentContacts  = 50  // first N recipients favoured by legitimate traffic
	DeviceBuckets     = 100 // device_id collisions across users are expected

	HistoryWindow = 90 * 24 * time.Hour
)

// UserID returns the pool identifier for user n (1-based).
func UserID(n int) string { return fmt.Sprintf("USER_%04d", n) }

// RecipientID returns the pool identifier for recipient n (1-based).
func RecipientID(n int) string { return fmt.Sprintf("RECIP_%04d", n) }

// TransactionID formats the sequential identifier for row i (0-based).
func TransactionID(i int) string { return fmt.Sprintf("TXN_%08d", i) }

// DeviceID derives the device identifier for a user. It is stable across
// runs and processes.
func DeviceID(userID string) string {
	return fmt.Sprintf("DEV_%03d", xxhash.Sum64String(userID)%DeviceBuckets)
}

// ─── Core record ──────────────────────────────────────────────────────────────

// Transaction is one synthetic payment event. Field order matches the
// output column order.
type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	UserID          string          `json:"user_id"`
	Timestamp       time.Time       `json:"timestamp"`
	Amount          decimal.Decimal `json:"amount"`
	RecipientID     string          `json:"recipient_id"`
	TransactionType string          `json:"transaction_type"`
	DeviceID        string          `json:"device_id"`
	Location        string          `json:"location"`
	IsFraud         bool            `json:"is_fraud"`
	FraudType       string          `json:"fraud_type"`
}

// MarkFraud labels the transaction with a concrete archetype.
func (t *Transaction) MarkFraud(archetype string) {
	t.IsFraud = true
	t.FraudType = archetype
}

// Columns is the header row of the flat output file.
var Columns = []string{
	"transaction_id",
	"user_id",
	"timestamp",
	"amount",
	"recipient_id",
	"transaction_type",
	"device_id",
	"location",
	"is_fraud",
	"fraud_type",
}
