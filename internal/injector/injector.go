// Package injector relabels sequential fraud patterns that the independent
// sampler cannot produce on its own.
//
// Scope:
//
//	Only the first TrackedUsers distinct users (in generation order) are
//	scanned, and only those with more than MinHistory transactions.
//
// Rules, applied per user in this order (a later rule overwrites):
//  1. Velocity: a fixed fraction of the user's rows become velocity_attack.
//  2. Micropay: a tiny payment followed by a large one within the window
//     marks the large one as micropay_scam. The window is symmetric: the
//     large payment may sit up to MicropayWindow before or after the tiny one.
//
// Rules only touch is_fraud and fraud_type.
package injector

import (
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"lumina/upi-synth/internal/domain"
	"lumina/upi-synth/internal/store"
)

const (
	TrackedUsers     = 100
	MinHistory       = 10
	VelocityFraction = 0.1
	MicropayWindow   = 300 * time.Second
)

var (
	micropayCeiling = decimal.NewFromInt(10)
	largeFloor      = decimal.NewFromInt(10000)
)

// Result counts what a pass changed.
type Result struct {
	UsersScanned      int
	VelocityRelabeled int
	MicropayRelabeled int
}

// Relabeled is the total number of relabel operations. A row hit by both
// rules is counted twice.
func (r Result) Relabeled() int { return r.VelocityRelabeled + r.MicropayRelabeled }

// Injector applies the sequential rules. The seed fixes which rows the
// velocity rule picks.
type Injector struct {
	seed int64
}

// New creates an injector with the given sampling seed.
func New(seed int64) *Injector {
	return &Injector{seed: seed}
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Inject mutates t in place and reports how many rows each rule relabeled.
// Running it twice with the same seed relabels the same rows again.
func (inj *Injector) Inject(t *store.Table) Result {
	var res Result

	users := t.Users()
	if len(users) > TrackedUsers {
		users = users[:TrackedUsers]
	}

	for _, u := range users {
		rows := t.UserRows(u)
		if len(rows) <= MinHistory {
			continue
		}
		res.UsersScanned++

		ctx := &userContext{table: t, rows: rows}
		res.VelocityRelabeled += inj.ruleVelocity(ctx)
		res.MicropayRelabeled += ruleMicropay(ctx)
	}
	return res
}

// ─── Rule context ─────────────────────────────────────────────────────────────

// userContext is one user's history: row positions in original index order.
type userContext struct {
	table *store.Table
	rows  []int
}

// ─── Rule 1: Velocity ─────────────────────────────────────────────────────────

// ruleVelocity relabels round(n × VelocityFraction) of the user's rows,
// chosen without replacement by a generator reseeded for every user.
func (inj *Injector) ruleVelocity(ctx *userContext) int {
	k := sampleSize(len(ctx.rows))
	if k == 0 {
		return 0
	}
	rng := rand.New(rand.NewSource(inj.seed))
	for _, p := range rng.Perm(len(ctx.rows))[:k] {
		ctx.table.Relabel(ctx.rows[p], domain.FraudVelocityAttack)
	}
	return k
}

func sampleSize(n int) int {
	return int(math.RoundToEven(float64(n) * VelocityFraction))
}

// ─── Rule 2: Micropay ─────────────────────────────────────────────────────────

// ruleMicropay scans adjacent pairs in index order (not time order).
func ruleMicropay(ctx *userContext) int {
	n := 0
	for i := 0; i+1 < len(ctx.rows); i++ {
		first := ctx.table.At(ctx.rows[i])
		second := ctx.table.At(ctx.rows[i+1])
		if isMicropayPair(first, second) {
			ctx.table.Relabel(ctx.rows[i+1], domain.FraudMicropayScam)
			n++
		}
	}
	return n
}

func isMicropayPair(first, second *domain.Transaction) bool {
	if first.Amount.GreaterThan(micropayCeiling) || !second.Amount.GreaterThan(largeFloor) {
		return false
	}
	gap := second.Timestamp.Sub(first.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	return gap <= MicropayWindow
}
