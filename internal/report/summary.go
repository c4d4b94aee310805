// Package report builds the end-of-run generation summary.
package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"

	"lumina/upi-synth/internal/domain"
	"lumina/upi-synth/internal/injector"
)

// TypeCount is the number of rows carrying one fraud_type label.
type TypeCount struct {
	FraudType string
	Count     int
}

// Summary holds headline metrics for a generated dataset.
type Summary struct {
	Total                 int
	FraudCount            int
	FraudRate             float64
	PreInjectionFraudRate float64
	Injection             injector.Result
	ByType                []TypeCount // archetypes first, then legitimate
	AmountMean            float64
	AmountMedian          float64
	AmountP95             float64
}

// Build summarizes rows after injection. preFraud is the number of fraud rows
// the sampler produced before the injector ran.
func Build(rows []domain.Transaction, preFraud int, inj injector.Result) (Summary, error) {
	s := Summary{Total: len(rows), Injection: inj}
	if len(rows) == 0 {
		return s, nil
	}

	counts := make(map[string]int, len(domain.Archetypes)+1)
	amounts := make(stats.Float64Data, 0, len(rows))
	for i := range rows {
		tx := &rows[i]
		counts[tx.FraudType]++
		if tx.IsFraud {
			s.FraudCount++
		}
		amounts = append(amounts, tx.Amount.InexactFloat64())
	}

	for _, label := range append(append([]string{}, domain.Archetypes...), domain.Legitimate) {
		s.ByType = append(s.ByType, TypeCount{FraudType: label, Count: counts[label]})
	}

	n := float64(len(rows))
	s.FraudRate = float64(s.FraudCount) / n
	s.PreInjectionFraudRate = float64(preFraud) / n

	var err error
	if s.AmountMean, err = amounts.Mean(); err != nil {
		return s, fmt.Errorf("amount mean: %w", err)
	}
	if s.AmountMedian, err = amounts.Median(); err != nil {
		return s, fmt.Errorf("amount median: %w", err)
	}
	if s.AmountP95, err = amounts.Percentile(95); err != nil {
		return s, fmt.Errorf("amount p95: %w", err)
	}
	return s, nil
}

// Print writes the human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Generated %d transactions\n", s.Total)
	fmt.Fprintf(w, "Fraud rate: %.2f%% (before sequential patterns: %.2f%%)\n",
		s.FraudRate*100, s.PreInjectionFraudRate*100)
	fmt.Fprintf(w, "Sequential patterns: %d users scanned, %d velocity_attack, %d micropay_scam relabels\n",
		s.Injection.UsersScanned, s.Injection.VelocityRelabeled, s.Injection.MicropayRelabeled)
	for _, tc := range s.ByType {
		fmt.Fprintf(w, "  %-16s %d\n", tc.FraudType, tc.Count)
	}
	if s.Total > 0 {
		fmt.Fprintf(w, "Amount: mean %.2f, median %.2f, p95 %.2f\n", s.AmountMean, s.AmountMedian, s.AmountP95)
	}
}
