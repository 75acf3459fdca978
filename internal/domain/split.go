package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// minorUnitScale is the number of decimal places carried by group
// currencies. All split arithmetic happens in integer minor units so
// shares always sum to the total exactly.
const minorUnitScale = 2

// SplitShares divides total between participants according to method
// and returns each participant's owed amount keyed by member ID.
//
// For percentage splits, weights holds each participant's weight; the
// weights need not sum to 100. For exact splits, weights holds each
// participant's amount and the amounts must sum to total. Equal splits
// ignore weights.
//
// The function is pure and deterministic: rounding remainders are
// assigned in ascending member-ID order (equal) or by largest
// fractional remainder with member ID as tie-break (percentage), so
// identical inputs always yield identical output.
func SplitShares(total decimal.Decimal, method SplitMethod, participants []*Member, weights map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	cents := total.Shift(minorUnitScale)
	if !cents.IsInteger() {
		return nil, ErrCurrencyMismatch
	}

	ids, err := participantIDs(participants)
	if err != nil {
		return nil, err
	}

	switch method {
	case SplitEqual:
		return splitEqual(cents.IntPart(), ids), nil
	case SplitPercentage:
		return splitPercentage(cents, ids, weights)
	case SplitExact:
		return splitExact(total, ids, weights)
	default:
		return nil, ErrInvalidWeights
	}
}

// participantIDs validates participants and returns their IDs in
// ascending order.
func participantIDs(participants []*Member) ([]string, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidParticipants
	}

	seen := make(map[string]bool, len(participants))
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		if p == nil || p.ID == "" || seen[p.ID] {
			return nil, ErrInvalidParticipants
		}
		seen[p.ID] = true
		ids = append(ids, p.ID)
	}

	sort.Strings(ids)
	return ids, nil
}

// splitEqual divides cents evenly, handing the remainder out one minor
// unit at a time to the lowest member IDs first.
func splitEqual(cents int64, ids []string) map[string]decimal.Decimal {
	n := int64(len(ids))
	base := cents / n
	remainder := cents % n

	amounts := make(map[string]decimal.Decimal, len(ids))
	for i, id := range ids {
		share := base
		if int64(i) < remainder {
			share++
		}
		amounts[id] = decimal.New(share, -minorUnitScale)
	}

	return amounts
}

// splitPercentage allocates floor(cents*weight/sumWeights) to each
// participant, then distributes the leftover minor units to the
// participants with the largest fractional remainders.
func splitPercentage(cents decimal.Decimal, ids []string, weights map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	sumWeights := decimal.Zero
	for _, id := range ids {
		w, ok := weights[id]
		if !ok || w.IsNegative() {
			return nil, ErrInvalidWeights
		}
		sumWeights = sumWeights.Add(w)
	}
	if !sumWeights.IsPositive() {
		return nil, ErrInvalidWeights
	}

	type allocation struct {
		id    string
		cents int64
		frac  decimal.Decimal
	}

	allocations := make([]allocation, 0, len(ids))
	assigned := int64(0)
	for _, id := range ids {
		raw := cents.Mul(weights[id]).Div(sumWeights)
		floor := raw.Floor()
		allocations = append(allocations, allocation{
			id:    id,
			cents: floor.IntPart(),
			frac:  raw.Sub(floor),
		})
		assigned += floor.IntPart()
	}

	// Leftover minor units from flooring go to the largest fractional
	// remainders; ties break toward the lower member ID. ids are
	// already sorted, so a stable sort preserves that order.
	leftover := cents.IntPart() - assigned
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].frac.GreaterThan(allocations[j].frac)
	})
	for i := int64(0); i < leftover; i++ {
		allocations[i].cents++
	}

	amounts := make(map[string]decimal.Decimal, len(ids))
	for _, a := range allocations {
		amounts[a.id] = decimal.New(a.cents, -minorUnitScale)
	}

	return amounts, nil
}

// splitExact verifies the caller-supplied amounts sum to the total.
func splitExact(total decimal.Decimal, ids []string, amounts map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	sum := decimal.Zero
	result := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		a, ok := amounts[id]
		if !ok {
			return nil, ErrInvalidWeights
		}
		if a.IsNegative() || !a.Shift(minorUnitScale).IsInteger() {
			return nil, ErrInvalidWeights
		}
		sum = sum.Add(a)
		result[id] = a
	}

	if !sum.Equal(total) {
		return nil, ErrSplitMismatch
	}

	return result, nil
}
