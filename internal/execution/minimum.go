package execution

import "github.com/mselser95/polymarket-mirror/pkg/numeric"

// EnforceMinimum returns estShares when it meets the market minimum, minSize when the budget
// covers a minimum-sized order, and 0 when it does not. It is pure.
func EnforceMinimum(estShares float64, minSize float64, remainingBudget float64, price float64, feeMultiplier float64) float64 {
	if estShares >= minSize {
		return estShares
	}

	minCost := numeric.OrderCost(minSize, price) * feeMultiplier
	if minCost > remainingBudget {
		return 0
	}

	return minSize
}
