package mirror

import "math"

// BuyInputs are the figures a buy is sized from. Sizes are shares, balances USD.
type BuyInputs struct {
	USDCSize        float64
	EventPrice      float64
	TargetBalance   float64
	TargetSize      float64
	FollowerBalance float64
	FollowerSize    float64
	ExposureShares  float64 // already mirrored this session
	Amplification   float64
}

// BuyTarget is the result of BuySizing.
type BuyTarget struct {
	TargetPortfolio   float64
	FollowerPortfolio float64
	TargetValue       float64
	CurrentValue      float64
	Remaining         float64
}

// BuySizing scales the target's trade to the follower's portfolio: the follower commits the
// same share of its portfolio value the target did, times the amplification, less what this
// session already bought. The result is capped by the follower's cash.
func BuySizing(in BuyInputs) BuyTarget {
	out := BuyTarget{
		TargetPortfolio:   math.Max(in.TargetBalance+in.TargetSize*in.EventPrice, 1),
		FollowerPortfolio: in.FollowerBalance + in.FollowerSize*in.EventPrice,
		CurrentValue:      in.ExposureShares * in.EventPrice,
	}

	out.TargetValue = in.USDCSize / out.TargetPortfolio * out.FollowerPortfolio * in.Amplification
	out.Remaining = math.Min(math.Max(out.TargetValue-out.CurrentValue, 0), math.Max(in.FollowerBalance, 0))

	return out
}

// SellQuantity returns how many of the follower's shares to sell. With applyRatio it sells the
// fraction eventSize / (targetSize + eventSize), where targetSize is what the target still
// holds after its sale. false means the ratio is undefined.
func SellQuantity(followerSize float64, targetSize float64, eventSize float64, applyRatio bool) (float64, bool) {
	if !applyRatio {
		return followerSize, true
	}

	denominator := targetSize + eventSize
	if denominator <= 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0, false
	}

	return followerSize * eventSize / denominator, true
}
