package mirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mselser95/polymarket-mirror/pkg/numeric"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// ErrUnknownCondition is returned for trades the engine cannot mirror.
var ErrUnknownCondition = errors.New("unknown mirror condition")

// Condition selects how a trade event is mirrored. The set is closed: Buy, Sell and Merge.
type Condition interface {
	fmt.Stringer
	plan(e *Engine, in input) plan
}

// Buy mirrors the target's exposure as a share of portfolio value.
type Buy struct{}

// Sell mirrors the fraction of the position the target divested.
type Sell struct{}

// Merge unwinds the follower's position on the opposite outcome of a market the target is
// buying into.
type Merge struct{}

func (Buy) String() string   { return "buy" }
func (Sell) String() string  { return "sell" }
func (Merge) String() string { return "merge" }

// input is everything a condition sizes from.
type input struct {
	follower        *types.Position
	target          *types.Position
	event           types.TradeEvent
	followerBalance float64
	targetBalance   float64
}

// plan is the sized work for the execution loop. A non-empty reason means nothing to do.
type plan struct {
	side          types.Side
	tokenID       string
	budget        float64 // USD for buys, shares for sells
	checkSlippage bool
	reason        Reason
}

func (Buy) plan(e *Engine, in input) plan {
	target := BuySizing(BuyInputs{
		USDCSize:        in.event.USDCSize,
		EventPrice:      in.event.Price,
		TargetBalance:   in.targetBalance,
		TargetSize:      positionSize(in.target),
		FollowerBalance: in.followerBalance,
		FollowerSize:    positionSize(in.follower),
		ExposureShares:  e.exposure.Get(in.event.TokenID),
		Amplification:   e.settings.Amplification,
	})

	e.logger.Info("buy-sized",
		zap.String("trade-id", in.event.ID),
		zap.Float64("target-portfolio-usd", target.TargetPortfolio),
		zap.Float64("follower-portfolio-usd", target.FollowerPortfolio),
		zap.Float64("target-exposure-usd", target.TargetValue),
		zap.Float64("current-exposure-usd", target.CurrentValue),
		zap.Float64("remaining-usd", target.Remaining))

	p := plan{
		side:          types.SideBuy,
		tokenID:       in.event.TokenID,
		budget:        target.Remaining,
		checkSlippage: true,
	}
	if numeric.IsDust(p.budget) {
		p.reason = ReasonNothingToDo
	}
	return p
}

func (Sell) plan(e *Engine, in input) plan {
	if positionSize(in.follower) <= 0 {
		return plan{reason: ReasonNoPosition}
	}

	quantity, ok := SellQuantity(in.follower.Size, positionSize(in.target), in.event.Size, e.settings.MirrorSellFraction)
	if !ok {
		return plan{reason: ReasonZeroDenominator}
	}

	p := plan{
		side:          types.SideSell,
		tokenID:       in.event.TokenID,
		budget:        quantity,
		checkSlippage: true,
	}
	if numeric.IsDust(p.budget) {
		p.reason = ReasonNothingToDo
	}
	return p
}

func (Merge) plan(e *Engine, in input) plan {
	if positionSize(in.follower) <= 0 {
		return plan{reason: ReasonNoPosition}
	}

	p := plan{
		side:    types.SideSell,
		tokenID: in.follower.TokenID,
		budget:  in.follower.Size,
	}
	if numeric.IsDust(p.budget) {
		p.reason = ReasonNothingToDo
	}
	return p
}

// ParseCondition maps "buy", "sell" or "merge" to its condition.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy{}, nil
	case "sell":
		return Sell{}, nil
	case "merge":
		return Merge{}, nil
	default:
		return nil, fmt.Errorf("parse condition %q: %w", s, ErrUnknownCondition)
	}
}

// SelectCondition picks the condition for event from both parties' positions in its market.
// A target buy is a merge when the follower holds the other outcome of a market the target
// already holds.
func SelectCondition(event types.TradeEvent, follower *types.Position, target *types.Position) (Condition, error) {
	switch event.Side {
	case types.SideBuy:
		if follower != nil && target != nil && follower.TokenID != event.TokenID {
			return Merge{}, nil
		}
		return Buy{}, nil
	case types.SideSell:
		return Sell{}, nil
	default:
		return nil, fmt.Errorf("select condition for side %q: %w", event.Side, ErrUnknownCondition)
	}
}

// FindPosition returns the position on tokenID, else any other position in conditionID, or nil.
func FindPosition(positions []types.Position, conditionID string, tokenID string) *types.Position {
	if p := FindTokenPosition(positions, tokenID); p != nil {
		return p
	}
	for i := range positions {
		if positions[i].ConditionID == conditionID {
			return &positions[i]
		}
	}
	return nil
}

// FindTokenPosition returns the position on tokenID, or nil.
func FindTokenPosition(positions []types.Position, tokenID string) *types.Position {
	for i := range positions {
		if positions[i].TokenID == tokenID {
			return &positions[i]
		}
	}
	return nil
}

// SizingPositions picks the positions cond sizes from. Merges unwind the follower's holding
// elsewhere in the market; buys and sells only look at the traded token.
func SizingPositions(
	cond Condition,
	event types.TradeEvent,
	follower []types.Position,
	target []types.Position,
) (*types.Position, *types.Position) {
	if _, ok := cond.(Merge); ok {
		return FindPosition(follower, event.MarketID, event.TokenID), FindPosition(target, event.MarketID, event.TokenID)
	}
	return FindTokenPosition(follower, event.TokenID), FindTokenPosition(target, event.TokenID)
}

func positionSize(p *types.Position) float64 {
	if p == nil || p.Size < 0 {
		return 0
	}
	return p.Size
}
