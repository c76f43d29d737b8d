// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomicpool

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

// Pool prices atomic unstakes. Utilized is the distributed amount after the
// revenue adjustment and drives the rate; Distributed bounds the liquidity.
type Pool struct {
	Curve         FeeCurve
	Allocated     uint256.Int
	Distributed   uint256.Int
	Utilized      uint256.Int
	MinFee        uint256.Int
	DustThreshold uint256.Int
}

// Quote is the result of pricing one atomic unstake.
type Quote struct {
	Gross uint256.Int
	Net   uint256.Int
	Fee   uint256.Int
	// Clamped is set when the requested gross was cut down to what the liquidity pays for.
	Clamped bool
}

// Liquidity is the cash the pool can still pay out.
func (p Pool) Liquidity() uint256.Int {
	return shmon.SatSub(p.Allocated, p.Distributed)
}

// Utilization returns Utilized/Allocated in base units, capped at 100%.
func (p Pool) Utilization() uint256.Int {
	if p.Allocated.IsZero() {
		return uint256.Int{}
	}
	return shmon.Min(shmon.MulDiv(p.Utilized, shmon.Base, p.Allocated), shmon.Base)
}

// Rate is the current marginal fee rate.
func (p Pool) Rate() uint256.Int {
	if p.Allocated.IsZero() {
		return p.Curve.Max()
	}
	return p.Curve.Rate(p.Utilization())
}

// scaledAllocated returns B*A, and k = A*(B-c) - m*U, the numerator factor of
// the net payout. The rate charged is the rate at post-payout utilization,
// r(N) = c + m*(U+N)/A, so N = G*(1 - r(N)) is affine in N and solves to
// N = G*k / (B*A + G*m), and back to G = N*B*A / (k - m*N).
func (p Pool) factors() (ba, k uint256.Int) {
	ba = shmon.Mul(shmon.Base, p.Allocated)
	k = shmon.SatSub(
		shmon.Mul(p.Allocated, shmon.Sub(shmon.Base, p.Curve.Intercept)),
		shmon.Mul(p.Curve.Slope, p.Utilized),
	)
	return
}

// Quote prices a gross amount. When the payout would exceed the liquidity the
// net is set to the liquidity exactly and the gross re-solved for it.
func (p Pool) Quote(gross uint256.Int) (Quote, error) {
	if gross.IsZero() {
		return Quote{}, reverts.ErrZeroAmount
	}
	liquidity := p.Liquidity()
	if liquidity.IsZero() {
		return Quote{}, reverts.ErrInsufficientLiquidity
	}

	ba, k := p.factors()
	net := shmon.MulDiv(gross, k, shmon.Add(ba, shmon.Mul(gross, p.Curve.Slope)))
	if net.Gt(&liquidity) {
		q, err := p.quoteNet(liquidity)
		if err != nil {
			return Quote{}, err
		}
		if q.Gross.Gt(&gross) {
			q.Gross = gross
			q.Fee = shmon.Sub(gross, q.Net)
		}
		q.Clamped = true
		return q, nil
	}

	q := Quote{Gross: gross, Net: net, Fee: shmon.Sub(gross, net)}
	p.applyFloor(&q, false)
	return q, nil
}

// QuoteNet returns the gross needed for a net payout. It never clamps.
func (p Pool) QuoteNet(net uint256.Int) (Quote, error) {
	if net.IsZero() {
		return Quote{}, reverts.ErrZeroAmount
	}
	liquidity := p.Liquidity()
	if net.Gt(&liquidity) {
		return Quote{}, reverts.ErrInsufficientLiquidity
	}
	q, err := p.quoteNet(net)
	if err != nil {
		return Quote{}, err
	}
	p.applyFloor(&q, true)
	return q, nil
}

func (p Pool) quoteNet(net uint256.Int) (Quote, error) {
	ba, k := p.factors()
	den := shmon.SatSub(k, shmon.Mul(p.Curve.Slope, net))
	if den.IsZero() {
		// the rate reaches 100% at this payout
		return Quote{}, reverts.ErrInsufficientLiquidity
	}
	gross := shmon.MulDivUp(net, ba, den)
	return Quote{Gross: gross, Net: net, Fee: shmon.Sub(gross, net)}, nil
}

// applyFloor charges at least MinFee on requests below the dust threshold.
// On the net side the floor is added to the gross, on the gross side it is
// taken from the net.
func (p Pool) applyFloor(q *Quote, netSide bool) {
	if !q.Gross.Lt(&p.DustThreshold) || !q.Fee.Lt(&p.MinFee) {
		return
	}
	if netSide {
		q.Fee = p.MinFee
		q.Gross = shmon.Add(q.Net, q.Fee)
		return
	}
	q.Fee = shmon.Min(p.MinFee, q.Gross)
	q.Net = shmon.Sub(q.Gross, q.Fee)
}
