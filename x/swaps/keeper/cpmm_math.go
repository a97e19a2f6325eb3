package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pmamm/pkg/fixed"
)

// Weighted constant-product formulas. Balances, weights, fees and amounts are all
// fixed-point values; every step is checked and fails with fixed.ErrArithmetic.

// calcSpotPrice returns the amount of asset in paid per unit of asset out:
//
//	(balanceIn / weightIn) / (balanceOut / weightOut) * 1 / (1 - swapFee)
func calcSpotPrice(p fixed.Precision, balanceIn, weightIn, balanceOut, weightOut, swapFee math.Int) (math.Int, error) {
	numer, err := p.Div(balanceIn, weightIn)
	if err != nil {
		return math.Int{}, err
	}
	denom, err := p.Div(balanceOut, weightOut)
	if err != nil {
		return math.Int{}, err
	}
	ratio, err := p.Div(numer, denom)
	if err != nil {
		return math.Int{}, err
	}
	feeComplement, err := p.Sub(p.One(), swapFee)
	if err != nil {
		return math.Int{}, err
	}
	scale, err := p.Div(p.One(), feeComplement)
	if err != nil {
		return math.Int{}, err
	}
	return p.Mul(ratio, scale)
}

// calcOutGivenIn returns the amount of asset out bought with amountIn:
//
//	balanceOut * (1 - (balanceIn / (balanceIn + amountIn * (1 - fee))) ^ (weightIn / weightOut))
func calcOutGivenIn(p fixed.Precision, balanceIn, weightIn, balanceOut, weightOut, amountIn, swapFee math.Int) (math.Int, error) {
	weightRatio, err := p.Div(weightIn, weightOut)
	if err != nil {
		return math.Int{}, err
	}
	feeComplement, err := p.Sub(p.One(), swapFee)
	if err != nil {
		return math.Int{}, err
	}
	adjustedIn, err := p.Mul(amountIn, feeComplement)
	if err != nil {
		return math.Int{}, err
	}
	newBalanceIn, err := p.Add(balanceIn, adjustedIn)
	if err != nil {
		return math.Int{}, err
	}
	y, err := p.Div(balanceIn, newBalanceIn)
	if err != nil {
		return math.Int{}, err
	}
	foo, err := p.Pow(y, weightRatio)
	if err != nil {
		return math.Int{}, err
	}
	bar, err := p.Sub(p.One(), foo)
	if err != nil {
		return math.Int{}, err
	}
	return p.Mul(balanceOut, bar)
}

// calcInGivenOut returns the amount of asset in needed to buy amountOut:
//
//	balanceIn * ((balanceOut / (balanceOut - amountOut)) ^ (weightOut / weightIn) - 1) / (1 - fee)
func calcInGivenOut(p fixed.Precision, balanceIn, weightIn, balanceOut, weightOut, amountOut, swapFee math.Int) (math.Int, error) {
	weightRatio, err := p.Div(weightOut, weightIn)
	if err != nil {
		return math.Int{}, err
	}
	diff, err := p.Sub(balanceOut, amountOut)
	if err != nil {
		return math.Int{}, err
	}
	y, err := p.Div(balanceOut, diff)
	if err != nil {
		return math.Int{}, err
	}
	foo, err := p.Pow(y, weightRatio)
	if err != nil {
		return math.Int{}, err
	}
	foo, err = p.Sub(foo, p.One())
	if err != nil {
		return math.Int{}, err
	}
	feeComplement, err := p.Sub(p.One(), swapFee)
	if err != nil {
		return math.Int{}, err
	}
	scaled, err := p.Mul(balanceIn, foo)
	if err != nil {
		return math.Int{}, err
	}
	return p.Div(scaled, feeComplement)
}

// calcPoolOutGivenSingleIn returns the pool shares minted for depositing amountIn of a
// single asset. Only the share of the deposit that would have been swapped pays the fee.
func calcPoolOutGivenSingleIn(p fixed.Precision, balanceIn, weightIn, poolSupply, totalWeight, amountIn, swapFee math.Int) (math.Int, error) {
	normalizedWeight, err := p.Div(weightIn, totalWeight)
	if err != nil {
		return math.Int{}, err
	}
	zaz, err := feeShare(p, normalizedWeight, swapFee)
	if err != nil {
		return math.Int{}, err
	}
	zazComplement, err := p.Sub(p.One(), zaz)
	if err != nil {
		return math.Int{}, err
	}
	inAfterFee, err := p.Mul(amountIn, zazComplement)
	if err != nil {
		return math.Int{}, err
	}
	newBalanceIn, err := p.Add(balanceIn, inAfterFee)
	if err != nil {
		return math.Int{}, err
	}
	ratio, err := p.Div(newBalanceIn, balanceIn)
	if err != nil {
		return math.Int{}, err
	}
	poolRatio, err := p.Pow(ratio, normalizedWeight)
	if err != nil {
		return math.Int{}, err
	}
	newPoolSupply, err := p.Mul(poolRatio, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	return p.Sub(newPoolSupply, poolSupply)
}

// calcSingleInGivenPoolOut returns the amount of a single asset to deposit for
// poolAmountOut new shares.
func calcSingleInGivenPoolOut(p fixed.Precision, balanceIn, weightIn, poolSupply, totalWeight, poolAmountOut, swapFee math.Int) (math.Int, error) {
	normalizedWeight, err := p.Div(weightIn, totalWeight)
	if err != nil {
		return math.Int{}, err
	}
	newPoolSupply, err := p.Add(poolSupply, poolAmountOut)
	if err != nil {
		return math.Int{}, err
	}
	poolRatio, err := p.Div(newPoolSupply, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	boo, err := p.Div(p.One(), normalizedWeight)
	if err != nil {
		return math.Int{}, err
	}
	tokenInRatio, err := p.Pow(poolRatio, boo)
	if err != nil {
		return math.Int{}, err
	}
	newBalanceIn, err := p.Mul(tokenInRatio, balanceIn)
	if err != nil {
		return math.Int{}, err
	}
	inAfterFee, err := p.Sub(newBalanceIn, balanceIn)
	if err != nil {
		return math.Int{}, err
	}
	zar, err := feeShare(p, normalizedWeight, swapFee)
	if err != nil {
		return math.Int{}, err
	}
	zarComplement, err := p.Sub(p.One(), zar)
	if err != nil {
		return math.Int{}, err
	}
	return p.Div(inAfterFee, zarComplement)
}

// calcSingleOutGivenPoolIn returns the amount of a single asset paid out for burning
// poolAmountIn shares. The exit fee is charged on the shares, the swap fee on the
// swapped share of the withdrawal.
func calcSingleOutGivenPoolIn(p fixed.Precision, balanceOut, weightOut, poolSupply, totalWeight, poolAmountIn, swapFee, exitFee math.Int) (math.Int, error) {
	normalizedWeight, err := p.Div(weightOut, totalWeight)
	if err != nil {
		return math.Int{}, err
	}
	exitComplement, err := p.Sub(p.One(), exitFee)
	if err != nil {
		return math.Int{}, err
	}
	poolInAfterExitFee, err := p.Mul(poolAmountIn, exitComplement)
	if err != nil {
		return math.Int{}, err
	}
	newPoolSupply, err := p.Sub(poolSupply, poolInAfterExitFee)
	if err != nil {
		return math.Int{}, err
	}
	poolRatio, err := p.Div(newPoolSupply, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	exp, err := p.Div(p.One(), normalizedWeight)
	if err != nil {
		return math.Int{}, err
	}
	tokenOutRatio, err := p.Pow(poolRatio, exp)
	if err != nil {
		return math.Int{}, err
	}
	newBalanceOut, err := p.Mul(tokenOutRatio, balanceOut)
	if err != nil {
		return math.Int{}, err
	}
	outBeforeFee, err := p.Sub(balanceOut, newBalanceOut)
	if err != nil {
		return math.Int{}, err
	}
	zaz, err := feeShare(p, normalizedWeight, swapFee)
	if err != nil {
		return math.Int{}, err
	}
	zazComplement, err := p.Sub(p.One(), zaz)
	if err != nil {
		return math.Int{}, err
	}
	return p.Mul(outBeforeFee, zazComplement)
}

// calcPoolInGivenSingleOut returns the shares to burn for withdrawing amountOut of a
// single asset.
func calcPoolInGivenSingleOut(p fixed.Precision, balanceOut, weightOut, poolSupply, totalWeight, amountOut, swapFee, exitFee math.Int) (math.Int, error) {
	normalizedWeight, err := p.Div(weightOut, totalWeight)
	if err != nil {
		return math.Int{}, err
	}
	zar, err := feeShare(p, normalizedWeight, swapFee)
	if err != nil {
		return math.Int{}, err
	}
	zarComplement, err := p.Sub(p.One(), zar)
	if err != nil {
		return math.Int{}, err
	}
	outBeforeFee, err := p.Div(amountOut, zarComplement)
	if err != nil {
		return math.Int{}, err
	}
	newBalanceOut, err := p.Sub(balanceOut, outBeforeFee)
	if err != nil {
		return math.Int{}, err
	}
	tokenOutRatio, err := p.Div(newBalanceOut, balanceOut)
	if err != nil {
		return math.Int{}, err
	}
	poolRatio, err := p.Pow(tokenOutRatio, normalizedWeight)
	if err != nil {
		return math.Int{}, err
	}
	newPoolSupply, err := p.Mul(poolRatio, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	poolInAfterExitFee, err := p.Sub(poolSupply, newPoolSupply)
	if err != nil {
		return math.Int{}, err
	}
	exitComplement, err := p.Sub(p.One(), exitFee)
	if err != nil {
		return math.Int{}, err
	}
	return p.Div(poolInAfterExitFee, exitComplement)
}

// feeShare is the part of the swap fee charged on a single-asset join or exit:
// (1 - normalizedWeight) * swapFee.
func feeShare(p fixed.Precision, normalizedWeight, swapFee math.Int) (math.Int, error) {
	complement, err := p.Sub(p.One(), normalizedWeight)
	if err != nil {
		return math.Int{}, err
	}
	return p.Mul(complement, swapFee)
}
