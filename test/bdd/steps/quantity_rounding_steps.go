package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/domain/material"
)

type quantityRoundingContext struct {
	perHectare decimal.Decimal
	area       decimal.Decimal
	policy     material.RoundingPolicy
	purchase   material.Purchase
}

func (ctx *quantityRoundingContext) reset() {
	*ctx = quantityRoundingContext{}
}

func (ctx *quantityRoundingContext) aRequirementOf(perHectare, area string) error {
	var err error
	if ctx.perHectare, err = parseDecimal(perHectare); err != nil {
		return err
	}
	ctx.area, err = parseDecimal(area)
	return err
}

func (ctx *quantityRoundingContext) aPackageSizeOf(size, split string) error {
	packageSize, err := parseDecimal(size)
	if err != nil {
		return err
	}
	ctx.policy = material.NewRoundingPolicy(packageSize, split == "may")
	return nil
}

func (ctx *quantityRoundingContext) theRequirementIsRoundedAt(price string) error {
	unitPrice, err := parseDecimal(price)
	if err != nil {
		return err
	}
	ctx.purchase = ctx.policy.Apply(ctx.perHectare, ctx.area, unitPrice)
	return nil
}

func (ctx *quantityRoundingContext) packagesShouldBeBoughtFor(packages, cost string) error {
	if err := expectDecimal("packages", ctx.purchase.Packages, packages); err != nil {
		return err
	}
	return expectDecimal("total cost", ctx.purchase.TotalCost, cost)
}

func (ctx *quantityRoundingContext) thePurchasedQuantityShouldBe(quantity string) error {
	return expectDecimal("purchased quantity", ctx.purchase.ActualQuantity, quantity)
}

func (ctx *quantityRoundingContext) thePurchasedQuantityShouldCoverTheRequirement() error {
	if ctx.purchase.ActualQuantity.LessThan(ctx.purchase.RequiredQuantity) {
		return fmt.Errorf("purchased %s falls short of required %s", ctx.purchase.ActualQuantity, ctx.purchase.RequiredQuantity)
	}
	return nil
}

// InitializeQuantityRoundingScenario registers package rounding steps
func InitializeQuantityRoundingScenario(sc *godog.ScenarioContext) {
	roundingCtx := &quantityRoundingContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		roundingCtx.reset()
		return ctx, nil
	})

	sc.Step(`^a requirement of (\S+) per hectare on (\S+) ha$`, roundingCtx.aRequirementOf)
	sc.Step(`^a package size of (\S+) kg that (cannot|may) be split$`, roundingCtx.aPackageSizeOf)
	sc.Step(`^the requirement is rounded at unit price (\d+)$`, roundingCtx.theRequirementIsRoundedAt)
	sc.Step(`^(\S+) packages should be bought for (\S+)$`, roundingCtx.packagesShouldBeBoughtFor)
	sc.Step(`^the purchased quantity should be (\S+)$`, roundingCtx.thePurchasedQuantityShouldBe)
	sc.Step(`^the purchased quantity should cover the requirement$`, roundingCtx.thePurchasedQuantityShouldCoverTheRequirement)
}
