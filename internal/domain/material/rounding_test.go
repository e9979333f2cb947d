package material_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/riceops/production-planning/internal/domain/material"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundingPolicy_Apply_RoundsUpToWholePackages(t *testing.T) {
	// Arrange
	policy := material.NewRoundingPolicy(d("5"), false)

	// Act
	purchase := policy.Apply(d("10"), d("1.0"), d("100000"))

	// Assert
	assert.True(t, d("10").Equal(purchase.RequiredQuantity))
	assert.True(t, d("2").Equal(purchase.Packages))
	assert.True(t, d("10").Equal(purchase.ActualQuantity))
	assert.True(t, d("200000").Equal(purchase.TotalCost))
}

func TestRoundingPolicy_Apply_PartialPackageIsRoundedUp(t *testing.T) {
	policy := material.NewRoundingPolicy(d("50"), false)

	purchase := policy.Apply(d("120"), d("2.3"), d("10"))

	assert.True(t, d("276").Equal(purchase.RequiredQuantity))
	assert.True(t, d("6").Equal(purchase.Packages))
	assert.True(t, d("300").Equal(purchase.ActualQuantity))
	assert.True(t, purchase.ActualQuantity.GreaterThanOrEqual(purchase.RequiredQuantity))
	assert.True(t, d("60").Equal(purchase.TotalCost))
}

func TestRoundingPolicy_Apply_PartitionableBuysExactly(t *testing.T) {
	policy := material.NewRoundingPolicy(d("4"), true)

	purchase := policy.Apply(d("3"), d("2"), d("8"))

	assert.True(t, d("6").Equal(purchase.RequiredQuantity))
	assert.True(t, d("1.5").Equal(purchase.Packages))
	assert.True(t, d("6").Equal(purchase.ActualQuantity))
	assert.True(t, d("12").Equal(purchase.TotalCost))
}

func TestRoundingPolicy_NonPositivePackageSizeDefaultsToOne(t *testing.T) {
	for _, size := range []string{"0", "-3"} {
		policy := material.NewRoundingPolicy(d(size), false)

		purchase := policy.Apply(d("2.5"), d("1"), d("4"))

		assert.True(t, d("3").Equal(purchase.Packages), "size %s", size)
		assert.True(t, d("3").Equal(purchase.ActualQuantity), "size %s", size)
	}
}

func TestRoundingPolicy_PackagesCoverRequirement(t *testing.T) {
	cases := []struct {
		qty, area, size string
	}{
		{"7", "0.3", "2"},
		{"13.5", "4.25", "25"},
		{"1", "0.01", "50"},
		{"100", "12", "1"},
	}
	for _, tc := range cases {
		policy := material.NewRoundingPolicy(d(tc.size), false)
		purchase := policy.Apply(d(tc.qty), d(tc.area), decimal.Zero)

		assert.True(t, purchase.Packages.Equal(purchase.Packages.Floor()), "whole packages for %+v", tc)
		assert.True(t, purchase.ActualQuantity.GreaterThanOrEqual(purchase.RequiredQuantity), "coverage for %+v", tc)
		assert.True(t, purchase.ActualQuantity.Sub(d(tc.size)).LessThan(purchase.RequiredQuantity), "minimal for %+v", tc)
	}
}

func TestPolicyFor_UsesCatalogPackageSize(t *testing.T) {
	m := &material.Material{Name: "Urea", Unit: "kg", AmountPerMaterial: d("50")}

	policy := material.PolicyFor(m)

	assert.True(t, d("50").Equal(policy.PackageSize))
	assert.False(t, policy.Partitionable)
	assert.True(t, d("1").Equal((&material.Material{}).PackageSize()))
}
