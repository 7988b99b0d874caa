package adminfee

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lisdrive/repasse/internal/domain"
)

func TestComputeFixedOverrideIgnoresEarnings(t *testing.T) {
	d := &domain.Driver{AdminFee: &domain.AdminFeeOverride{Mode: domain.AdminFeeFixed, Value: 30}}

	fee := Compute(d, DefaultConfig(), Context{GanhosMenosIVA: 5000})
	assert.Equal(t, 30.0, fee)

	fee = Compute(d, DefaultConfig(), Context{GanhosMenosIVA: 0})
	assert.Equal(t, 30.0, fee)
}

func TestComputeFixedOverrideWithoutValueFallsBack(t *testing.T) {
	d := &domain.Driver{AdminFee: &domain.AdminFeeOverride{Mode: domain.AdminFeeFixed}}

	fee := Compute(d, Config{Percent: 7, Fixed: 25}, Context{GanhosMenosIVA: 500})
	assert.Equal(t, 25.0, fee)
}

func TestComputePercentOverride(t *testing.T) {
	d := &domain.Driver{AdminFee: &domain.AdminFeeOverride{Mode: domain.AdminFeePercent, Value: 10}}

	fee := Compute(d, DefaultConfig(), Context{GanhosMenosIVA: 500})
	assert.Equal(t, 50.0, fee)
}

func TestComputeGlobalDefault(t *testing.T) {
	d := &domain.Driver{}

	fee := Compute(d, Config{Percent: 7, Fixed: 25}, Context{GanhosMenosIVA: 500})
	assert.InDelta(t, 35.0, fee, 0.001)
}

func TestComputeFlooredAtZero(t *testing.T) {
	d := &domain.Driver{}

	fee := Compute(d, Config{Percent: 7}, Context{GanhosMenosIVA: -100})
	assert.Equal(t, 0.0, fee)
}
