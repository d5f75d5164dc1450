package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grosir/internal/models"
	"grosir/internal/pricing"
)

// MockRuleStore is a mock implementation of pricing.RuleStore
type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) AllEnabledRules(ctx context.Context) ([]models.MarkupRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MarkupRule), args.Error(1)
}

func str(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func percentRule(id string, value string) models.MarkupRule {
	return models.MarkupRule{ID: id, MarkupType: models.MarkupTypePercent, MarkupValue: dec(value), IsActive: true}
}

func fixedRule(id string, value string) models.MarkupRule {
	return models.MarkupRule{ID: id, MarkupType: models.MarkupTypeFixed, MarkupValue: dec(value), IsActive: true}
}

func TestValidAt(t *testing.T) {
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  bool
	}{
		{"unbounded", nil, nil, true},
		{"started", &before, nil, true},
		{"starts later", &after, nil, false},
		{"ends later", nil, &after, true},
		{"ended", nil, &before, false},
		{"inside window", &before, &after, true},
		{"starts exactly now", &now, nil, true},
		{"ends exactly now", nil, &now, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := models.MarkupRule{StartTime: tt.start, EndTime: tt.end}
			assert.Equal(t, tt.want, pricing.ValidAt(rule, now))
		})
	}
}

func TestMatches(t *testing.T) {
	ctx := models.PricingContext{StoreID: str("s1"), SupplierID: str("5")}

	tests := []struct {
		name string
		rule models.MarkupRule
		want bool
	}{
		{"all wildcards", models.MarkupRule{}, true},
		{"same store", models.MarkupRule{StoreID: str("s1")}, true},
		{"other store", models.MarkupRule{StoreID: str("s2")}, false},
		{"store and supplier", models.MarkupRule{StoreID: str("s1"), SupplierID: str("5")}, true},
		{"category absent from context", models.MarkupRule{CategoryID: str("c1")}, false},
		{"material absent from context", models.MarkupRule{SupplierID: str("5"), MaterialID: str("m1")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.Matches(tt.rule, ctx))
		})
	}
}

func TestMatchesAgreesWithDimensionRule(t *testing.T) {
	values := []*string{nil, str("a"), str("b")}
	for _, ruleVal := range values {
		for _, ctxVal := range values {
			rule := models.MarkupRule{CategoryID: ruleVal}
			pctx := models.PricingContext{CategoryID: ctxVal}

			var want bool
			if ctxVal != nil {
				want = ruleVal == nil || *ruleVal == *ctxVal
			} else {
				want = ruleVal == nil
			}
			assert.Equal(t, want, pricing.Matches(rule, pctx))
		}
	}
}

func TestResolver_PriorityWins(t *testing.T) {
	low := percentRule("a", "0.03")
	low.Priority = 1
	high := fixedRule("b", "2.00")
	high.Priority = 2
	high.SupplierID = str("5")

	got := pricing.Resolver{}.Resolve([]models.MarkupRule{low, high}, models.PricingContext{SupplierID: str("5")}, now)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)

	// order of input must not matter
	got = pricing.Resolver{}.Resolve([]models.MarkupRule{high, low}, models.PricingContext{SupplierID: str("5")}, now)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestResolver_TieBreaksOnLowestID(t *testing.T) {
	first := percentRule("rule-b", "0.01")
	second := percentRule("rule-a", "0.02")
	third := percentRule("rule-c", "0.03")

	got := pricing.Resolver{}.Resolve([]models.MarkupRule{first, second, third}, models.PricingContext{}, now)
	require.NotNil(t, got)
	assert.Equal(t, "rule-a", got.ID)
}

func TestResolver_SkipsExpiredAndMismatched(t *testing.T) {
	past := now.Add(-24 * time.Hour)
	expired := percentRule("expired", "0.5")
	expired.Priority = 100
	expired.EndTime = &past

	otherStore := percentRule("other", "0.4")
	otherStore.Priority = 50
	otherStore.StoreID = str("s2")

	fallback := percentRule("fallback", "0.1")

	got := pricing.Resolver{}.Resolve([]models.MarkupRule{expired, otherStore, fallback}, models.PricingContext{StoreID: str("s1")}, now)
	require.NotNil(t, got)
	assert.Equal(t, "fallback", got.ID)
}

func TestResolver_NoMatch(t *testing.T) {
	scoped := percentRule("scoped", "0.1")
	scoped.MaterialID = str("m1")

	assert.Nil(t, pricing.Resolver{}.Resolve(nil, models.PricingContext{}, now))
	assert.Nil(t, pricing.Resolver{}.Resolve([]models.MarkupRule{scoped}, models.PricingContext{}, now))
}

func TestCalculator_Compute(t *testing.T) {
	tests := []struct {
		name       string
		rule       *models.MarkupRule
		base       string
		wantMarkup string
		wantFinal  string
	}{
		{
			name:       "percent without bounds",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.05")},
			base:       "100",
			wantMarkup: "5.00",
			wantFinal:  "105.00",
		},
		{
			name:       "percent raised to minimum",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.05"), MinMarkup: decPtr("1")},
			base:       "10",
			wantMarkup: "1.00",
			wantFinal:  "11.00",
		},
		{
			name:       "percent capped at maximum",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.05"), MaxMarkup: decPtr("20")},
			base:       "1000",
			wantMarkup: "20.00",
			wantFinal:  "1020.00",
		},
		{
			name:       "percent rounds half away from zero",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.05")},
			base:       "0.5",
			wantMarkup: "0.03",
			wantFinal:  "0.53",
		},
		{
			name:       "final price keeps base precision",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.1")},
			base:       "9.999",
			wantMarkup: "1.00",
			wantFinal:  "10.999",
		},
		{
			name:       "fixed ignores base",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypeFixed, MarkupValue: dec("2.00")},
			base:       "50",
			wantMarkup: "2.00",
			wantFinal:  "52.00",
		},
		{
			name:       "negative base is computed as given",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.1")},
			base:       "-10",
			wantMarkup: "-1.00",
			wantFinal:  "-11.00",
		},
		{
			name:       "negative half rounds away from zero",
			rule:       &models.MarkupRule{MarkupType: models.MarkupTypePercent, MarkupValue: dec("0.05")},
			base:       "-0.5",
			wantMarkup: "-0.03",
			wantFinal:  "-0.53",
		},
		{
			name:       "no rule passes through",
			rule:       nil,
			base:       "42.42",
			wantMarkup: "0",
			wantFinal:  "42.42",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := pricing.Calculator{}.Compute(tt.rule, dec(tt.base))
			assert.True(t, quote.OriginalPrice.Equal(dec(tt.base)))
			assert.True(t, quote.MarkupAmount.Equal(dec(tt.wantMarkup)), "markup %s", quote.MarkupAmount)
			assert.True(t, quote.FinalPrice.Equal(dec(tt.wantFinal)), "final %s", quote.FinalPrice)
		})
	}
}

func TestCalculator_FixedInvariance(t *testing.T) {
	rule := &models.MarkupRule{MarkupType: models.MarkupTypeFixed, MarkupValue: dec("3.5")}
	for _, base := range []string{"0", "1", "99.99", "100000"} {
		quote := pricing.Calculator{}.Compute(rule, dec(base))
		assert.True(t, quote.MarkupAmount.Equal(dec("3.5")))
	}
}

func TestEngine_PriceWithMarkup(t *testing.T) {
	ruleA := percentRule("a", "0.03")
	ruleA.Priority = 1
	ruleB := fixedRule("b", "2.00")
	ruleB.Priority = 2
	ruleB.SupplierID = str("5")

	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return([]models.MarkupRule{ruleA, ruleB}, nil)
	engine := pricing.NewEngine(store, nil)

	quote, err := engine.PriceWithMarkup(context.Background(), models.PricingContext{SupplierID: str("5")}, dec("50"), now)
	require.NoError(t, err)
	require.NotNil(t, quote.Rule)
	assert.Equal(t, "b", quote.Rule.ID)
	assert.True(t, quote.FinalPrice.Equal(dec("52.00")))
	store.AssertExpectations(t)
}

func TestEngine_PassthroughWhenNothingMatches(t *testing.T) {
	scoped := fixedRule("scoped", "10")
	scoped.StoreID = str("other")

	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return([]models.MarkupRule{scoped}, nil)
	engine := pricing.NewEngine(store, nil)

	quote, err := engine.PriceWithMarkup(context.Background(), models.PricingContext{StoreID: str("mine")}, dec("17.25"), now)
	require.NoError(t, err)
	assert.Nil(t, quote.Rule)
	assert.Nil(t, quote.RuleID())
	assert.True(t, quote.MarkupAmount.IsZero())
	assert.True(t, quote.FinalPrice.Equal(dec("17.25")))
}

func TestEngine_FutureRuleExcludedEverywhere(t *testing.T) {
	future := now.Add(48 * time.Hour)
	pending := percentRule("pending", "0.5")
	pending.StartTime = &future

	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return([]models.MarkupRule{pending}, nil)
	engine := pricing.NewEngine(store, nil)

	active, err := engine.ResolveActiveRules(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, active)

	quote, err := engine.PriceWithMarkup(context.Background(), models.PricingContext{}, dec("100"), now)
	require.NoError(t, err)
	assert.Nil(t, quote.Rule)
	assert.True(t, quote.FinalPrice.Equal(dec("100")))
}

func TestEngine_ResolveActiveRulesOrdering(t *testing.T) {
	past := now.Add(-time.Hour)
	r1 := percentRule("r1", "0.01")
	r1.Priority = 1
	r2 := percentRule("r2", "0.01")
	r2.Priority = 5
	r3 := percentRule("r3", "0.01")
	r3.Priority = 5
	expired := percentRule("r4", "0.01")
	expired.Priority = 9
	expired.EndTime = &past

	input := []models.MarkupRule{r1, r3, expired, r2}
	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return(input, nil)
	engine := pricing.NewEngine(store, nil)

	active, err := engine.ResolveActiveRules(context.Background(), now)
	require.NoError(t, err)
	ids := make([]string, 0, len(active))
	for _, r := range active {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r2", "r3", "r1"}, ids)
	// the store's slice is left untouched
	assert.Equal(t, "r1", input[0].ID)
	assert.Equal(t, "r3", input[1].ID)
}

func TestEngine_ActiveListingAgreesWithPricing(t *testing.T) {
	start := now.Add(-time.Minute)
	end := now.Add(time.Minute)
	windowed := fixedRule("windowed", "1")
	windowed.StartTime = &start
	windowed.EndTime = &end

	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return([]models.MarkupRule{windowed}, nil)
	engine := pricing.NewEngine(store, nil)

	for _, at := range []time.Time{start.Add(-time.Second), start, now, end, end.Add(time.Second)} {
		active, err := engine.ResolveActiveRules(context.Background(), at)
		require.NoError(t, err)
		quote, err := engine.PriceWithMarkup(context.Background(), models.PricingContext{}, dec("10"), at)
		require.NoError(t, err)
		assert.Equal(t, len(active) == 1, quote.Rule != nil, "at %s", at)
	}
}

func TestEngine_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := new(MockRuleStore)
	store.On("AllEnabledRules", mock.Anything).Return(nil, storeErr)
	engine := pricing.NewEngine(store, nil)

	quote, err := engine.PriceWithMarkup(context.Background(), models.PricingContext{}, dec("10"), now)
	assert.Nil(t, quote)
	assert.ErrorIs(t, err, storeErr)

	_, err = engine.ResolveActiveRules(context.Background(), now)
	assert.ErrorIs(t, err, storeErr)
}
