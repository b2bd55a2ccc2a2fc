package model

import (
	"errors"
	"testing"
)

func TestManualPolicyEvaluate(t *testing.T) {
	p := &AllocationPolicy{
		Type:   AllocationPolicyManual,
		Manual: &ManualAllocation{Clusters: []string{"c1", "c2"}},
	}
	got, err := p.Evaluate(AllocationContext{Environment: EnvStag})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 2 || got[0] != "c1" {
		t.Fatalf("unexpected clusters: %v", got)
	}
}

func TestManualPolicyEnvSpecific(t *testing.T) {
	p := &AllocationPolicy{
		Type: AllocationPolicyManual,
		Manual: &ManualAllocation{
			EnvSpecific: true,
			EnvClusters: map[string][]string{EnvStag: {"c-stag"}, EnvProd: {"c-prod"}},
		},
	}
	got, err := p.Evaluate(AllocationContext{Environment: EnvProd})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0] != "c-prod" {
		t.Fatalf("unexpected clusters: %v", got)
	}
}

func TestRuleBasedFirstMatchWins(t *testing.T) {
	p := &AllocationPolicy{
		Type: AllocationPolicyRuleBased,
		Rules: []AllocationRule{
			{
				Matcher: map[string]string{CondRegionIs: "ieod"},
				Policy:  ManualAllocation{Clusters: []string{"c-ieod"}},
			},
			{
				Matcher: map[string]string{CondUsernameIn: "alice, bob"},
				Policy:  ManualAllocation{Clusters: []string{"c-vip"}},
			},
			{
				Policy: ManualAllocation{Clusters: []string{"c-default"}},
			},
		},
	}
	cases := []struct {
		name string
		ctx  AllocationContext
		want string
	}{
		{"region match", AllocationContext{Region: "ieod"}, "c-ieod"},
		{"username match", AllocationContext{Region: "default", Username: "bob"}, "c-vip"},
		{"catch-all", AllocationContext{Region: "default", Username: "carol"}, "c-default"},
	}
	for _, tc := range cases {
		got, err := p.Evaluate(tc.ctx)
		if err != nil {
			t.Fatalf("%s: evaluate: %v", tc.name, err)
		}
		if got[0] != tc.want {
			t.Fatalf("%s: got %v, want %s", tc.name, got, tc.want)
		}
	}
}

func TestRuleBasedAllConditionsMustMatch(t *testing.T) {
	p := &AllocationPolicy{
		Type: AllocationPolicyRuleBased,
		Rules: []AllocationRule{
			{
				Matcher: map[string]string{CondRegionIs: "ieod", CondEnvironmentIs: EnvProd},
				Policy:  ManualAllocation{Clusters: []string{"c-prod-ieod"}},
			},
			{Policy: ManualAllocation{Clusters: []string{"c-default"}}},
		},
	}
	got, _ := p.Evaluate(AllocationContext{Region: "ieod", Environment: EnvStag})
	if got[0] != "c-default" {
		t.Fatalf("partial matcher match must not select the rule, got %v", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	bad := &AllocationPolicy{
		Type: AllocationPolicyRuleBased,
		Rules: []AllocationRule{
			{Matcher: map[string]string{"bogus_key": "x"}, Policy: ManualAllocation{Clusters: []string{"c1"}}},
			{Policy: ManualAllocation{Clusters: []string{"c1"}}},
		},
	}
	if err := bad.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for unknown matcher key, got %v", err)
	}

	noCatchAll := &AllocationPolicy{
		Type: AllocationPolicyRuleBased,
		Rules: []AllocationRule{
			{Matcher: map[string]string{CondRegionIs: "x"}, Policy: ManualAllocation{Clusters: []string{"c1"}}},
		},
	}
	if err := noCatchAll.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for missing catch-all, got %v", err)
	}

	ok := &AllocationPolicy{
		Type:   AllocationPolicyManual,
		Manual: &ManualAllocation{Clusters: []string{"c1"}},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
}
