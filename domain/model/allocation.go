package model

import (
	"fmt"
	"strings"
	"time"
)

// AllocationPolicyType determines how a policy yields candidate clusters.
type AllocationPolicyType string

const (
	AllocationPolicyManual    AllocationPolicyType = "manual"
	AllocationPolicyRuleBased AllocationPolicyType = "rule_based"
)

// Condition keys usable in allocation rule matchers. Closed set.
const (
	CondRegionIs      = "region_is"
	CondRegionIn      = "region_in"
	CondUsernameIn    = "username_in"
	CondEnvironmentIs = "env_is"
)

var allocationConditionKeys = map[string]struct{}{
	CondRegionIs:      {},
	CondRegionIn:      {},
	CondUsernameIn:    {},
	CondEnvironmentIs: {},
}

// AllocationContext carries the dimensions an allocation decision depends on.
type AllocationContext struct {
	TenantID    string
	Region      string
	Environment string
	Username    string
}

// ManualAllocation lists candidate clusters directly, either flat or split
// per environment.
type ManualAllocation struct {
	EnvSpecific bool                `json:"env_specific"`
	Clusters    []string            `json:"clusters,omitempty"`
	EnvClusters map[string][]string `json:"env_clusters,omitempty"`
}

// AllocationRule matches a context and supplies a nested manual policy.
// An empty matcher matches unconditionally; the last rule of a rule-based
// policy must be such a catch-all.
type AllocationRule struct {
	Matcher map[string]string `json:"matcher,omitempty"`
	Policy  ManualAllocation  `json:"policy"`
}

// AllocationPolicy is the per-tenant rule set governing cluster allocation.
type AllocationPolicy struct {
	UUID      string
	TenantID  string
	Type      AllocationPolicyType
	Manual    *ManualAllocation
	Rules     []AllocationRule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces policy invariants: closed matcher key set, presence of
// the branch matching the declared type, and a trailing catch-all rule.
func (p *AllocationPolicy) Validate() error {
	switch p.Type {
	case AllocationPolicyManual:
		if p.Manual == nil {
			return wrapValidation("manual policy requires a manual allocation")
		}
		return p.Manual.validate()
	case AllocationPolicyRuleBased:
		if len(p.Rules) == 0 {
			return wrapValidation("rule-based policy requires at least one rule")
		}
		for i, rule := range p.Rules {
			for key := range rule.Matcher {
				if _, ok := allocationConditionKeys[key]; !ok {
					return wrapValidation("unknown matcher condition key: " + key)
				}
			}
			if err := rule.Policy.validate(); err != nil {
				return fmt.Errorf("rule %d: %w", i, err)
			}
		}
		if last := p.Rules[len(p.Rules)-1]; len(last.Matcher) != 0 {
			return wrapValidation("the last allocation rule must be an unconditional catch-all")
		}
		return nil
	default:
		return wrapValidation("unknown allocation policy type: " + string(p.Type))
	}
}

func (m *ManualAllocation) validate() error {
	if m.EnvSpecific {
		if len(m.EnvClusters) == 0 {
			return wrapValidation("env-specific allocation requires env_clusters")
		}
		for env, clusters := range m.EnvClusters {
			if env != EnvStag && env != EnvProd {
				return wrapValidation("unknown environment in env_clusters: " + env)
			}
			if len(clusters) == 0 {
				return wrapValidation("empty cluster list for environment " + env)
			}
		}
		return nil
	}
	if len(m.Clusters) == 0 {
		return wrapValidation("manual allocation requires a cluster list")
	}
	return nil
}

// Evaluate resolves the candidate cluster names for a context. Rule-based
// policies are walked in order; the first rule whose matcher matches on all
// conditions supplies the nested manual policy. Evaluation is pure.
func (p *AllocationPolicy) Evaluate(ctx AllocationContext) ([]string, error) {
	switch p.Type {
	case AllocationPolicyManual:
		if p.Manual == nil {
			return nil, wrapValidation("manual policy without manual allocation")
		}
		return p.Manual.evaluate(ctx)
	case AllocationPolicyRuleBased:
		for _, rule := range p.Rules {
			if matchRule(rule.Matcher, ctx) {
				return rule.Policy.evaluate(ctx)
			}
		}
		return nil, ErrNoEligibleCluster
	default:
		return nil, wrapValidation("unknown allocation policy type: " + string(p.Type))
	}
}

func (m *ManualAllocation) evaluate(ctx AllocationContext) ([]string, error) {
	if !m.EnvSpecific {
		return m.Clusters, nil
	}
	clusters, ok := m.EnvClusters[ctx.Environment]
	if !ok || len(clusters) == 0 {
		return nil, ErrNoEligibleCluster
	}
	return clusters, nil
}

func matchRule(matcher map[string]string, ctx AllocationContext) bool {
	for key, want := range matcher {
		switch key {
		case CondRegionIs:
			if ctx.Region != want {
				return false
			}
		case CondRegionIn:
			if !containsCSV(want, ctx.Region) {
				return false
			}
		case CondUsernameIn:
			if !containsCSV(want, ctx.Username) {
				return false
			}
		case CondEnvironmentIs:
			if ctx.Environment != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsCSV(csv, value string) bool {
	if value == "" {
		return false
	}
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == value {
			return true
		}
	}
	return false
}
