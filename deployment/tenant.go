// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/Azure/seclab"
	"github.com/Azure/seclab/assets"
	"github.com/brunoga/deep"
	"github.com/google/uuid"
)

// Well-known value names that the deployment layer itself consumes.
const (
	WellKnownSubscriptionId     = "subscription_id"
	WellKnownKeyVaultName       = "key_vault_name"
	WellKnownDefenderInitiative = "defender_initiative_id"
	WellKnownLabUserDomain      = "lab_user_domain"
)

// roleAssignmentNamespace is the UUIDv5 namespace for deterministic role
// assignment names. Deriving the name from scope, role and principal makes
// re-runs converge on the same assignment.
var roleAssignmentNamespace = uuid.MustParse("8a3c1f2e-5b7d-4e19-9c64-2f0a8d3b6c51")

var wellKnownPlaceholderRegex = regexp.MustCompile(`\$\{([a-z0-9_]+)\}`)

// Tenant represents the deployment target: a set of named scenarios, each
// built from a blueprint bound to well-known values.
type Tenant struct {
	scenarios map[string]*Scenario
	seclab    *seclab.SecLab
	mu        *sync.RWMutex
}

// NewTenant creates a new Tenant backed by the supplied catalog.
func NewTenant(s *seclab.SecLab) *Tenant {
	return &Tenant{
		scenarios: make(map[string]*Scenario),
		seclab:    s,
		mu:        new(sync.RWMutex),
	}
}

// Scenario is a blueprint bound to a tenant: deep copies of the catalog
// resources with prefixes applied and well-known values substituted.
type Scenario struct {
	name   string
	prefix string

	sitDefinitions      map[string]*assets.SitDefinition
	sensitivityLabels   map[string]*assets.SensitivityLabel
	dlpPolicies         map[string]*assets.DlpPolicy
	administrativeUnits map[string]*assets.AdministrativeUnitDefinition
	appRegistrations    map[string]*assets.AppRegistrationDefinition
	securityGroups      map[string]*assets.SecurityGroupDefinition
	wkv                 seclab.WellKnownValues
}

// ScenarioAddRequest is the request to add a scenario to a Tenant.
type ScenarioAddRequest struct {
	// Name identifies the scenario within the tenant.
	Name string
	// Prefix is prepended to display names and mail nicknames so that multiple
	// scenarios can coexist in one tenant. May be empty.
	Prefix string
	// Blueprint should have been obtained via SecLab.CopyBlueprint and have
	// its well-known values set with Blueprint.WithWellKnownValues.
	Blueprint *seclab.Blueprint
}

// Scenario returns the scenario with the given name, or nil.
func (t *Tenant) Scenario(name string) *Scenario {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scenarios[name]
}

// ScenarioNames returns the scenario names as a slice of string.
func (t *Tenant) ScenarioNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]string, 0, len(t.scenarios))
	for name := range t.scenarios {
		res = append(res, name)
	}
	return res
}

// AddScenario adds a scenario to the tenant from the supplied blueprint.
// The blueprint's resources are deep copied out of the catalog, the prefix is
// applied and `${name}` placeholders are substituted from the blueprint's
// well-known values merged over the library defaults.
func (t *Tenant) AddScenario(ctx context.Context, req *ScenarioAddRequest) error {
	if req == nil || req.Blueprint == nil {
		return errors.New("Tenant.AddScenario: request or blueprint is nil")
	}
	if req.Name == "" {
		return errors.New("Tenant.AddScenario: scenario name is empty")
	}
	if req.Blueprint.WellKnownValues() == nil {
		return errors.New("Tenant.AddScenario: blueprint well known values not set, use Blueprint.WithWellKnownValues() to update")
	}
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.scenarios[req.Name]; exists {
		return fmt.Errorf("Tenant.AddScenario: scenario %s already exists", req.Name)
	}

	sc := &Scenario{
		name:                req.Name,
		prefix:              req.Prefix,
		sitDefinitions:      make(map[string]*assets.SitDefinition),
		sensitivityLabels:   make(map[string]*assets.SensitivityLabel),
		dlpPolicies:         make(map[string]*assets.DlpPolicy),
		administrativeUnits: make(map[string]*assets.AdministrativeUnitDefinition),
		appRegistrations:    make(map[string]*assets.AppRegistrationDefinition),
		securityGroups:      make(map[string]*assets.SecurityGroupDefinition),
		wkv:                 req.Blueprint.WellKnownValues(),
	}

	bp := req.Blueprint
	for name := range bp.SitDefinitions.Iter() {
		src, err := t.seclab.SitDefinition(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying sit definition %s: %w", name, err)
		}
		sc.sitDefinitions[name] = cp
	}
	for name := range bp.SensitivityLabels.Iter() {
		src, err := t.seclab.SensitivityLabel(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying sensitivity label %s: %w", name, err)
		}
		sc.sensitivityLabels[name] = cp
	}
	for name := range bp.DlpPolicies.Iter() {
		src, err := t.seclab.DlpPolicy(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying dlp policy %s: %w", name, err)
		}
		sc.dlpPolicies[name] = cp
	}
	for name := range bp.AdministrativeUnits.Iter() {
		src, err := t.seclab.AdministrativeUnit(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying administrative unit %s: %w", name, err)
		}
		sc.administrativeUnits[name] = cp
	}
	for name := range bp.AppRegistrations.Iter() {
		src, err := t.seclab.AppRegistration(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying app registration %s: %w", name, err)
		}
		sc.appRegistrations[name] = cp
	}
	for name := range bp.SecurityGroups.Iter() {
		src, err := t.seclab.SecurityGroup(name)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: %w", err)
		}
		cp, err := deep.Copy(src)
		if err != nil {
			return fmt.Errorf("Tenant.AddScenario: copying security group %s: %w", name, err)
		}
		sc.securityGroups[name] = cp
	}

	if err := sc.update(t.seclab); err != nil {
		return err
	}

	t.scenarios[req.Name] = sc
	return nil
}

// Name returns the name of the scenario.
func (s *Scenario) Name() string {
	return s.name
}

// Prefix returns the display name prefix of the scenario.
func (s *Scenario) Prefix() string {
	return s.prefix
}

// WellKnownValue returns the named well-known value bound to the scenario.
func (s *Scenario) WellKnownValue(name string) (string, bool) {
	v, ok := s.wkv[name]
	return v, ok
}

// SitDefinitions returns the scenario's SIT definitions keyed by catalog name.
func (s *Scenario) SitDefinitions() map[string]*assets.SitDefinition {
	return s.sitDefinitions
}

// SensitivityLabels returns the scenario's sensitivity labels keyed by catalog name.
func (s *Scenario) SensitivityLabels() map[string]*assets.SensitivityLabel {
	return s.sensitivityLabels
}

// DlpPolicies returns the scenario's DLP policies keyed by catalog name.
func (s *Scenario) DlpPolicies() map[string]*assets.DlpPolicy {
	return s.dlpPolicies
}

// AdministrativeUnits returns the scenario's administrative units keyed by catalog name.
func (s *Scenario) AdministrativeUnits() map[string]*assets.AdministrativeUnitDefinition {
	return s.administrativeUnits
}

// AppRegistrations returns the scenario's app registrations keyed by catalog name.
func (s *Scenario) AppRegistrations() map[string]*assets.AppRegistrationDefinition {
	return s.appRegistrations
}

// SecurityGroups returns the scenario's security groups keyed by catalog name.
func (s *Scenario) SecurityGroups() map[string]*assets.SecurityGroupDefinition {
	return s.securityGroups
}

// update applies the prefix and substitutes well-known values into the
// scenario's resources. Library defaults fill any value not bound explicitly.
func (s *Scenario) update(cat *seclab.SecLab) error {
	expand := func(in string) (string, error) {
		var expandErr error
		out := wellKnownPlaceholderRegex.ReplaceAllStringFunc(in, func(m string) string {
			key := wellKnownPlaceholderRegex.FindStringSubmatch(m)[1]
			if v, ok := s.wkv[key]; ok {
				return v
			}
			if v, ok := cat.DefaultValue(key); ok {
				return v
			}
			expandErr = errors.Join(expandErr,
				fmt.Errorf("scenario %s: no value for placeholder %s", s.name, m))
			return m
		})
		return out, expandErr
	}

	for _, lbl := range s.sensitivityLabels {
		lbl.DisplayName = s.prefix + lbl.DisplayName
		if lbl.Protection != nil && lbl.Protection.ContentMarking != nil {
			var err error
			if lbl.Protection.ContentMarking.HeaderText, err = expand(lbl.Protection.ContentMarking.HeaderText); err != nil {
				return err
			}
			if lbl.Protection.ContentMarking.FooterText, err = expand(lbl.Protection.ContentMarking.FooterText); err != nil {
				return err
			}
			if lbl.Protection.ContentMarking.Watermark, err = expand(lbl.Protection.ContentMarking.Watermark); err != nil {
				return err
			}
		}
	}
	for _, pol := range s.dlpPolicies {
		pol.DisplayName = s.prefix + pol.DisplayName
		var err error
		if pol.Description, err = expand(pol.Description); err != nil {
			return err
		}
	}
	for _, au := range s.administrativeUnits {
		au.DisplayName = s.prefix + au.DisplayName
		var err error
		if au.Description, err = expand(au.Description); err != nil {
			return err
		}
		if au.MembershipRule, err = expand(au.MembershipRule); err != nil {
			return err
		}
	}
	for _, app := range s.appRegistrations {
		app.DisplayName = s.prefix + app.DisplayName
		var err error
		if app.KeyVaultSecretName, err = expand(app.KeyVaultSecretName); err != nil {
			return err
		}
		for i := range app.RbacGrants {
			if app.RbacGrants[i].Scope, err = expand(app.RbacGrants[i].Scope); err != nil {
				return err
			}
		}
	}
	for _, grp := range s.securityGroups {
		grp.DisplayName = s.prefix + grp.DisplayName
		grp.MailNickname = s.prefix + grp.MailNickname
		var err error
		if grp.Description, err = expand(grp.Description); err != nil {
			return err
		}
	}
	return nil
}

// RoleAssignmentName returns the deterministic role assignment name (a UUIDv5)
// for the given scope, role definition and principal.
func RoleAssignmentName(scope, roleDefinitionId, principalId string) string {
	return uuid.NewSHA1(roleAssignmentNamespace, []byte(scope+"/"+roleDefinitionId+"/"+principalId)).String()
}
