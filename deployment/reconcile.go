// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/Azure/seclab/assets"
	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/internal/log"
	"github.com/Azure/seclab/to"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelism        = 10
	defaultPropagationTimeout = 5 * time.Minute
	propagationBaseDelay      = 2 * time.Second
	propagationMaxDelay       = 30 * time.Second
)

// ReconcilerOptions are options for the Reconciler.
type ReconcilerOptions struct {
	// Parallelism is the number of parallel requests made within a phase.
	Parallelism int
	// PropagationTimeout bounds how long to wait for a freshly created
	// directory object to become visible to dependent operations.
	PropagationTimeout time.Duration
}

// Reconciler applies a Tenant scenario to the live services.
type Reconciler struct {
	tenant *Tenant
	graph  *graph.Client

	roleAssignments *armauthorization.RoleAssignmentsClient
	policyClient    *armpolicy.ClientFactory
	secretsClient   *azsecrets.Client

	opts   ReconcilerOptions
	logger zerolog.Logger
}

// NewReconciler creates a Reconciler for the supplied tenant and Graph client.
func NewReconciler(t *Tenant, g *graph.Client, opts *ReconcilerOptions) *Reconciler {
	o := ReconcilerOptions{
		Parallelism:        defaultParallelism,
		PropagationTimeout: defaultPropagationTimeout,
	}
	if opts != nil {
		if opts.Parallelism > 0 {
			o.Parallelism = opts.Parallelism
		}
		if opts.PropagationTimeout > 0 {
			o.PropagationTimeout = opts.PropagationTimeout
		}
	}
	return &Reconciler{
		tenant: t,
		graph:  g,
		opts:   o,
		logger: log.WithComponent("reconciler"),
	}
}

// AddRoleAssignmentsClient adds an authenticated role assignments client.
// This is needed to reconcile Azure RBAC grants.
func (r *Reconciler) AddRoleAssignmentsClient(client *armauthorization.RoleAssignmentsClient) {
	r.roleAssignments = client
}

// AddPolicyClient adds an authenticated *armpolicy.ClientFactory.
// This is needed to assign the Defender security policy initiative.
func (r *Reconciler) AddPolicyClient(client *armpolicy.ClientFactory) {
	r.policyClient = client
}

// AddSecretsClient adds an authenticated Key Vault secrets client.
// This is needed to store generated application secrets.
func (r *Reconciler) AddSecretsClient(client *azsecrets.Client) {
	r.secretsClient = client
}

// applyState carries ids resolved during earlier phases into later ones.
type applyState struct {
	mu           sync.Mutex
	groupIds     map[string]string // catalog name -> group object id
	appObjectIds map[string]string // catalog name -> application object id
	appIds       map[string]string // catalog name -> application (client) id
	spIds        map[string]string // catalog name -> service principal object id
}

func newApplyState() *applyState {
	return &applyState{
		groupIds:     make(map[string]string),
		appObjectIds: make(map[string]string),
		appIds:       make(map[string]string),
		spIds:        make(map[string]string),
	}
}

func (st *applyState) set(m map[string]string, k, v string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	m[k] = v
}

func (st *applyState) get(m map[string]string, k string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	v, ok := m[k]
	return v, ok
}

// Apply reconciles the named scenario against the live services.
// Phases are ordered by dependency: groups, applications, service principals,
// permission grants, administrative units, RBAC role assignments, the Defender
// policy assignment and finally secrets. Within a phase independent resources
// are reconciled in parallel. Apply stops at the first phase with a failure,
// since later phases depend on earlier ones; the returned ApplyResult contains
// everything attempted.
func (r *Reconciler) Apply(ctx context.Context, scenarioName string) (*ApplyResult, error) {
	sc := r.tenant.Scenario(scenarioName)
	if sc == nil {
		return nil, fmt.Errorf("Reconciler.Apply: scenario %s not found", scenarioName)
	}

	res := newApplyResult(scenarioName)
	st := newApplyState()
	started := time.Now()
	defer func() { res.Duration = time.Since(started) }()

	phases := []struct {
		name string
		fn   func(context.Context, *Scenario, *applyState, *ApplyResult) error
	}{
		{"securityGroups", r.ensureSecurityGroups},
		{"applications", r.ensureApplications},
		{"servicePrincipals", r.ensureServicePrincipals},
		{"appRoleGrants", r.ensureAppRoleGrants},
		{"administrativeUnits", r.ensureAdministrativeUnits},
		{"rbacAssignments", r.ensureRbacAssignments},
		{"defenderPolicy", r.ensureDefenderPolicy},
		{"secrets", r.ensureSecrets},
	}
	for _, phase := range phases {
		r.logger.Info().Str("scenario", scenarioName).Str("phase", phase.name).Msg("reconciling phase")
		if err := phase.fn(ctx, sc, st, res); err != nil {
			return res, fmt.Errorf("Reconciler.Apply: phase %s: %w", phase.name, err)
		}
	}
	return res, nil
}

// ensureSecurityGroups reconciles the scenario's security groups.
// The mail nickname is the stable lookup key.
func (r *Reconciler) ensureSecurityGroups(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.SecurityGroups() {
		name, def := name, def
		grp.Go(func() error {
			existing, err := r.graph.FindGroupByMailNickname(ctxGrp, def.MailNickname)
			switch {
			case err == nil:
				if existing.DisplayName == def.DisplayName && existing.Description == def.Description {
					st.set(st.groupIds, name, existing.Id)
					res.record(ResourceResult{Kind: "securityGroup", Name: name, Id: existing.Id, Action: ActionUnchanged})
					return nil
				}
				patch := &graph.Group{DisplayName: def.DisplayName, Description: def.Description}
				if err := r.graph.UpdateGroup(ctxGrp, existing.Id, patch); err != nil {
					res.record(ResourceResult{Kind: "securityGroup", Name: name, Id: existing.Id, Action: ActionFailed, Error: err.Error()})
					return err
				}
				st.set(st.groupIds, name, existing.Id)
				res.record(ResourceResult{Kind: "securityGroup", Name: name, Id: existing.Id, Action: ActionUpdated})
				return nil
			case graph.IsNotFound(err):
				created, err := r.graph.CreateSecurityGroup(ctxGrp, def.DisplayName, def.MailNickname, def.Description)
				if err != nil {
					res.record(ResourceResult{Kind: "securityGroup", Name: name, Action: ActionFailed, Error: err.Error()})
					return err
				}
				st.set(st.groupIds, name, created.Id)
				res.record(ResourceResult{Kind: "securityGroup", Name: name, Id: created.Id, Action: ActionCreated})
				return nil
			default:
				res.record(ResourceResult{Kind: "securityGroup", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

// ensureApplications reconciles the scenario's application registrations.
// The display name is the lookup key; display names are not unique in Entra ID
// so the scenario prefix should be chosen to avoid collisions with unrelated apps.
func (r *Reconciler) ensureApplications(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.AppRegistrations() {
		name, def := name, def
		grp.Go(func() error {
			audience := def.SignInAudience
			if audience == "" {
				audience = "AzureADMyOrg"
			}
			existing, err := r.graph.FindApplicationByDisplayName(ctxGrp, def.DisplayName)
			switch {
			case err == nil:
				if existing.SignInAudience == audience {
					st.set(st.appObjectIds, name, existing.Id)
					st.set(st.appIds, name, existing.AppId)
					res.record(ResourceResult{Kind: "application", Name: name, Id: existing.Id, Action: ActionUnchanged})
					return nil
				}
				patch := &graph.Application{SignInAudience: audience}
				if err := r.graph.UpdateApplication(ctxGrp, existing.Id, patch); err != nil {
					res.record(ResourceResult{Kind: "application", Name: name, Id: existing.Id, Action: ActionFailed, Error: err.Error()})
					return err
				}
				st.set(st.appObjectIds, name, existing.Id)
				st.set(st.appIds, name, existing.AppId)
				res.record(ResourceResult{Kind: "application", Name: name, Id: existing.Id, Action: ActionUpdated})
				return nil
			case graph.IsNotFound(err):
				created, err := r.graph.CreateApplication(ctxGrp, &graph.Application{
					DisplayName:    def.DisplayName,
					SignInAudience: audience,
				})
				if err != nil {
					res.record(ResourceResult{Kind: "application", Name: name, Action: ActionFailed, Error: err.Error()})
					return err
				}
				st.set(st.appObjectIds, name, created.Id)
				st.set(st.appIds, name, created.AppId)
				res.record(ResourceResult{Kind: "application", Name: name, Id: created.Id, Action: ActionCreated})
				return nil
			default:
				res.record(ResourceResult{Kind: "application", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

// ensureServicePrincipals reconciles a service principal for each application.
// A freshly created application may not be visible to the service principal
// API immediately, so creation is retried until the propagation timeout.
func (r *Reconciler) ensureServicePrincipals(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name := range sc.AppRegistrations() {
		name := name
		grp.Go(func() error {
			appId, ok := st.get(st.appIds, name)
			if !ok {
				err := fmt.Errorf("no application id recorded for %s", name)
				res.record(ResourceResult{Kind: "servicePrincipal", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			existing, err := r.graph.FindServicePrincipalByAppId(ctxGrp, appId)
			if err == nil {
				st.set(st.spIds, name, existing.Id)
				res.record(ResourceResult{Kind: "servicePrincipal", Name: name, Id: existing.Id, Action: ActionUnchanged})
				return nil
			}
			if !graph.IsNotFound(err) {
				res.record(ResourceResult{Kind: "servicePrincipal", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			sp, err := pollUntil(ctxGrp, r.opts.PropagationTimeout, func() (*graph.ServicePrincipal, error) {
				return r.graph.CreateServicePrincipal(ctxGrp, appId)
			}, spCreateRetryable)
			if err != nil {
				res.record(ResourceResult{Kind: "servicePrincipal", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			st.set(st.spIds, name, sp.Id)
			res.record(ResourceResult{Kind: "servicePrincipal", Name: name, Id: sp.Id, Action: ActionCreated})
			return nil
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

// spCreateRetryable treats propagation-related failures as retryable: the
// application is not yet visible (400/404) or the service is throttling.
func spCreateRetryable(err error) bool {
	return graph.IsRetryable(err) || graph.IsNotFound(err) || hasBadRequest(err)
}

// ensureAppRoleGrants grants the configured Microsoft Graph application
// permissions to each service principal. This is the API equivalent of
// `az ad app permission admin-consent`.
func (r *Reconciler) ensureAppRoleGrants(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	needed := false
	for _, def := range sc.AppRegistrations() {
		if len(def.GraphAppRoles) > 0 {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	graphSp, err := r.graph.FindServicePrincipalByAppId(ctx, graph.GraphResourceAppId)
	if err != nil {
		return fmt.Errorf("resolving Microsoft Graph service principal: %w", err)
	}

	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.AppRegistrations() {
		name, def := name, def
		if len(def.GraphAppRoles) == 0 {
			continue
		}
		grp.Go(func() error {
			spId, ok := st.get(st.spIds, name)
			if !ok {
				err := fmt.Errorf("no service principal recorded for %s", name)
				res.record(ResourceResult{Kind: "appRoleGrant", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			existing, err := r.graph.ListAppRoleAssignments(ctxGrp, spId)
			if err != nil {
				res.record(ResourceResult{Kind: "appRoleGrant", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			granted := make(map[string]bool, len(existing))
			for _, a := range existing {
				granted[a.AppRoleId] = true
			}
			for _, roleValue := range def.GraphAppRoles {
				roleId, err := graph.ResolveAppRoleId(graphSp, roleValue)
				if err != nil {
					res.record(ResourceResult{Kind: "appRoleGrant", Name: name + "/" + roleValue, Action: ActionFailed, Error: err.Error()})
					return err
				}
				if granted[roleId] {
					res.record(ResourceResult{Kind: "appRoleGrant", Name: name + "/" + roleValue, Action: ActionUnchanged})
					continue
				}
				_, err = pollUntil(ctxGrp, r.opts.PropagationTimeout, func() (*graph.AppRoleAssignment, error) {
					return r.graph.GrantAppRole(ctxGrp, spId, graphSp.Id, roleId)
				}, spCreateRetryable)
				if err != nil {
					if graph.IsConflict(err) {
						res.record(ResourceResult{Kind: "appRoleGrant", Name: name + "/" + roleValue, Action: ActionUnchanged})
						continue
					}
					res.record(ResourceResult{Kind: "appRoleGrant", Name: name + "/" + roleValue, Action: ActionFailed, Error: err.Error()})
					return err
				}
				res.record(ResourceResult{Kind: "appRoleGrant", Name: name + "/" + roleValue, Action: ActionCreated})
			}
			return nil
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

// ensureAdministrativeUnits reconciles the scenario's administrative units,
// their members and their scoped role grants.
func (r *Reconciler) ensureAdministrativeUnits(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.AdministrativeUnits() {
		name, def := name, def
		grp.Go(func() error {
			au, action, err := r.ensureAdministrativeUnit(ctxGrp, def)
			if err != nil {
				res.record(ResourceResult{Kind: "administrativeUnit", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			res.record(ResourceResult{Kind: "administrativeUnit", Name: name, Id: au.Id, Action: action})

			if def.MembershipType != "dynamic" {
				if err := r.ensureAdministrativeUnitMembers(ctxGrp, name, au.Id, def.Members, st, res); err != nil {
					return err
				}
			}
			return r.ensureScopedRoleGrants(ctxGrp, name, au.Id, def.RoleGrants, st, res)
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

func (r *Reconciler) ensureAdministrativeUnit(ctx context.Context, def *assets.AdministrativeUnitDefinition) (*graph.AdministrativeUnit, Action, error) {
	desired := &graph.AdministrativeUnit{
		DisplayName: def.DisplayName,
		Description: def.Description,
	}
	if def.MembershipType == "dynamic" {
		desired.MembershipType = "Dynamic"
		desired.MembershipRule = def.MembershipRule
		desired.MembershipRuleProcessingState = "On"
	}

	existing, err := r.graph.FindAdministrativeUnitByDisplayName(ctx, def.DisplayName)
	switch {
	case err == nil:
		if existing.Description == def.Description && existing.MembershipRule == desired.MembershipRule {
			return existing, ActionUnchanged, nil
		}
		if err := r.graph.UpdateAdministrativeUnit(ctx, existing.Id, desired); err != nil {
			return nil, ActionFailed, err
		}
		return existing, ActionUpdated, nil
	case graph.IsNotFound(err):
		created, err := r.graph.CreateAdministrativeUnit(ctx, desired)
		if err != nil {
			return nil, ActionFailed, err
		}
		return created, ActionCreated, nil
	default:
		return nil, ActionFailed, err
	}
}

func (r *Reconciler) ensureAdministrativeUnitMembers(ctx context.Context, name, auId string, members []string, st *applyState, res *ApplyResult) error {
	if len(members) == 0 {
		return nil
	}
	existing, err := r.graph.ListAdministrativeUnitMembers(ctx, auId)
	if err != nil {
		res.record(ResourceResult{Kind: "administrativeUnitMember", Name: name, Action: ActionFailed, Error: err.Error()})
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, m := range existing {
		present[m.Id] = true
	}
	for _, member := range members {
		memberId, ok := st.get(st.groupIds, member)
		if !ok {
			err := fmt.Errorf("administrative unit %s references group %s which is not part of the scenario", name, member)
			res.record(ResourceResult{Kind: "administrativeUnitMember", Name: name + "/" + member, Action: ActionFailed, Error: err.Error()})
			return err
		}
		if present[memberId] {
			res.record(ResourceResult{Kind: "administrativeUnitMember", Name: name + "/" + member, Id: memberId, Action: ActionUnchanged})
			continue
		}
		if err := r.graph.AddAdministrativeUnitMember(ctx, auId, memberId); err != nil {
			res.record(ResourceResult{Kind: "administrativeUnitMember", Name: name + "/" + member, Action: ActionFailed, Error: err.Error()})
			return err
		}
		res.record(ResourceResult{Kind: "administrativeUnitMember", Name: name + "/" + member, Id: memberId, Action: ActionCreated})
	}
	return nil
}

func (r *Reconciler) ensureScopedRoleGrants(ctx context.Context, name, auId string, grants []assets.ScopedRoleGrant, st *applyState, res *ApplyResult) error {
	if len(grants) == 0 {
		return nil
	}
	memberships, err := r.graph.ListScopedRoleMemberships(ctx, auId)
	if err != nil {
		res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name, Action: ActionFailed, Error: err.Error()})
		return err
	}
	for _, grant := range grants {
		role, err := r.graph.GetDirectoryRoleByTemplateId(ctx, grant.RoleTemplateId)
		if graph.IsNotFound(err) {
			role, err = r.graph.ActivateDirectoryRole(ctx, grant.RoleTemplateId)
		}
		if err != nil {
			res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name + "/" + grant.RoleTemplateId, Action: ActionFailed, Error: err.Error()})
			return err
		}
		principalId, ok := st.get(st.groupIds, grant.GroupRef)
		if !ok {
			err := fmt.Errorf("scoped role grant on %s references group %s which is not part of the scenario", name, grant.GroupRef)
			res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name + "/" + grant.RoleTemplateId, Action: ActionFailed, Error: err.Error()})
			return err
		}
		already := false
		for _, m := range memberships {
			if m.RoleId == role.Id && m.RoleMemberInfo.Id == principalId {
				already = true
				break
			}
		}
		if already {
			res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name + "/" + grant.RoleTemplateId, Action: ActionUnchanged})
			continue
		}
		if _, err := r.graph.AddScopedRoleMembership(ctx, auId, role.Id, principalId); err != nil {
			res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name + "/" + grant.RoleTemplateId, Action: ActionFailed, Error: err.Error()})
			return err
		}
		res.record(ResourceResult{Kind: "scopedRoleGrant", Name: name + "/" + grant.RoleTemplateId, Action: ActionCreated})
	}
	return nil
}

// ensureRbacAssignments reconciles Azure RBAC role assignments for service
// principals. Assignment names are deterministic so a re-run resolves to the
// same assignment; a 409 from the service therefore means converged.
func (r *Reconciler) ensureRbacAssignments(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	needed := false
	for _, def := range sc.AppRegistrations() {
		if len(def.RbacGrants) > 0 {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	if r.roleAssignments == nil {
		return errors.New("role assignments client not set")
	}

	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.AppRegistrations() {
		name, def := name, def
		if len(def.RbacGrants) == 0 {
			continue
		}
		grp.Go(func() error {
			spId, ok := st.get(st.spIds, name)
			if !ok {
				err := fmt.Errorf("no service principal recorded for %s", name)
				res.record(ResourceResult{Kind: "roleAssignment", Name: name, Action: ActionFailed, Error: err.Error()})
				return err
			}
			for _, grant := range def.RbacGrants {
				roleDefinitionId := fmt.Sprintf("%s/providers/Microsoft.Authorization/roleDefinitions/%s", grant.Scope, grant.RoleDefinitionId)
				assignmentName := RoleAssignmentName(grant.Scope, grant.RoleDefinitionId, spId)
				params := armauthorization.RoleAssignmentCreateParameters{
					Properties: &armauthorization.RoleAssignmentProperties{
						PrincipalID:      to.Ptr(spId),
						PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
						RoleDefinitionID: to.Ptr(roleDefinitionId),
					},
				}
				// PrincipalNotFound means replication has not caught up with the
				// new service principal yet, retry until the propagation timeout.
				_, err := pollUntil(ctxGrp, r.opts.PropagationTimeout, func() (struct{}, error) {
					_, err := r.roleAssignments.Create(ctxGrp, grant.Scope, assignmentName, params, nil)
					return struct{}{}, err
				}, hasBadRequest)
				if err != nil {
					if hasConflict(err) {
						res.record(ResourceResult{Kind: "roleAssignment", Name: name + "/" + grant.RoleDefinitionId, Id: assignmentName, Action: ActionUnchanged})
						continue
					}
					res.record(ResourceResult{Kind: "roleAssignment", Name: name + "/" + grant.RoleDefinitionId, Action: ActionFailed, Error: err.Error()})
					return err
				}
				res.record(ResourceResult{Kind: "roleAssignment", Name: name + "/" + grant.RoleDefinitionId, Id: assignmentName, Action: ActionCreated})
			}
			return nil
		})
	}
	return grp.Wait() //nolint:wrapcheck
}

// ensureDefenderPolicy assigns the Defender for Cloud security policy
// initiative at subscription scope when the scenario binds one.
func (r *Reconciler) ensureDefenderPolicy(ctx context.Context, sc *Scenario, _ *applyState, res *ApplyResult) error {
	initiativeId, ok := sc.WellKnownValue(WellKnownDefenderInitiative)
	if !ok || initiativeId == "" {
		return nil
	}
	subscriptionId, ok := sc.WellKnownValue(WellKnownSubscriptionId)
	if !ok || subscriptionId == "" {
		return errors.New("defender initiative bound but no subscription_id well known value set")
	}
	if r.policyClient == nil {
		return errors.New("policy client not set")
	}

	scope := "/subscriptions/" + subscriptionId
	assignmentName := "seclab-defender-" + sc.Name()
	definitionId := fmt.Sprintf("/providers/Microsoft.Authorization/policySetDefinitions/%s", initiativeId)

	client := r.policyClient.NewAssignmentsClient()
	existing, err := client.Get(ctx, scope, assignmentName, nil)
	if err == nil && existing.Properties != nil &&
		to.ValOrZero(existing.Properties.PolicyDefinitionID) == definitionId {
		res.record(ResourceResult{Kind: "policyAssignment", Name: assignmentName, Id: to.ValOrZero(existing.ID), Action: ActionUnchanged})
		return nil
	}

	created, err := client.Create(ctx, scope, assignmentName, armpolicy.Assignment{
		Properties: &armpolicy.AssignmentProperties{
			DisplayName:        to.Ptr("Security lab Defender for Cloud policy (" + sc.Name() + ")"),
			PolicyDefinitionID: to.Ptr(definitionId),
		},
	}, nil)
	if err != nil {
		res.record(ResourceResult{Kind: "policyAssignment", Name: assignmentName, Action: ActionFailed, Error: err.Error()})
		return err //nolint:wrapcheck
	}
	res.record(ResourceResult{Kind: "policyAssignment", Name: assignmentName, Id: to.ValOrZero(created.ID), Action: ActionCreated})
	return nil
}

func hasBadRequest(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusBadRequest
}

func hasConflict(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusConflict
}

func hasNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// pollUntil retries fn with capped exponential backoff until it succeeds, the
// error is not retryable, or the timeout elapses. It replaces the fixed
// propagation sleeps that manual runbooks use.
func pollUntil[T any](ctx context.Context, timeout time.Duration, fn func() (T, error), retryable func(error) bool) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)
	delay := propagationBaseDelay
	for {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !retryable(err) || time.Now().After(deadline) {
			return zero, err
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > propagationMaxDelay {
			delay = propagationMaxDelay
		}
	}
}
