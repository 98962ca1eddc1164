// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package seclab is the catalog of security lab resources built from one or
// more lab libraries. It is the entry point of the module: process libraries
// with Init, copy a blueprint, then hand it to the deployment package.
package seclab

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/Azure/seclab/assets"
	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/processor"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelism = 10 // default number of parallel requests to make to external APIs
)

// ErrGraphClientNotSet is returned by Init when the library references
// built-in sensitive information types but no graph client was added.
// Offline commands that never touch the tenant can tolerate it.
var ErrGraphClientNotSet = errors.New("graph client not set, cannot fetch built-in sit definitions referenced by dlp policies")

// SecLab is the structure that gets built from the library files.
// Do not create this directly, use NewSecLab instead.
type SecLab struct {
	Options *SecLabOptions

	sitDefinitions      map[string]*assets.SitDefinition
	sensitivityLabels   map[string]*assets.SensitivityLabel
	dlpPolicies         map[string]*assets.DlpPolicy
	administrativeUnits map[string]*assets.AdministrativeUnitDefinition
	appRegistrations    map[string]*assets.AppRegistrationDefinition
	securityGroups      map[string]*assets.SecurityGroupDefinition
	blueprints          map[string]*Blueprint
	defaultValues       map[string]string
	publishedLabelIds   map[string]string
	metadata            []*Metadata
	clients             *clients
	mu                  sync.RWMutex // mu protects the catalog maps
}

type clients struct {
	graphClient *graph.Client
}

// SecLabOptions are options for the SecLab.
// This is created by NewSecLab.
type SecLabOptions struct {
	AllowOverwrite bool // AllowOverwrite allows overwriting of existing resources when processing additional libraries with SecLab.Init()
	Parallelism    int  // Parallelism is the number of parallel requests to make to external APIs
}

// NewSecLab returns a new instance of the seclab catalog.
func NewSecLab(opts *SecLabOptions) *SecLab {
	if opts == nil {
		opts = getDefaultSecLabOptions()
	}
	return &SecLab{
		Options:             opts,
		sitDefinitions:      make(map[string]*assets.SitDefinition),
		sensitivityLabels:   make(map[string]*assets.SensitivityLabel),
		dlpPolicies:         make(map[string]*assets.DlpPolicy),
		administrativeUnits: make(map[string]*assets.AdministrativeUnitDefinition),
		appRegistrations:    make(map[string]*assets.AppRegistrationDefinition),
		securityGroups:      make(map[string]*assets.SecurityGroupDefinition),
		blueprints:          make(map[string]*Blueprint),
		defaultValues:       make(map[string]string),
		publishedLabelIds:   make(map[string]string),
		metadata:            make([]*Metadata, 0),
		clients:             new(clients),
	}
}

func getDefaultSecLabOptions() *SecLabOptions {
	return &SecLabOptions{
		Parallelism:    defaultParallelism,
		AllowOverwrite: false,
	}
}

// AddGraphClient adds an authenticated *graph.Client to the SecLab struct.
// This is needed to resolve published labels and built-in definitions from the tenant.
func (s *SecLab) AddGraphClient(client *graph.Client) {
	s.clients.graphClient = client
}

// Metadata returns the metadata of all libraries processed, in processing order.
func (s *SecLab) Metadata() []*Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

// ListBlueprints returns a list of the blueprint names in the catalog.
func (s *SecLab) ListBlueprints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.blueprints))
	for k := range s.blueprints {
		result = append(result, k)
	}
	return result
}

// ListSitDefinitions returns a list of the SIT definition names in the catalog.
func (s *SecLab) ListSitDefinitions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.sitDefinitions))
	for k := range s.sitDefinitions {
		result = append(result, k)
	}
	return result
}

// ListSensitivityLabels returns a list of the sensitivity label names in the catalog.
func (s *SecLab) ListSensitivityLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.sensitivityLabels))
	for k := range s.sensitivityLabels {
		result = append(result, k)
	}
	return result
}

// ListDlpPolicies returns a list of the DLP policy names in the catalog.
func (s *SecLab) ListDlpPolicies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.dlpPolicies))
	for k := range s.dlpPolicies {
		result = append(result, k)
	}
	return result
}

// ListAdministrativeUnits returns a list of the administrative unit names in the catalog.
func (s *SecLab) ListAdministrativeUnits() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.administrativeUnits))
	for k := range s.administrativeUnits {
		result = append(result, k)
	}
	return result
}

// ListAppRegistrations returns a list of the app registration names in the catalog.
func (s *SecLab) ListAppRegistrations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.appRegistrations))
	for k := range s.appRegistrations {
		result = append(result, k)
	}
	return result
}

// ListSecurityGroups returns a list of the security group names in the catalog.
func (s *SecLab) ListSecurityGroups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.securityGroups))
	for k := range s.securityGroups {
		result = append(result, k)
	}
	return result
}

// SitDefinitionExists returns true if the SIT definition exists in the catalog.
func (s *SecLab) SitDefinitionExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sitDefinitions[name]
	return exists
}

// SensitivityLabelExists returns true if the sensitivity label exists in the catalog.
func (s *SecLab) SensitivityLabelExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sensitivityLabels[name]
	return exists
}

// DlpPolicyExists returns true if the DLP policy exists in the catalog.
func (s *SecLab) DlpPolicyExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.dlpPolicies[name]
	return exists
}

// AdministrativeUnitExists returns true if the administrative unit exists in the catalog.
func (s *SecLab) AdministrativeUnitExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.administrativeUnits[name]
	return exists
}

// AppRegistrationExists returns true if the app registration exists in the catalog.
func (s *SecLab) AppRegistrationExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.appRegistrations[name]
	return exists
}

// SecurityGroupExists returns true if the security group exists in the catalog.
func (s *SecLab) SecurityGroupExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.securityGroups[name]
	return exists
}

// SitDefinition returns the SIT definition with the given name.
func (s *SecLab) SitDefinition(name string) (*assets.SitDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sit, ok := s.sitDefinitions[name]; ok {
		return sit, nil
	}
	return nil, fmt.Errorf("SecLab.SitDefinition: sit definition %s not found", name)
}

// SensitivityLabel returns the sensitivity label with the given name.
func (s *SecLab) SensitivityLabel(name string) (*assets.SensitivityLabel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lbl, ok := s.sensitivityLabels[name]; ok {
		return lbl, nil
	}
	return nil, fmt.Errorf("SecLab.SensitivityLabel: sensitivity label %s not found", name)
}

// DlpPolicy returns the DLP policy with the given name.
func (s *SecLab) DlpPolicy(name string) (*assets.DlpPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pol, ok := s.dlpPolicies[name]; ok {
		return pol, nil
	}
	return nil, fmt.Errorf("SecLab.DlpPolicy: dlp policy %s not found", name)
}

// AdministrativeUnit returns the administrative unit definition with the given name.
func (s *SecLab) AdministrativeUnit(name string) (*assets.AdministrativeUnitDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if au, ok := s.administrativeUnits[name]; ok {
		return au, nil
	}
	return nil, fmt.Errorf("SecLab.AdministrativeUnit: administrative unit %s not found", name)
}

// AppRegistration returns the app registration definition with the given name.
func (s *SecLab) AppRegistration(name string) (*assets.AppRegistrationDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.appRegistrations[name]; ok {
		return app, nil
	}
	return nil, fmt.Errorf("SecLab.AppRegistration: app registration %s not found", name)
}

// SecurityGroup returns the security group definition with the given name.
func (s *SecLab) SecurityGroup(name string) (*assets.SecurityGroupDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if grp, ok := s.securityGroups[name]; ok {
		return grp, nil
	}
	return nil, fmt.Errorf("SecLab.SecurityGroup: security group %s not found", name)
}

// DefaultValue returns the library default value with the given name.
func (s *SecLab) DefaultValue(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.defaultValues[name]
	return v, ok
}

// PublishedLabelId returns the tenant label id for a catalog label name,
// populated by ResolvePublishedLabels.
func (s *SecLab) PublishedLabelId(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.publishedLabelIds[name]
	return id, ok
}

// PublishedLabels returns a copy of the catalog name to tenant label id map,
// populated by ResolvePublishedLabels.
func (s *SecLab) PublishedLabels() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string, len(s.publishedLabelIds))
	for k, v := range s.publishedLabelIds {
		result[k] = v
	}
	return result
}

// Init processes lab libraries, supplied as fs.FS interfaces.
// These are typically os.DirFS values or the result of a library fetch.
// It populates the catalog with the results of the processing.
func (s *SecLab) Init(ctx context.Context, libs ...fs.FS) error {
	if s.Options == nil || s.Options.Parallelism == 0 {
		return errors.New("seclab Options not set or parallelism is 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*processor.Result, 0, len(libs))
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck
		}
		res := processor.NewResult()
		pc := processor.NewClient(lib)
		if err := pc.Process(res); err != nil {
			return fmt.Errorf("SecLab.Init: error processing library %v: %w", lib, err)
		}
		if err := s.addProcessedResult(res); err != nil {
			return err
		}
		s.metadata = append(s.metadata, NewMetadata(res.Metadata))
		results = append(results, res)
	}

	for _, res := range results {
		if err := s.generateBlueprints(res); err != nil {
			return err
		}
	}
	for _, res := range results {
		if err := s.generateBlueprintOverrides(res); err != nil {
			return err
		}
	}

	// add the empty blueprint if no library defined one.
	if _, exists := s.blueprints[BlueprintEmpty]; !exists {
		s.blueprints[BlueprintEmpty] = newEmptyBlueprint()
	}

	if err := s.validateDlpSitRefs(); err != nil {
		return err
	}
	return s.getBuiltInSitDefinitions(ctx)
}

// validateDlpSitRefs checks that every SIT referenced by a DLP rule either
// exists in the catalog or carries a built-in id. Built-in ids are resolved
// against the service afterwards by getBuiltInSitDefinitions.
func (s *SecLab) validateDlpSitRefs() error {
	for polName, pol := range s.dlpPolicies {
		for _, rule := range pol.Rules {
			for _, ref := range rule.Sits {
				if ref.BuiltInId != "" {
					continue
				}
				if _, exists := s.sitDefinitions[ref.Name]; !exists {
					return fmt.Errorf(
						"SecLab.Init: dlp policy %s rule %s references sit %s which does not exist in the library",
						polName, rule.Name, ref.Name)
				}
			}
		}
	}
	return nil
}

// getBuiltInSitDefinitions fetches the built-in sensitive information types
// referenced by DLP rules that are not already in the catalog and adds them,
// keyed by id. Fetches run in parallel, limited by Options.Parallelism.
func (s *SecLab) getBuiltInSitDefinitions(ctx context.Context) error {
	toGet := mapset.NewThreadUnsafeSet[string]()
	for _, pol := range s.dlpPolicies {
		for _, rule := range pol.Rules {
			for _, ref := range rule.Sits {
				if ref.BuiltInId == "" {
					continue
				}
				if _, exists := s.sitDefinitions[ref.BuiltInId]; !exists {
					toGet.Add(ref.BuiltInId)
				}
			}
		}
	}
	if toGet.Cardinality() == 0 {
		return nil
	}
	if s.clients.graphClient == nil {
		return ErrGraphClientNotSet
	}

	fetched := make(map[string]*assets.SitDefinition, toGet.Cardinality())
	var mu sync.Mutex
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(s.Options.Parallelism)
	for id := range toGet.Iter() {
		id := id
		grp.Go(func() error {
			info, err := s.clients.graphClient.GetSensitiveType(ctxGrp, id)
			if err != nil {
				return fmt.Errorf("fetching built-in sit %s: %w", id, err)
			}
			mu.Lock()
			defer mu.Unlock()
			fetched[id] = &assets.SitDefinition{
				Name:        info.Id,
				DisplayName: info.Name,
				Description: info.Description,
				BuiltIn:     true,
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return fmt.Errorf("SecLab.Init: %w", err)
	}
	for id, sit := range fetched {
		s.sitDefinitions[id] = sit
	}
	return nil
}

// ResolvePublishedLabels fetches the published sensitivity labels from the
// tenant and maps catalog label names to their tenant ids. Labels defined in
// the catalog but not yet published are fetched individually in parallel so a
// partial publish surfaces as a single error listing the gap.
func (s *SecLab) ResolvePublishedLabels(ctx context.Context) error {
	if s.clients.graphClient == nil {
		return errors.New("graph client not set")
	}

	published, err := s.clients.graphClient.ListSensitivityLabels(ctx)
	if err != nil {
		return fmt.Errorf("SecLab.ResolvePublishedLabels: %w", err)
	}
	byName := make(map[string]string, len(published))
	for _, l := range published {
		byName[l.Name] = l.Id
	}

	missing := mapset.NewSet[string]()
	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(s.Options.Parallelism)
	var mu sync.Mutex

	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.sensitivityLabels {
		name := name
		if id, ok := byName[name]; ok {
			s.publishedLabelIds[name] = id
			continue
		}
		// Not in the first page snapshot, re-check individually in case the
		// label was published after the list call.
		grp.Go(func() error {
			info, err := s.clients.graphClient.FindSensitivityLabelByName(ctxGrp, name)
			if err != nil {
				if graph.IsNotFound(err) {
					mu.Lock()
					missing.Add(name)
					mu.Unlock()
					return nil
				}
				return err
			}
			mu.Lock()
			s.publishedLabelIds[name] = info.Id
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return fmt.Errorf("SecLab.ResolvePublishedLabels: %w", err)
	}
	if missing.Cardinality() != 0 {
		return fmt.Errorf("SecLab.ResolvePublishedLabels: labels not published in tenant: %v", missing.ToSlice())
	}
	return nil
}

// addProcessedResult adds the results of a processed library to the catalog.
func (s *SecLab) addProcessedResult(res *processor.Result) error {
	for k, v := range res.SitDefinitions {
		if _, exists := s.sitDefinitions[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: sit definition %s already exists in the library", k)
		}
		s.sitDefinitions[k] = v
	}
	for k, v := range res.SensitivityLabels {
		if _, exists := s.sensitivityLabels[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: sensitivity label %s already exists in the library", k)
		}
		s.sensitivityLabels[k] = v
	}
	for k, v := range res.DlpPolicies {
		if _, exists := s.dlpPolicies[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: dlp policy %s already exists in the library", k)
		}
		s.dlpPolicies[k] = v
	}
	for k, v := range res.AdministrativeUnits {
		if _, exists := s.administrativeUnits[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: administrative unit %s already exists in the library", k)
		}
		s.administrativeUnits[k] = v
	}
	for k, v := range res.AppRegistrations {
		if _, exists := s.appRegistrations[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: app registration %s already exists in the library", k)
		}
		s.appRegistrations[k] = v
	}
	for k, v := range res.SecurityGroups {
		if _, exists := s.securityGroups[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: security group %s already exists in the library", k)
		}
		s.securityGroups[k] = v
	}
	for k, v := range res.LibDefaultValues {
		if _, exists := s.defaultValues[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.addProcessedResult: default value %s already exists in the library", k)
		}
		s.defaultValues[k] = v.Value
	}
	return nil
}

// generateBlueprints generates the blueprints from the result of the processor.
// The blueprints are stored in the SecLab instance.
func (s *SecLab) generateBlueprints(res *processor.Result) error {
	for k, v := range res.LibBlueprints {
		if _, exists := s.blueprints[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.generateBlueprints: blueprint %s already exists in the library", v.Name)
		}
		bp := &Blueprint{
			name:                v.Name,
			SitDefinitions:      v.SitDefinitions.Clone(),
			SensitivityLabels:   v.SensitivityLabels.Clone(),
			DlpPolicies:         v.DlpPolicies.Clone(),
			AdministrativeUnits: v.AdministrativeUnits.Clone(),
			AppRegistrations:    v.AppRegistrations.Clone(),
			SecurityGroups:      v.SecurityGroups.Clone(),
		}
		if err := s.validateBlueprintMembers(bp); err != nil {
			return err
		}
		s.blueprints[v.Name] = bp
	}
	return nil
}

// generateBlueprintOverrides derives new blueprints from base blueprints.
// Overrides are applied after all blueprints have been generated so that an
// override in one library can extend a blueprint from another.
func (s *SecLab) generateBlueprintOverrides(res *processor.Result) error {
	for k, v := range res.LibBlueprintOverrides {
		if _, exists := s.blueprints[k]; exists && !s.Options.AllowOverwrite {
			return fmt.Errorf("SecLab.generateBlueprintOverrides: blueprint %s already exists in the library", k)
		}
		base, exists := s.blueprints[v.BaseBlueprint]
		if !exists {
			return fmt.Errorf("SecLab.generateBlueprintOverrides: override %s references base blueprint %s which does not exist", k, v.BaseBlueprint)
		}
		bp := &Blueprint{
			name:                v.Name,
			SitDefinitions:      base.SitDefinitions.Union(v.SitDefinitionsToAdd).Difference(v.SitDefinitionsToRemove),
			SensitivityLabels:   base.SensitivityLabels.Union(v.SensitivityLabelsToAdd).Difference(v.SensitivityLabelsToRemove),
			DlpPolicies:         base.DlpPolicies.Union(v.DlpPoliciesToAdd).Difference(v.DlpPoliciesToRemove),
			AdministrativeUnits: base.AdministrativeUnits.Union(v.AdministrativeUnitsToAdd).Difference(v.AdministrativeUnitsToRemove),
			AppRegistrations:    base.AppRegistrations.Union(v.AppRegistrationsToAdd).Difference(v.AppRegistrationsToRemove),
			SecurityGroups:      base.SecurityGroups.Union(v.SecurityGroupsToAdd).Difference(v.SecurityGroupsToRemove),
		}
		if err := s.validateBlueprintMembers(bp); err != nil {
			return err
		}
		s.blueprints[v.Name] = bp
	}
	return nil
}

// validateBlueprintMembers checks that every member of the blueprint resolves
// to a resource in the catalog.
func (s *SecLab) validateBlueprintMembers(bp *Blueprint) error {
	for sit := range bp.SitDefinitions.Iter() {
		if _, ok := s.sitDefinitions[sit]; !ok {
			return fmt.Errorf("error processing blueprint %s, sit definition %s does not exist in the library", bp.name, sit)
		}
	}
	for lbl := range bp.SensitivityLabels.Iter() {
		if _, ok := s.sensitivityLabels[lbl]; !ok {
			return fmt.Errorf("error processing blueprint %s, sensitivity label %s does not exist in the library", bp.name, lbl)
		}
	}
	for pol := range bp.DlpPolicies.Iter() {
		if _, ok := s.dlpPolicies[pol]; !ok {
			return fmt.Errorf("error processing blueprint %s, dlp policy %s does not exist in the library", bp.name, pol)
		}
	}
	for au := range bp.AdministrativeUnits.Iter() {
		if _, ok := s.administrativeUnits[au]; !ok {
			return fmt.Errorf("error processing blueprint %s, administrative unit %s does not exist in the library", bp.name, au)
		}
	}
	for app := range bp.AppRegistrations.Iter() {
		if _, ok := s.appRegistrations[app]; !ok {
			return fmt.Errorf("error processing blueprint %s, app registration %s does not exist in the library", bp.name, app)
		}
	}
	for grp := range bp.SecurityGroups.Iter() {
		if _, ok := s.securityGroups[grp]; !ok {
			return fmt.Errorf("error processing blueprint %s, security group %s does not exist in the library", bp.name, grp)
		}
	}
	return nil
}
