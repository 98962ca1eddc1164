// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package processor reads security lab library files from an fs.FS and
// accumulates them into a Result.
package processor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/Azure/seclab/assets"
	"github.com/Azure/seclab/internal/environment"
	"github.com/go-playground/validator/v10"
)

// These are the file prefixes for the resource types.
const (
	SitDefinitionFileType      = "seclab_sit_definition"
	SensitivityLabelFileType   = "seclab_sensitivity_label"
	DlpPolicyFileType          = "seclab_dlp_policy"
	AdministrativeUnitFileType = "seclab_administrative_unit"
	AppRegistrationFileType    = "seclab_app_registration"
	SecurityGroupFileType      = "seclab_security_group"
	BlueprintFileType          = "seclab_blueprint"
	BlueprintOverrideFileType  = "seclab_blueprint_override"
	DefaultValuesFileType      = "seclab_default_values"

	sitDefinitionSuffix      = ".+\\." + SitDefinitionFileType + "\\.(?:json|yaml|yml)$"
	sensitivityLabelSuffix   = ".+\\." + SensitivityLabelFileType + "\\.(?:json|yaml|yml)$"
	dlpPolicySuffix          = ".+\\." + DlpPolicyFileType + "\\.(?:json|yaml|yml)$"
	administrativeUnitSuffix = ".+\\." + AdministrativeUnitFileType + "\\.(?:json|yaml|yml)$"
	appRegistrationSuffix    = ".+\\." + AppRegistrationFileType + "\\.(?:json|yaml|yml)$"
	securityGroupSuffix      = ".+\\." + SecurityGroupFileType + "\\.(?:json|yaml|yml)$"
	blueprintSuffix          = ".+\\." + BlueprintFileType + "\\.(?:json|yaml|yml)$"
	blueprintOverrideSuffix  = ".+\\." + BlueprintOverrideFileType + "\\.(?:json|yaml|yml)$"
	defaultValuesFileName    = "^" + DefaultValuesFileType + "\\.(?:json|yaml|yml)$"
)

const (
	labLibraryMetadataFile = "seclab_library_metadata.json"
)

var supportedFileTypes = []string{".json", ".yaml", ".yml"}

var SitDefinitionRegex = regexp.MustCompile(sitDefinitionSuffix)
var SensitivityLabelRegex = regexp.MustCompile(sensitivityLabelSuffix)
var DlpPolicyRegex = regexp.MustCompile(dlpPolicySuffix)
var AdministrativeUnitRegex = regexp.MustCompile(administrativeUnitSuffix)
var AppRegistrationRegex = regexp.MustCompile(appRegistrationSuffix)
var SecurityGroupRegex = regexp.MustCompile(securityGroupSuffix)
var BlueprintRegex = regexp.MustCompile(blueprintSuffix)
var BlueprintOverrideRegex = regexp.MustCompile(blueprintOverrideSuffix)
var DefaultValuesRegex = regexp.MustCompile(defaultValuesFileName)

var (
	// ErrResourceAlreadyExists is returned when a resource already exists in the result.
	ErrResourceAlreadyExists = errors.New("resource already exists in the result")

	// ErrNoNameProvided is returned when no name was provided for the resource.
	ErrNoNameProvided = errors.New("no name provided for the resource, cannot process it without a name")

	// ErrUnmarshaling is returned when unmarshaling fails.
	ErrUnmarshaling = errors.New("error converting data from YAML/JSON, please check the file format and content")

	// ErrValidation is returned when a decoded resource fails validation.
	ErrValidation = errors.New("resource failed validation")

	// ErrMultipleDefaultValuesFileFound is returned when multiple default values files are found.
	ErrMultipleDefaultValuesFileFound = errors.New("multiple default values files found, only one is allowed")

	// ErrProcessingFile is returned when there is an error processing the file.
	ErrProcessingFile = errors.New("error processing file, please check the file format and content")
)

// validate is the shared validator instance used for decoded resources.
var validate = validator.New(validator.WithRequiredStructEnabled())

// NewErrResourceAlreadyExists creates a new error indicating that a resource already exists in the result.
func NewErrResourceAlreadyExists(resourceType, name string) error {
	return fmt.Errorf("%w: %s with name `%s` already exists", ErrResourceAlreadyExists, resourceType, name)
}

// NewErrNoNameProvided creates a new error indicating that no name was provided for the resource.
func NewErrNoNameProvided(resourceType string) error {
	return fmt.Errorf("%w: %s", ErrNoNameProvided, resourceType)
}

// NewErrorUnmarshaling creates a new error indicating that unmarshaling failed.
func NewErrorUnmarshaling(detail string) error {
	return fmt.Errorf("%w: %s", ErrUnmarshaling, detail)
}

// NewErrValidation creates a new error indicating that a resource failed validation.
func NewErrValidation(resourceType string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, resourceType, err.Error())
}

// Result is the structure that gets built by scanning the library files.
type Result struct {
	SitDefinitions        map[string]*assets.SitDefinition
	SensitivityLabels     map[string]*assets.SensitivityLabel
	DlpPolicies           map[string]*assets.DlpPolicy
	AdministrativeUnits   map[string]*assets.AdministrativeUnitDefinition
	AppRegistrations      map[string]*assets.AppRegistrationDefinition
	SecurityGroups        map[string]*assets.SecurityGroupDefinition
	LibBlueprints         map[string]*LibBlueprint
	LibBlueprintOverrides map[string]*LibBlueprintOverride
	LibDefaultValues      map[string]*LibDefaultValue
	Metadata              *LibMetadata

	libDefaultValuesFileProcessed bool
}

// NewResult creates a new Result struct with initialized maps for each resource type.
func NewResult() *Result {
	return &Result{
		SitDefinitions:        make(map[string]*assets.SitDefinition),
		SensitivityLabels:     make(map[string]*assets.SensitivityLabel),
		DlpPolicies:           make(map[string]*assets.DlpPolicy),
		AdministrativeUnits:   make(map[string]*assets.AdministrativeUnitDefinition),
		AppRegistrations:      make(map[string]*assets.AppRegistrationDefinition),
		SecurityGroups:        make(map[string]*assets.SecurityGroupDefinition),
		LibBlueprints:         make(map[string]*LibBlueprint),
		LibBlueprintOverrides: make(map[string]*LibBlueprintOverride),
		LibDefaultValues:      make(map[string]*LibDefaultValue),
	}
}

// processFunc is the function signature that is used to process different types of lib file.
type processFunc func(result *Result, data Unmarshaler) error

// Client is the client that is used to process the library files.
type Client struct {
	fs fs.FS
}

// NewClient creates a new Client with the provided filesystem.
func NewClient(fs fs.FS) *Client {
	return &Client{
		fs: fs,
	}
}

// Metadata returns the metadata of the library.
// A missing metadata file is not an error, an empty metadata is returned instead.
func (client *Client) Metadata() (*LibMetadata, error) {
	metadataFile, err := client.fs.Open(labLibraryMetadataFile)

	var pe *fs.PathError
	if errors.As(err, &pe) {
		return &LibMetadata{
			Dependencies: make([]LibMetadataDependency, 0),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Client.Metadata: error opening metadata file: %w", err)
	}
	defer metadataFile.Close() // nolint: errcheck

	data, err := io.ReadAll(metadataFile)
	if err != nil {
		return nil, fmt.Errorf("Client.Metadata: error reading metadata file: %w", err)
	}

	unmar := NewUnmarshaler(data, ".json")
	metadata := new(LibMetadata)
	if err := unmar.Unmarshal(metadata); err != nil {
		return nil, errors.Join(NewErrorUnmarshaling(labLibraryMetadataFile), err)
	}

	for _, dep := range metadata.Dependencies {
		switch {
		case dep.Path != "" && dep.Ref != "" && dep.CustomURL == "":
			continue
		case dep.Path == "" && dep.Ref == "" && dep.CustomURL != "":
			continue
		default:
			return nil, fmt.Errorf(
				"Client.Metadata: invalid dependency, either path & ref should be set, or custom_url: %v",
				dep,
			)
		}
	}

	return metadata, nil
}

// Process reads the library files and processes them into a Result.
// Pass in a pointer to a Result struct to store the processed data,
// create a new *Result with NewResult().
func (client *Client) Process(res *Result) error {
	metad, err := client.Metadata()
	if err != nil {
		return fmt.Errorf("Client.Process: error getting metadata: %w", err)
	}
	res.Metadata = metad

	if err := fs.WalkDir(client.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("Client.Process: error walking directory %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		// Skip files under the local fetch directory.
		secLabDirBase := filepath.Base(environment.SecLabDir())
		if strings.Contains(path, secLabDirBase) {
			return nil
		}
		if !slices.Contains(supportedFileTypes, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		file, err := client.fs.Open(path)
		if err != nil {
			return fmt.Errorf("Client.Process: error opening file %s: %w", path, err)
		}
		if err := classifyLibFile(res, file, d.Name()); err != nil {
			return fmt.Errorf("file %s: %w", path, err)
		}
		return nil
	}); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

// classifyLibFile identifies the supplied file and calls the appropriate processFunc.
func classifyLibFile(res *Result, file fs.File, name string) error {
	err := error(nil)

	switch n := strings.ToLower(name); {
	case SitDefinitionRegex.MatchString(n):
		err = readAndProcessFile(res, file, processSitDefinition)
	case SensitivityLabelRegex.MatchString(n):
		err = readAndProcessFile(res, file, processSensitivityLabel)
	case DlpPolicyRegex.MatchString(n):
		err = readAndProcessFile(res, file, processDlpPolicy)
	case AdministrativeUnitRegex.MatchString(n):
		err = readAndProcessFile(res, file, processAdministrativeUnit)
	case AppRegistrationRegex.MatchString(n):
		err = readAndProcessFile(res, file, processAppRegistration)
	case SecurityGroupRegex.MatchString(n):
		err = readAndProcessFile(res, file, processSecurityGroup)
	case BlueprintOverrideRegex.MatchString(n):
		err = readAndProcessFile(res, file, processBlueprintOverride)
	case BlueprintRegex.MatchString(n):
		err = readAndProcessFile(res, file, processBlueprint)
	case DefaultValuesRegex.MatchString(n):
		err = readAndProcessFile(res, file, processDefaultValues)
	}

	if err != nil {
		err = errors.Join(ErrProcessingFile, err)
	}

	return err
}

// readAndProcessFile reads the file bytes and passes them to the supplied processFunc.
func readAndProcessFile(res *Result, file fs.File, processFn processFunc) error {
	s, err := file.Stat()
	if err != nil {
		return err //nolint:wrapcheck
	}
	data := make([]byte, s.Size())
	defer file.Close() // nolint: errcheck
	if _, err := file.Read(data); err != nil {
		return err //nolint:wrapcheck
	}
	ext := filepath.Ext(s.Name())
	unmar := NewUnmarshaler(data, ext)
	if err := processFn(res, unmar); err != nil {
		return err
	}
	return nil
}

// processSitDefinition is a processFunc that adds a SIT definition to the result.
func processSitDefinition(res *Result, unmar Unmarshaler) error {
	sit := new(assets.SitDefinition)
	if err := unmar.Unmarshal(sit); err != nil {
		return errors.Join(NewErrorUnmarshaling("sit definition"), err)
	}
	if sit.Name == "" {
		return NewErrNoNameProvided("sit definition")
	}
	if err := validate.Struct(sit); err != nil {
		return NewErrValidation("sit definition "+sit.Name, err)
	}
	if _, err := sit.CompilePattern(); err != nil {
		return NewErrValidation("sit definition "+sit.Name, err)
	}
	if _, exists := res.SitDefinitions[sit.Name]; exists {
		return NewErrResourceAlreadyExists("sit definition", sit.Name)
	}
	res.SitDefinitions[sit.Name] = sit
	return nil
}

// processSensitivityLabel is a processFunc that adds a sensitivity label to the result.
func processSensitivityLabel(res *Result, unmar Unmarshaler) error {
	lbl := new(assets.SensitivityLabel)
	if err := unmar.Unmarshal(lbl); err != nil {
		return errors.Join(NewErrorUnmarshaling("sensitivity label"), err)
	}
	if lbl.Name == "" {
		return NewErrNoNameProvided("sensitivity label")
	}
	if err := validate.Struct(lbl); err != nil {
		return NewErrValidation("sensitivity label "+lbl.Name, err)
	}
	if _, exists := res.SensitivityLabels[lbl.Name]; exists {
		return NewErrResourceAlreadyExists("sensitivity label", lbl.Name)
	}
	res.SensitivityLabels[lbl.Name] = lbl
	return nil
}

// processDlpPolicy is a processFunc that adds a DLP policy to the result.
func processDlpPolicy(res *Result, unmar Unmarshaler) error {
	pol := new(assets.DlpPolicy)
	if err := unmar.Unmarshal(pol); err != nil {
		return errors.Join(NewErrorUnmarshaling("dlp policy"), err)
	}
	if pol.Name == "" {
		return NewErrNoNameProvided("dlp policy")
	}
	if err := validate.Struct(pol); err != nil {
		return NewErrValidation("dlp policy "+pol.Name, err)
	}
	if _, exists := res.DlpPolicies[pol.Name]; exists {
		return NewErrResourceAlreadyExists("dlp policy", pol.Name)
	}
	res.DlpPolicies[pol.Name] = pol
	return nil
}

// processAdministrativeUnit is a processFunc that adds an administrative unit to the result.
func processAdministrativeUnit(res *Result, unmar Unmarshaler) error {
	au := new(assets.AdministrativeUnitDefinition)
	if err := unmar.Unmarshal(au); err != nil {
		return errors.Join(NewErrorUnmarshaling("administrative unit"), err)
	}
	if au.Name == "" {
		return NewErrNoNameProvided("administrative unit")
	}
	if err := validate.Struct(au); err != nil {
		return NewErrValidation("administrative unit "+au.Name, err)
	}
	if _, exists := res.AdministrativeUnits[au.Name]; exists {
		return NewErrResourceAlreadyExists("administrative unit", au.Name)
	}
	res.AdministrativeUnits[au.Name] = au
	return nil
}

// processAppRegistration is a processFunc that adds an app registration to the result.
func processAppRegistration(res *Result, unmar Unmarshaler) error {
	app := new(assets.AppRegistrationDefinition)
	if err := unmar.Unmarshal(app); err != nil {
		return errors.Join(NewErrorUnmarshaling("app registration"), err)
	}
	if app.Name == "" {
		return NewErrNoNameProvided("app registration")
	}
	if err := validate.Struct(app); err != nil {
		return NewErrValidation("app registration "+app.Name, err)
	}
	if _, exists := res.AppRegistrations[app.Name]; exists {
		return NewErrResourceAlreadyExists("app registration", app.Name)
	}
	res.AppRegistrations[app.Name] = app
	return nil
}

// processSecurityGroup is a processFunc that adds a security group to the result.
func processSecurityGroup(res *Result, unmar Unmarshaler) error {
	grp := new(assets.SecurityGroupDefinition)
	if err := unmar.Unmarshal(grp); err != nil {
		return errors.Join(NewErrorUnmarshaling("security group"), err)
	}
	if grp.Name == "" {
		return NewErrNoNameProvided("security group")
	}
	if err := validate.Struct(grp); err != nil {
		return NewErrValidation("security group "+grp.Name, err)
	}
	if _, exists := res.SecurityGroups[grp.Name]; exists {
		return NewErrResourceAlreadyExists("security group", grp.Name)
	}
	res.SecurityGroups[grp.Name] = grp
	return nil
}

// processBlueprint is a processFunc that adds a blueprint to the result.
func processBlueprint(res *Result, unmar Unmarshaler) error {
	bp := new(LibBlueprint)
	if err := unmar.Unmarshal(bp); err != nil {
		return errors.Join(NewErrorUnmarshaling("blueprint"), err)
	}
	if bp.Name == "" {
		return NewErrNoNameProvided("blueprint")
	}
	if _, exists := res.LibBlueprints[bp.Name]; exists {
		return NewErrResourceAlreadyExists("blueprint", bp.Name)
	}
	res.LibBlueprints[bp.Name] = bp
	return nil
}

// processBlueprintOverride is a processFunc that adds a blueprint override to the result.
func processBlueprintOverride(res *Result, unmar Unmarshaler) error {
	ovr := new(LibBlueprintOverride)
	if err := unmar.Unmarshal(ovr); err != nil {
		return errors.Join(NewErrorUnmarshaling("blueprint override"), err)
	}
	if ovr.Name == "" {
		return NewErrNoNameProvided("blueprint override")
	}
	if _, exists := res.LibBlueprintOverrides[ovr.Name]; exists {
		return NewErrResourceAlreadyExists("blueprint override", ovr.Name)
	}
	res.LibBlueprintOverrides[ovr.Name] = ovr
	return nil
}

// processDefaultValues is a processFunc that adds the library default values to the result.
func processDefaultValues(res *Result, unmar Unmarshaler) error {
	if res.libDefaultValuesFileProcessed {
		return ErrMultipleDefaultValuesFileFound
	}

	dv := new(LibDefaultValues)
	if err := unmar.Unmarshal(dv); err != nil {
		return errors.Join(NewErrorUnmarshaling("default values"), err)
	}

	for _, def := range dv.Defaults {
		def := def
		if def.Name == "" {
			return NewErrNoNameProvided("default value")
		}
		if _, exists := res.LibDefaultValues[def.Name]; exists {
			return NewErrResourceAlreadyExists("default value", def.Name)
		}
		res.LibDefaultValues[def.Name] = &def
	}

	res.libDefaultValuesFileProcessed = true

	return nil
}
