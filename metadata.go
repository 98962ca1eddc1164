// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package seclab

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/Azure/seclab/processor"
)

// Metadata describes a processed library member.
type Metadata struct {
	name         string
	displayName  string
	description  string
	dependencies []LibraryReference
	path         string
}

// LibraryReference is an interface that represents a dependency of a library member.
// It can be fetched from either a custom go-getter URL or from the well-known lab library.
type LibraryReference interface {
	fmt.Stringer
	// Fetch fetches the library member into the destination directory.
	Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error)
	// FetchWithDependencies fetches the library member and all its dependencies.
	FetchWithDependencies(ctx context.Context) (LibraryReferences, error)
	// FS returns the filesystem of the fetched library member, nil before Fetch.
	FS() fs.FS
}

// LibraryReferences is a slice of LibraryReference.
type LibraryReferences []LibraryReference

// FSs returns the filesystems of all fetched library references, in order.
// Only call this after FetchWithDependencies has succeeded.
func (lrs LibraryReferences) FSs() []fs.FS {
	res := make([]fs.FS, len(lrs))
	for i, lr := range lrs {
		res[i] = lr.FS()
	}
	return res
}

var _ LibraryReference = (*SecLabLibraryReference)(nil)
var _ LibraryReference = (*CustomLibraryReference)(nil)

// SecLabLibraryReference represents a dependency fetched from the well-known lab library.
type SecLabLibraryReference struct {
	path string
	ref  string
	fs   fs.FS
}

// NewSecLabLibraryReference creates a reference to a member of the well-known
// lab library, at the given path and ref.
func NewSecLabLibraryReference(path, ref string) *SecLabLibraryReference {
	return &SecLabLibraryReference{
		path: path,
		ref:  ref,
	}
}

// Fetch fetches the library member from the well-known lab library.
func (m *SecLabLibraryReference) Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error) {
	f, err := FetchSecurityLabLibraryMember(ctx, destinationDirectory, m.path, m.ref)
	if err != nil {
		return nil, err
	}
	m.fs = f
	return f, nil
}

// FetchWithDependencies fetches the library member and all its dependencies.
func (m *SecLabLibraryReference) FetchWithDependencies(ctx context.Context) (LibraryReferences, error) {
	return fetchAllLibrariesWithDependencies(ctx, m)
}

// FS returns the filesystem of the fetched library member, nil before Fetch.
func (m *SecLabLibraryReference) FS() fs.FS {
	return m.fs
}

// Path returns the path of the library member within the lab library.
func (m *SecLabLibraryReference) Path() string {
	return m.path
}

// Ref returns the ref (tag) of the library member.
func (m *SecLabLibraryReference) Ref() string {
	return m.ref
}

// String returns the formatted path and the tag of the library member.
func (m *SecLabLibraryReference) String() string {
	return strings.Join([]string{m.path, m.ref}, "@")
}

// CustomLibraryReference represents a dependency fetched from a custom go-getter URL.
type CustomLibraryReference struct {
	url string
	fs  fs.FS
}

// NewCustomLibraryReference creates a reference to a library at a custom
// go-getter URL, including plain local paths.
func NewCustomLibraryReference(url string) *CustomLibraryReference {
	return &CustomLibraryReference{
		url: url,
	}
}

// Fetch fetches the library member from the custom go-getter URL.
func (m *CustomLibraryReference) Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error) {
	f, err := FetchLibraryByGetterString(ctx, m.url, destinationDirectory)
	if err != nil {
		return nil, err
	}
	m.fs = f
	return f, nil
}

// FetchWithDependencies fetches the library member and all its dependencies.
func (m *CustomLibraryReference) FetchWithDependencies(ctx context.Context) (LibraryReferences, error) {
	return fetchAllLibrariesWithDependencies(ctx, m)
}

// FS returns the filesystem of the fetched library member, nil before Fetch.
func (m *CustomLibraryReference) FS() fs.FS {
	return m.fs
}

// String returns the URL of the custom go-getter.
func (m *CustomLibraryReference) String() string {
	return m.url
}

// fetchAllLibrariesWithDependencies fetches the supplied library reference and
// recurses into its dependencies, depth first, so that dependencies appear in
// the returned slice before their dependents. References are de-duplicated by
// their String() value.
func fetchAllLibrariesWithDependencies(ctx context.Context, lib LibraryReference) (LibraryReferences, error) {
	libs := make(LibraryReferences, 0, 5)
	counter := 0
	return fetchLibraryRecursive(ctx, &counter, lib, libs)
}

func fetchLibraryRecursive(ctx context.Context, counter *int, lib LibraryReference, libs LibraryReferences) (LibraryReferences, error) {
	// Fetch destinations are resolved relative to the base dir, one numbered
	// directory per library.
	f, err := lib.Fetch(ctx, strconv.Itoa(*counter))
	if err != nil {
		return nil, fmt.Errorf("could not fetch library member %s: %w", lib.String(), err)
	}
	pc := processor.NewClient(f)
	libmeta, err := pc.Metadata()
	if err != nil {
		return nil, fmt.Errorf("could not read metadata for library member %s: %w", lib.String(), err)
	}
	meta := NewMetadata(libmeta)
	for _, dep := range meta.Dependencies() {
		*counter++
		libs, err = fetchLibraryRecursive(ctx, counter, dep, libs)
		if err != nil {
			return nil, err
		}
	}
	return addLibraryReferenceToSlice(libs, lib), nil
}

// addLibraryReferenceToSlice adds a library reference to a slice if it does not already exist.
func addLibraryReferenceToSlice(libs LibraryReferences, lib LibraryReference) LibraryReferences {
	if exists := slices.ContainsFunc(libs, func(l LibraryReference) bool {
		return l.String() == lib.String()
	}); exists {
		return libs
	}
	return append(libs, lib)
}

// NewMetadata converts processor metadata into the catalog metadata type.
func NewMetadata(in *processor.LibMetadata) *Metadata {
	dependencies := make([]LibraryReference, len(in.Dependencies))
	for i, dep := range in.Dependencies {
		dependencies[i] = NewMetadataDependencyFromProcessor(dep)
	}
	return &Metadata{
		name:         in.Name,
		displayName:  in.DisplayName,
		description:  in.Description,
		dependencies: dependencies,
		path:         in.Path,
	}
}

// NewMetadataDependencyFromProcessor converts a processor dependency into a LibraryReference.
func NewMetadataDependencyFromProcessor(in processor.LibMetadataDependency) LibraryReference {
	if in.CustomURL != "" {
		return &CustomLibraryReference{
			url: in.CustomURL,
		}
	}
	return &SecLabLibraryReference{
		path: in.Path,
		ref:  in.Ref,
	}
}

// Name returns the name of the library member.
func (m *Metadata) Name() string {
	return m.name
}

// DisplayName returns the display name of the library member.
func (m *Metadata) DisplayName() string {
	return m.displayName
}

// Description returns the description of the library member.
func (m *Metadata) Description() string {
	return m.description
}

// Dependencies returns the dependencies of the library member.
func (m *Metadata) Dependencies() []LibraryReference {
	return m.dependencies
}

// Path returns the relative path of the library member.
func (m *Metadata) Path() string {
	return m.path
}
