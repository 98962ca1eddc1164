// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package seclab

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Azure/seclab/internal/environment"
	getter "github.com/hashicorp/go-getter"
)

// FetchSecurityLabLibraryMember fetches a member of the well-known lab library
// from its git repository at the supplied path and ref.
// The destination directory is appended to the base directory from
// environment.SecLabDir() and the result is returned as an fs.FS.
func FetchSecurityLabLibraryMember(ctx context.Context, destinationDirectory, path, ref string) (fs.FS, error) {
	q := fmt.Sprintf("%s//%s?ref=%s", environment.LabLibraryGitUrl(), path, ref)
	return FetchLibraryByGetterString(ctx, q, destinationDirectory)
}

// FetchLibraryByGetterString fetches a library from a go-getter URL into
// destinationDirectory, relative to the base directory from
// environment.SecLabDir(). The destination is emptied first so that fetches
// are idempotent.
func FetchLibraryByGetterString(ctx context.Context, getterString, destinationDirectory string) (fs.FS, error) {
	dst := filepath.Join(environment.SecLabDir(), destinationDirectory)
	if err := os.RemoveAll(dst); err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: could not remove destination directory %s: %w", dst, err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: could not get working directory: %w", err)
	}
	client := getter.Client{
		Ctx:  ctx,
		Src:  getterString,
		Dst:  dst,
		Pwd:  wd,
		Mode: getter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: could not fetch library member `%s`: %w", getterString, err)
	}
	return os.DirFS(dst), nil
}
