// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package environment contains the types and methods for fetching configuration from the local environment.
package environment

import "os"

const (
	fetchDefaultBaseDir    = ".seclab"                          // fetchDefaultBaseDir is the default base directory for fetching libraries.
	fetchDefaultBaseDirEnv = "SECLAB_DIR"                       // fetchDefaultBaseDirEnv is the environment variable to override the default base directory.
	labLibraryGitUrl       = "github.com/Azure/security-lab-library" // labLibraryGitUrl is the URL of the well-known lab library.
	labLibraryGitUrlEnv    = "SECLAB_LIBRARY_GIT_URL"           // labLibraryGitUrlEnv is the environment variable to override the default git URL.
	graphEndpoint          = "https://graph.microsoft.com"      // graphEndpoint is the default Microsoft Graph endpoint.
	graphEndpointEnv       = "SECLAB_GRAPH_ENDPOINT"            // graphEndpointEnv is the environment variable to override the Graph endpoint.
)

// SecLabDir contents of the `SECLAB_DIR` environment variable, or the default which is `.seclab`.
func SecLabDir() string {
	dir := fetchDefaultBaseDir
	if d := os.Getenv(fetchDefaultBaseDirEnv); d != "" {
		dir = d
	}
	return dir
}

// LabLibraryGitUrl contents of the `SECLAB_LIBRARY_GIT_URL` environment variable, or the default which is `github.com/Azure/security-lab-library`.
func LabLibraryGitUrl() string {
	url := labLibraryGitUrl
	if u := os.Getenv(labLibraryGitUrlEnv); u != "" {
		url = u
	}
	return url
}

// GraphEndpoint contents of the `SECLAB_GRAPH_ENDPOINT` environment variable, or the default public cloud endpoint.
func GraphEndpoint() string {
	ep := graphEndpoint
	if e := os.Getenv(graphEndpointEnv); e != "" {
		ep = e
	}
	return ep
}
