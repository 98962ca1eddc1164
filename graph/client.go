// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package graph is a minimal typed Microsoft Graph client built on the azcore
// pipeline. It covers the directory and drive surface needed to provision
// security lab resources: applications, service principals, administrative
// units, groups, users and drive item labelling.
package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/seclab/internal/environment"
)

const (
	moduleName    = "github.com/Azure/seclab/graph"
	moduleVersion = "v0.1.0"
	apiVersion    = "v1.0"
)

// ClientOptions contains optional settings for the Graph client.
type ClientOptions struct {
	azcore.ClientOptions

	// Endpoint overrides the Microsoft Graph endpoint, e.g. for sovereign clouds.
	Endpoint string
}

// Client is a Microsoft Graph API client.
type Client struct {
	endpoint string
	pl       runtime.Pipeline
}

// NewClient creates a new Microsoft Graph client with the supplied credential.
func NewClient(cred azcore.TokenCredential, options *ClientOptions) (*Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}
	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = environment.GraphEndpoint()
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	authPolicy := runtime.NewBearerTokenPolicy(cred, []string{endpoint + "/.default"}, nil)
	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}, &options.ClientOptions)

	return &Client{
		endpoint: endpoint,
		pl:       pl,
	}, nil
}

// url joins the endpoint, API version and resource path.
func (c *Client) url(path string) string {
	return runtime.JoinPaths(c.endpoint, apiVersion, path)
}

// get issues a GET for the resource path and unmarshals the response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := runtime.NewRequest(ctx, http.MethodGet, c.url(path))
	if err != nil {
		return err //nolint:wrapcheck
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return newResponseError(resp)
	}
	return runtime.UnmarshalAsJSON(resp, out) //nolint:wrapcheck
}

// post issues a POST with the supplied body. If out is non-nil the response
// body is unmarshaled into it.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	req, err := runtime.NewRequest(ctx, http.MethodPost, c.url(path))
	if err != nil {
		return err //nolint:wrapcheck
	}
	if body != nil {
		if err := runtime.MarshalAsJSON(req, body); err != nil {
			return err //nolint:wrapcheck
		}
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent) {
		return newResponseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return runtime.UnmarshalAsJSON(resp, out) //nolint:wrapcheck
}

// patch issues a PATCH with the supplied body.
func (c *Client) patch(ctx context.Context, path string, body any) error {
	req, err := runtime.NewRequest(ctx, http.MethodPatch, c.url(path))
	if err != nil {
		return err //nolint:wrapcheck
	}
	if err := runtime.MarshalAsJSON(req, body); err != nil {
		return err //nolint:wrapcheck
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusNoContent) {
		return newResponseError(resp)
	}
	return nil
}

// delete issues a DELETE for the resource path.
func (c *Client) delete(ctx context.Context, path string) error {
	req, err := runtime.NewRequest(ctx, http.MethodDelete, c.url(path))
	if err != nil {
		return err //nolint:wrapcheck
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusNoContent) {
		return newResponseError(resp)
	}
	return nil
}

// listPage is the shape of a Graph collection response.
type listPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// list issues a GET for a collection and follows @odata.nextLink until the
// collection is exhausted, invoking each for every item.
func (c *Client) list(ctx context.Context, path string, each func(json.RawMessage) error) error {
	url := c.url(path)
	for url != "" {
		req, err := runtime.NewRequest(ctx, http.MethodGet, url)
		if err != nil {
			return err //nolint:wrapcheck
		}
		resp, err := c.pl.Do(req)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if !runtime.HasStatusCode(resp, http.StatusOK) {
			return newResponseError(resp)
		}
		page := new(listPage)
		if err := runtime.UnmarshalAsJSON(resp, page); err != nil {
			return err //nolint:wrapcheck
		}
		for _, raw := range page.Value {
			if err := each(raw); err != nil {
				return err
			}
		}
		url = page.NextLink
	}
	return nil
}

// listAs collects a typed slice from a Graph collection, following paging.
func listAs[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	res := make([]T, 0)
	err := c.list(ctx, path, func(raw json.RawMessage) error {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return err //nolint:wrapcheck
		}
		res = append(res, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
