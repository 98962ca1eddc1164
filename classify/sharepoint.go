// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/internal/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const sharePointRetryMax = 4

// SharePointClient enumerates and deletes seeded lab files in a drive. It sits
// on a retrying HTTP client because drive enumeration over large seeded
// folders hits throttling well before the labeling calls do.
type SharePointClient struct {
	http     *http.Client
	cred     azcore.TokenCredential
	endpoint string
	logger   zerolog.Logger
}

// NewSharePointClient creates a SharePointClient for the given Graph endpoint,
// e.g. "https://graph.microsoft.com".
func NewSharePointClient(cred azcore.TokenCredential, endpoint string) *SharePointClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = sharePointRetryMax
	rc.Logger = nil
	return &SharePointClient{
		http:     rc.StandardClient(),
		cred:     cred,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		logger:   log.WithComponent("sharepoint"),
	}
}

// ListFolder returns the files directly under the given folder path in the
// drive, following pagination. Folders are descended one level only; seeded
// lab data is flat.
func (c *SharePointClient) ListFolder(ctx context.Context, driveId, folder string) ([]graph.DriveItem, error) {
	next := fmt.Sprintf("%s/v1.0/drives/%s/root:/%s:/children",
		c.endpoint, url.PathEscape(driveId), folder)
	var items []graph.DriveItem
	for next != "" {
		var page struct {
			Value    []graph.DriveItem `json:"value"`
			NextLink string            `json:"@odata.nextLink"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			if item.Folder != nil {
				continue
			}
			items = append(items, item)
		}
		next = page.NextLink
	}
	return items, nil
}

// DeleteItems deletes the given drive items. The first failure stops the
// sweep; already deleted items (404) are tolerated.
func (c *SharePointClient) DeleteItems(ctx context.Context, driveId string, items []graph.DriveItem) (int, error) {
	deleted := 0
	for _, item := range items {
		u := fmt.Sprintf("%s/v1.0/drives/%s/items/%s",
			c.endpoint, url.PathEscape(driveId), url.PathEscape(item.Id))
		status, err := c.do(ctx, http.MethodDelete, u, nil)
		if err != nil {
			return deleted, err
		}
		if status == http.StatusNotFound {
			continue
		}
		if status != http.StatusNoContent {
			return deleted, fmt.Errorf("deleting %s: unexpected status %d", item.Name, status)
		}
		c.logger.Debug().Str("name", item.Name).Msg("deleted")
		deleted++
	}
	return deleted, nil
}

func (c *SharePointClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if err := c.authorize(ctx, req.Request); err != nil {
		return err
	}
	resp, err := c.http.Do(req.Request)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", u, err)
	}
	return nil
}

func (c *SharePointClient) do(ctx context.Context, method, u string, body []byte) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	if err := c.authorize(ctx, req.Request); err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req.Request)
	if err != nil {
		return 0, fmt.Errorf("requesting %s: %w", u, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *SharePointClient) authorize(ctx context.Context, req *http.Request) error {
	tk, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{c.endpoint + "/.default"},
	})
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tk.Token)
	return nil
}
