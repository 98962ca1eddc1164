// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCredential satisfies azcore.TokenCredential without any network calls.
type fakeCredential struct{}

func (fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// fakeTransport dispatches pipeline requests to a test supplied handler.
type fakeTransport struct {
	do func(req *http.Request) (*http.Response, error)
}

func (t *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	return t.do(req)
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func newFakeClient(t *testing.T, do func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()
	c, err := NewClient(fakeCredential{}, &ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: &fakeTransport{do: do},
		},
	})
	require.NoError(t, err)
	return c
}

// TestListFollowsPaging tests that collection reads follow @odata.nextLink.
func TestListFollowsPaging(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer fake-token", req.Header.Get("Authorization"))
		if strings.Contains(req.URL.RawQuery, "skiptoken") {
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"u3","displayName":"Carla"}]}`), nil
		}
		next := "https://graph.microsoft.com/v1.0/groups/g1/members?$skiptoken=abc"
		page, _ := json.Marshal(map[string]any{
			"value": []map[string]string{
				{"id": "u1", "displayName": "Ana"},
				{"id": "u2", "displayName": "Ben"},
			},
			"@odata.nextLink": next,
		})
		return jsonResponse(req, http.StatusOK, string(page)), nil
	})

	members, err := c.ListGroupMembers(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "u1", members[0].Id)
	assert.Equal(t, "Carla", members[2].DisplayName)
}

// TestFindGroupByMailNickname tests the filter query and decoding.
func TestFindGroupByMailNickname(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.URL.RawQuery, "mailNickname")
		assert.Contains(t, req.URL.RawQuery, "lab-analysts")
		return jsonResponse(req, http.StatusOK,
			`{"value":[{"id":"g1","displayName":"Security analysts","mailNickname":"lab-analysts"}]}`), nil
	})

	group, err := c.FindGroupByMailNickname(context.Background(), "lab-analysts")
	require.NoError(t, err)
	assert.Equal(t, "g1", group.Id)
	assert.Equal(t, "Security analysts", group.DisplayName)
}

// TestFindGroupByMailNicknameNotFound tests the sentinel on an empty result.
func TestFindGroupByMailNicknameNotFound(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
	})

	_, err := c.FindGroupByMailNickname(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

// TestGetUserNotFound tests that a Graph 404 surfaces as a response error that
// the helpers classify.
func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusNotFound,
			`{"error":{"code":"Request_ResourceNotFound","message":"Resource 'u1' does not exist."}}`), nil
	})

	_, err := c.GetUser(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRetryable(err))
	var graphErr *Error
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "Request_ResourceNotFound", graphErr.Code)
	assert.Equal(t, "Resource 'u1' does not exist.", graphErr.Message)
	var respErr *azcore.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
}

// TestNonODataErrorBody tests that a non OData error body still produces a
// classifiable response error.
func TestNonODataErrorBody(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusServiceUnavailable, `upstream unavailable`), nil
	})

	_, err := c.GetUser(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	var graphErr *Error
	assert.False(t, errors.As(err, &graphErr))
}

// TestCreateSecurityGroup tests the request body and response decoding.
func TestCreateSecurityGroup(t *testing.T) {
	t.Parallel()

	c := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, req.Method)
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		var sent Group
		require.NoError(t, json.Unmarshal(body, &sent))
		assert.Equal(t, "lab-analysts", sent.MailNickname)
		require.NotNil(t, sent.SecurityEnabled)
		assert.True(t, *sent.SecurityEnabled)
		require.NotNil(t, sent.MailEnabled)
		assert.False(t, *sent.MailEnabled)
		return jsonResponse(req, http.StatusCreated,
			`{"id":"g1","displayName":"Security analysts","mailNickname":"lab-analysts"}`), nil
	})

	group, err := c.CreateSecurityGroup(context.Background(), "Security analysts", "lab-analysts", "Lab analysts.")
	require.NoError(t, err)
	assert.Equal(t, "g1", group.Id)
}
