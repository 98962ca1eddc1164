// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/seclab"
	"github.com/Azure/seclab/graph"
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

func newFakeGraphClient(t *testing.T, do func(req *http.Request) (*http.Response, error)) *graph.Client {
	t.Helper()
	c, err := graph.NewClient(fakeCredential{}, &graph.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: &fakeTransport{do: do},
		},
	})
	require.NoError(t, err)
	return c
}

// newEntraTenant builds a tenant with one scenario holding a security group
// and an app registration that wants a Graph application permission.
func newEntraTenant(t *testing.T) *Tenant {
	t.Helper()
	cat := seclab.NewSecLab(nil)
	require.NoError(t, cat.Init(context.Background(), os.DirFS("../testdata/entra")))
	bp, err := cat.CopyBlueprint("entra")
	require.NoError(t, err)
	bp.WithWellKnownValues(seclab.WellKnownValues{})

	tenant := NewTenant(cat)
	require.NoError(t, tenant.AddScenario(context.Background(), &ScenarioAddRequest{
		Name:      "lab",
		Blueprint: bp,
	}))
	return tenant
}

const graphSpBody = `{"value":[{"id":"graph-sp","appId":"` + graph.GraphResourceAppId + `",` +
	`"appRoles":[{"id":"role-1","value":"Sites.ReadWrite.All"}]}]}`

// TestApplyCreatesResources tests that an empty tenant gets the group, the
// application, its service principal and the permission grant created.
func TestApplyCreatesResources(t *testing.T) {
	t.Parallel()

	tenant := newEntraTenant(t)
	gc := newFakeGraphClient(t, func(req *http.Request) (*http.Response, error) {
		path, query := req.URL.Path, req.URL.RawQuery
		switch {
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/groups"):
			return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
		case req.Method == http.MethodPost && strings.HasSuffix(path, "/groups"):
			return jsonResponse(req, http.StatusCreated,
				`{"id":"g1","displayName":"Security analysts","mailNickname":"analysts"}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/applications"):
			return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
		case req.Method == http.MethodPost && strings.HasSuffix(path, "/applications"):
			return jsonResponse(req, http.StatusCreated,
				`{"id":"appobj-1","appId":"app-1","displayName":"Content scanner","signInAudience":"AzureADMyOrg"}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals") &&
			strings.Contains(query, graph.GraphResourceAppId):
			return jsonResponse(req, http.StatusOK, graphSpBody), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals"):
			return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
		case req.Method == http.MethodPost && strings.HasSuffix(path, "/servicePrincipals"):
			return jsonResponse(req, http.StatusCreated, `{"id":"sp-1","appId":"app-1"}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
		case req.Method == http.MethodPost && strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusCreated,
				`{"id":"assign-1","appRoleId":"role-1","principalId":"sp-1","resourceId":"graph-sp"}`), nil
		}
		t.Errorf("unexpected request: %s %s", req.Method, req.URL)
		return jsonResponse(req, http.StatusNotImplemented, `{}`), nil
	})

	rec := NewReconciler(tenant, gc, nil)
	res, err := rec.Apply(context.Background(), "lab")
	require.NoError(t, err)
	counts := res.Counts()
	assert.Equal(t, 4, counts[ActionCreated])
	assert.Equal(t, 0, counts[ActionFailed])
}

// TestApplyIsIdempotent tests that a second run against a converged tenant
// records everything unchanged and issues no writes.
func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	var writes int64
	tenant := newEntraTenant(t)
	gc := newFakeGraphClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			atomic.AddInt64(&writes, 1)
			return jsonResponse(req, http.StatusBadRequest, `{}`), nil
		}
		path, query := req.URL.Path, req.URL.RawQuery
		switch {
		case strings.HasSuffix(path, "/groups"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"g1","displayName":"Security analysts","mailNickname":"analysts","description":"Lab analysts."}]}`), nil
		case strings.HasSuffix(path, "/applications"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"appobj-1","appId":"app-1","displayName":"Content scanner","signInAudience":"AzureADMyOrg"}]}`), nil
		case strings.HasSuffix(path, "/servicePrincipals") && strings.Contains(query, graph.GraphResourceAppId):
			return jsonResponse(req, http.StatusOK, graphSpBody), nil
		case strings.HasSuffix(path, "/servicePrincipals"):
			return jsonResponse(req, http.StatusOK, `{"value":[{"id":"sp-1","appId":"app-1"}]}`), nil
		case strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"assign-1","appRoleId":"role-1","principalId":"sp-1","resourceId":"graph-sp"}]}`), nil
		}
		t.Errorf("unexpected request: %s %s", req.Method, req.URL)
		return jsonResponse(req, http.StatusNotImplemented, `{}`), nil
	})

	rec := NewReconciler(tenant, gc, nil)
	res, err := rec.Apply(context.Background(), "lab")
	require.NoError(t, err)
	counts := res.Counts()
	assert.Equal(t, 4, counts[ActionUnchanged])
	assert.Equal(t, 0, counts[ActionCreated])
	assert.Equal(t, int64(0), atomic.LoadInt64(&writes))
}

// TestApplyPatchesDriftedGroup tests that a group whose description drifted
// from the definition is patched rather than recreated.
func TestApplyPatchesDriftedGroup(t *testing.T) {
	t.Parallel()

	var patched int64
	tenant := newEntraTenant(t)
	gc := newFakeGraphClient(t, func(req *http.Request) (*http.Response, error) {
		path, query := req.URL.Path, req.URL.RawQuery
		switch {
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/groups"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"g1","displayName":"Security analysts","mailNickname":"analysts","description":"stale"}]}`), nil
		case req.Method == http.MethodPatch && strings.HasSuffix(path, "/groups/g1"):
			atomic.AddInt64(&patched, 1)
			return jsonResponse(req, http.StatusNoContent, ``), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/applications"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"appobj-1","appId":"app-1","displayName":"Content scanner","signInAudience":"AzureADMyOrg"}]}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals") &&
			strings.Contains(query, graph.GraphResourceAppId):
			return jsonResponse(req, http.StatusOK, graphSpBody), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals"):
			return jsonResponse(req, http.StatusOK, `{"value":[{"id":"sp-1","appId":"app-1"}]}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"assign-1","appRoleId":"role-1"}]}`), nil
		}
		t.Errorf("unexpected request: %s %s", req.Method, req.URL)
		return jsonResponse(req, http.StatusNotImplemented, `{}`), nil
	})

	rec := NewReconciler(tenant, gc, nil)
	res, err := rec.Apply(context.Background(), "lab")
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&patched))
	assert.Equal(t, 1, res.Counts()[ActionUpdated])
}

// TestApplyGrantConflictConverges tests that a 409 on the permission grant is
// treated as already converged rather than a failure.
func TestApplyGrantConflictConverges(t *testing.T) {
	t.Parallel()

	tenant := newEntraTenant(t)
	gc := newFakeGraphClient(t, func(req *http.Request) (*http.Response, error) {
		path, query := req.URL.Path, req.URL.RawQuery
		switch {
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/groups"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"g1","displayName":"Security analysts","mailNickname":"analysts","description":"Lab analysts."}]}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/applications"):
			return jsonResponse(req, http.StatusOK,
				`{"value":[{"id":"appobj-1","appId":"app-1","displayName":"Content scanner","signInAudience":"AzureADMyOrg"}]}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals") &&
			strings.Contains(query, graph.GraphResourceAppId):
			return jsonResponse(req, http.StatusOK, graphSpBody), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/servicePrincipals"):
			return jsonResponse(req, http.StatusOK, `{"value":[{"id":"sp-1","appId":"app-1"}]}`), nil
		case req.Method == http.MethodGet && strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
		case req.Method == http.MethodPost && strings.HasSuffix(path, "/appRoleAssignments"):
			return jsonResponse(req, http.StatusConflict,
				`{"error":{"code":"Request_MultipleObjectsWithSameKeyValue","message":"Permission entry already exists."}}`), nil
		}
		t.Errorf("unexpected request: %s %s", req.Method, req.URL)
		return jsonResponse(req, http.StatusNotImplemented, `{}`), nil
	})

	rec := NewReconciler(tenant, gc, nil)
	res, err := rec.Apply(context.Background(), "lab")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Counts()[ActionUnchanged])
	assert.Empty(t, res.Failed())
}

// TestApplyStopsAtFailedPhase tests that a failing phase aborts the run before
// any dependent phase issues requests.
func TestApplyStopsAtFailedPhase(t *testing.T) {
	t.Parallel()

	var laterRequests int64
	tenant := newEntraTenant(t)
	gc := newFakeGraphClient(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/groups") {
			return jsonResponse(req, http.StatusForbidden,
				`{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges."}}`), nil
		}
		atomic.AddInt64(&laterRequests, 1)
		return jsonResponse(req, http.StatusOK, `{"value":[]}`), nil
	})

	rec := NewReconciler(tenant, gc, nil)
	res, err := rec.Apply(context.Background(), "lab")
	require.Error(t, err)
	assert.ErrorContains(t, err, "securityGroups")
	require.Len(t, res.Failed(), 1)
	assert.Equal(t, "securityGroup", res.Failed()[0].Kind)
	assert.Equal(t, int64(0), atomic.LoadInt64(&laterRequests))
}

// TestPollUntilReturnsOnSuccess tests that a succeeding call is not retried.
func TestPollUntilReturnsOnSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := pollUntil(context.Background(), time.Minute, func() (string, error) {
		calls++
		return "ok", nil
	}, func(error) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
}

// TestPollUntilStopsOnTerminalError tests that a non-retryable error is
// returned without further attempts.
func TestPollUntilStopsOnTerminalError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := pollUntil(context.Background(), time.Minute, func() (string, error) {
		calls++
		return "", assert.AnError
	}, func(error) bool { return false })
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

// TestPollUntilHonorsDeadline tests that an expired deadline surfaces the last
// error instead of sleeping again.
func TestPollUntilHonorsDeadline(t *testing.T) {
	t.Parallel()

	_, err := pollUntil(context.Background(), 0, func() (string, error) {
		return "", assert.AnError
	}, func(error) bool { return true })
	assert.ErrorIs(t, err, assert.AnError)
}
