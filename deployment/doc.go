// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package deployment binds blueprints from a seclab catalog to a tenant and
// reconciles the resulting plan against Microsoft Graph, Azure RBAC and
// Key Vault. Reconciliation is idempotent: every resource is looked up by a
// stable key, created when absent and patched when drifted, so a failed run
// can be re-run and will converge.
package deployment
