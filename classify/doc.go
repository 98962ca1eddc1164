// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package classify runs bulk sensitivity labeling over SharePoint drive items.
// A Runner executes a labeling action per manifest item with bounded
// parallelism and retry, and a Ledger persists every outcome so that runs can
// be resumed, audited and reported on.
package classify
