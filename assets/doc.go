// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package assets contains the security lab resource types that are read from
// library files and deployed to the tenant.
package assets
