// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package testgen generates deterministic lab fixture data: employee and
// customer record files that trip the built-in classifiers, sample documents
// that match custom SIT patterns, and EDM schemas for exact data match uploads.
// All output is a pure function of the seed so labs are reproducible.
package testgen
