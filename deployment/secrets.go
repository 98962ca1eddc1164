// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/Azure/seclab/to"
	"golang.org/x/sync/errgroup"
)

// VaultURL returns the Key Vault endpoint for the given vault name.
func VaultURL(vaultName string) string {
	return fmt.Sprintf("https://%s.vault.azure.net", vaultName)
}

// ensureSecrets generates client secrets for applications that request one and
// stores them in the scenario's Key Vault. A secret is only generated when the
// vault does not already hold one under the configured name, so re-runs do not
// rotate credentials. The secret text never reaches the logs or the result.
func (r *Reconciler) ensureSecrets(ctx context.Context, sc *Scenario, st *applyState, res *ApplyResult) error {
	needed := false
	for _, def := range sc.AppRegistrations() {
		if def.GenerateSecret {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	if r.secretsClient == nil {
		return errors.New("secrets client not set")
	}

	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.opts.Parallelism)
	for name, def := range sc.AppRegistrations() {
		name, def := name, def
		if !def.GenerateSecret {
			continue
		}
		grp.Go(func() error {
			existing, err := r.secretsClient.GetSecret(ctxGrp, def.KeyVaultSecretName, "", nil)
			if err == nil && to.ValOrZero(existing.Value) != "" {
				res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Action: ActionUnchanged})
				return nil
			}
			if err != nil && !hasNotFound(err) {
				res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Action: ActionFailed, Error: err.Error()})
				return err
			}

			appObjectId, ok := st.get(st.appObjectIds, name)
			if !ok {
				err := fmt.Errorf("no application id recorded for %s", name)
				res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Action: ActionFailed, Error: err.Error()})
				return err
			}
			cred, err := r.graph.AddApplicationPassword(ctxGrp, appObjectId, def.KeyVaultSecretName)
			if err != nil {
				res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Action: ActionFailed, Error: err.Error()})
				return err
			}
			_, err = r.secretsClient.SetSecret(ctxGrp, def.KeyVaultSecretName, azsecrets.SetSecretParameters{
				Value: to.Ptr(cred.SecretText),
			}, nil)
			if err != nil {
				res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Action: ActionFailed, Error: err.Error()})
				return fmt.Errorf("storing secret %s: %w", def.KeyVaultSecretName, err)
			}
			res.record(ResourceResult{Kind: "secret", Name: def.KeyVaultSecretName, Id: cred.KeyId, Action: ActionCreated})
			return nil
		})
	}
	return grp.Wait() //nolint:wrapcheck
}
