// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package secrets stores and resolves the Clappia workplace credentials.

Credentials are split into three keys (workplace_id, api_key and
requesting_user_email) and looked up through a priority-ordered chain of
backends:

	env      - CLAPPIA_WORKPLACE_ID, CLAPPIA_API_KEY, CLAPPIA_REQUESTING_USER_EMAIL
	keychain - OS keychain under the "clappia" service
	config   - non-secret values from the CLI config file

The first backend holding a key wins. The API key is only ever written to the
keychain; the config backend never carries it.

# Usage

	resolver := secrets.NewResolver(
	    secrets.NewEnvBackend(),
	    secrets.NewKeychainBackend(),
	    secrets.NewStaticBackend("config", secrets.ConfigBackendPriority, map[string]string{
	        secrets.KeyWorkplaceID: cfg.WorkplaceID,
	    }),
	)

	creds, err := resolver.Credentials(ctx)

A Resolver satisfies node.CredentialSource, so it can be handed straight to
node.Execute.
*/
package secrets
