package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsSchemes lists the key URI schemes with a registered driver. base64key is
// the local driver and is meant for development only.
var kmsSchemes = []string{"awskms", "azurekeyvault", "gcpkms", "hashivault", "base64key"}

// GoCloudKMSService opens keepers through the gocloud.dev/secrets URL mux.
type GoCloudKMSService struct{}

// NewKMSService returns a KMS service backed by gocloud.dev/secrets.
func NewKMSService() *GoCloudKMSService {
	return &GoCloudKMSService{}
}

// OpenKeeper opens the key at keyURI. Errors name the scheme only, since a
// base64key URI carries the key itself.
func (GoCloudKMSService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	scheme, _, found := strings.Cut(keyURI, "://")
	if !found || !slices.Contains(kmsSchemes, scheme) {
		return nil, fmt.Errorf(
			"failed to open KMS keeper: unsupported key uri scheme %q (supported: %s)",
			scheme,
			strings.Join(kmsSchemes, ", "),
		)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper for %s: %w", scheme, err)
	}
	return keeper, nil
}
