// Package authz holds the single ownership predicate every project and
// issue handler runs before touching domain data.
package authz

import (
	"context"
	"errors"
)

// ErrNotFound is returned both when a resource is absent and when it
// belongs to someone else. The two cases are deliberately
// indistinguishable so responses never leak resource existence.
var ErrNotFound = errors.New("resource not found")

// Resolver maps a resource id to the user id that owns it, returning
// ErrNotFound for absent resources. Issues resolve through their parent
// project's owner, never the issue author.
type Resolver func(ctx context.Context, resourceID string) (string, error)

// CheckOwner refuses the operation unless the resource exists and is
// owned by callerID. Every read and mutation on an owner-scoped
// resource goes through here in the same request that performs it.
func CheckOwner(ctx context.Context, resolve Resolver, resourceID, callerID string) error {
	ownerID, err := resolve(ctx, resourceID)
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return ErrNotFound
	}
	return nil
}
