package service

import (
	"context"
	"log"
	"strings"

	"fabric-digital-system/models"
)

// NameLookup finds the identifier of a remote object by its exact name
type NameLookup func(ctx context.Context, name string) (string, bool, error)

// IdentityResolver maps human-readable names to remote identifiers.
// Names are always tried first; when nothing matches, the input is used verbatim
// as if it were already an identifier. The fallback is never verified here.
type IdentityResolver struct {
	kind   string
	lookup NameLookup
}

// NewIdentityResolver creates a resolver for one kind of remote object
func NewIdentityResolver(kind string, lookup NameLookup) *IdentityResolver {
	return &IdentityResolver{
		kind:   kind,
		lookup: lookup,
	}
}

// NewFolderResolver resolves Drive folder names
func NewFolderResolver(drive DriveServiceInterface) *IdentityResolver {
	return NewIdentityResolver("folder", drive.ResolveFolder)
}

// NewSpreadsheetResolver resolves spreadsheet names
func NewSpreadsheetResolver(drive DriveServiceInterface) *IdentityResolver {
	return NewIdentityResolver("spreadsheet", drive.ResolveSpreadsheet)
}

// Resolve returns Resolved(id) when the name lookup matches, Unresolved(input) otherwise.
// The input is used exactly as given for both the lookup and the fallback.
// Lookup failures degrade to Unresolved, except auth and timeout failures.
func (r *IdentityResolver) Resolve(ctx context.Context, nameOrID string) (models.Resolution, error) {
	if strings.TrimSpace(nameOrID) == "" {
		return models.Unresolved(""), nil
	}

	id, found, err := r.lookup(ctx, nameOrID)
	if err != nil {
		if isFatal(err) {
			return models.Resolution{}, err
		}
		log.Printf("⚠️  Warning: %s lookup for '%s' failed, using it as an ID: %v", r.kind, nameOrID, err)
		return models.Unresolved(nameOrID), nil
	}

	if !found {
		log.Printf("🔍 %s '%s' not found by name, using it as an ID", r.kind, nameOrID)
		return models.Unresolved(nameOrID), nil
	}

	return models.ResolvedID(nameOrID, id), nil
}
