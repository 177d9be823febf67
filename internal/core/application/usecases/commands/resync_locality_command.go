package commands

import (
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/guard"
)

var ErrResyncLocalityCommandIsNotConstructed = errors.New(
	"ResyncLocalityCommand must be created via NewResyncLocalityCommand constructor",
)

// ResyncLocalityCommand represents a request to reconcile every batch in a
// locality against its stored membership. Used for repair after migrations or
// suspected drift; the periodic sweep issues the same command per locality.
type ResyncLocalityCommand struct { //nolint:recvcheck //using for validation
	locality kernel.Locality

	guard guard.ConstructorGuard
}

// NewResyncLocalityCommand creates a command to resync the given locality.
// The raw key is normalized the same way order intake normalizes it.
func NewResyncLocalityCommand(rawLocality string) (ResyncLocalityCommand, error) {
	cmd := ResyncLocalityCommand{
		locality: kernel.LocalityFromString(rawLocality),
		guard:    guard.NewConstructorGuard(),
	}

	if err := cmd.locality.Validate(); err != nil {
		return ResyncLocalityCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrResyncLocalityCommandIsNotConstructed if validation fails.
func (c ResyncLocalityCommand) Validate() error {
	return c.guard.Validate(ErrResyncLocalityCommandIsNotConstructed)
}

// Locality returns the normalized locality to resync.
func (c ResyncLocalityCommand) Locality() kernel.Locality {
	return c.locality
}
