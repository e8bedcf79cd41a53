package providers

import (
	"errors"
	"fmt"

	"infinite-experiment/logbook/internal/models"
)

// ProviderError describes a failed collaborator call
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes every ProviderError match models.ErrCollaboratorUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == models.ErrCollaboratorUnavailable
}

// IsProviderError reports whether err came from a collaborator call.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
