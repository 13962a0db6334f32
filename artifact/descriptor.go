package artifact

import (
	"fmt"
	"strings"

	"github.com/pontos-detect/pontos/internal/validate"
)

// Descriptor names a remote artifact, where it lives on disk, and the
// SHA-256 digest it must have. An empty or blank Digest disables
// verification.
type Descriptor struct {
	SourceURL string `json:"source_url" validate:"required,http_url"`
	Path      string `json:"path" validate:"required"`
	Digest    string `json:"sha256" validate:"omitempty,len=64,hexadecimal"`
}

// Validate reports whether d can be acquired. The returned error
// matches ErrInvalidDescriptor.
func (d Descriptor) Validate() error {
	d.Digest = strings.TrimSpace(d.Digest)
	if err := validate.Check(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	return nil
}
