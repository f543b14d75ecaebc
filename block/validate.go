package block

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jamessynge/outlinemerge/dm"
)

// Validate checks that blocks is usable as a merge input, reporting every
// problem found. Each reported error matches dm.ErrInvalidInput.
func Validate(blocks []*Block) error {
	var result *multierror.Error
	for i, b := range blocks {
		if b == nil {
			result = multierror.Append(result, errors.Wrapf(dm.ErrInvalidInput, "block %d is nil", i))
			continue
		}
		if b.Level < 0 {
			result = multierror.Append(result,
				errors.Wrapf(dm.ErrInvalidInput, "block %d has negative level %d", i, b.Level))
		}
	}
	return result.ErrorOrNil()
}
