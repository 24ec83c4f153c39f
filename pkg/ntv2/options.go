package ntv2

import "github.com/beetlebugorg/ntv2/internal/grid"

// OpenOptions configures how a grid shift file is loaded.
type OpenOptions struct {
	// Lazy keeps the source open and reads each subgrid's node lattice on
	// first use instead of materializing the whole file up front. Useful for
	// national grids with many subgrids when only a region is queried.
	//
	// Lazy mode requires an uncompressed source. Default is false: the whole
	// file is loaded eagerly and the source is released.
	Lazy bool

	// LoadAccuracy materializes the accuracy planes of each node record
	// alongside the shift planes. Disabling it halves lattice memory;
	// shift results then report accuracy as unavailable.
	LoadAccuracy bool
}

// DefaultOpenOptions returns options with defaults: eager loading with
// accuracy data.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		Lazy:         false,
		LoadAccuracy: true,
	}
}

func (o OpenOptions) gridOptions() grid.LoadOptions {
	return grid.LoadOptions{LoadAccuracy: o.LoadAccuracy}
}
