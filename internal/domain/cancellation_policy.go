package domain

import "time"

// CancellationPolicy limits how many cancellations and no-shows a client
// may accumulate within a rolling window before being blocked
type CancellationPolicy struct {
	ProviderID        int64
	IsEnabled         bool
	PeriodDays        int     // rolling window length
	MaxCancellations  int     // threshold, inclusive
	NoShowMultiplier  float64 // weight of a no-show relative to a cancellation
	BlockDurationDays int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisabledPolicy is what a provider without a stored policy gets
func DisabledPolicy(providerID int64) *CancellationPolicy {
	return &CancellationPolicy{
		ProviderID:        providerID,
		IsEnabled:         false,
		PeriodDays:        DefaultPolicyPeriodDays,
		MaxCancellations:  DefaultPolicyMaxCancellations,
		NoShowMultiplier:  DefaultPolicyNoShowMultiplier,
		BlockDurationDays: DefaultPolicyBlockDurationDays,
	}
}

// BlockState is the derived state of a client under a policy
type BlockState string

const (
	// BlockStateClear policy disabled, nothing to report
	BlockStateClear BlockState = "clear"
	// BlockStateWarned policy enabled, client under threshold
	BlockStateWarned BlockState = "warned"
	// BlockStateBlocked client over threshold and block still running
	BlockStateBlocked BlockState = "blocked"
	// BlockStateExpired client over threshold but the block has lapsed
	BlockStateExpired BlockState = "expired"
)

// CancellationStats counts a client's cancellations and no-shows inside the window
type CancellationStats struct {
	Cancellations   int
	NoShows         int
	EffectiveCount  float64
	MostRecentEvent *time.Time // latest qualifying cancellation or no-show
}

// BlockStats is what the booking surface shows to the client
type BlockStats struct {
	EffectiveCount float64
	Max            int
}

// ClientBlockStatus is derived on every request and never persisted
type ClientBlockStatus struct {
	Blocked    bool
	State      BlockState
	UnblocksAt *time.Time
	Stats      *BlockStats
}
