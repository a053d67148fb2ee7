// Package numerator defines how human-readable sale numbers are allocated.
package numerator

// Strategy selects how numbers are reserved.
type Strategy int

const (
	// StrategyStrict reserves one number per call inside the caller's
	// transaction, so a rolled-back sale does not burn a number.
	StrategyStrict Strategy = iota

	// StrategyCached reserves blocks in memory. Restarts leave gaps.
	StrategyCached
)

// Options tune a single allocation.
type Options struct {
	Strategy Strategy
	// RangeSize is the block size for StrategyCached. Defaults to 50.
	RangeSize int64
}

// DefaultOptions returns strict allocation.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config describes one numbering sequence.
type Config struct {
	// Prefix starts every number, e.g. "V".
	Prefix string

	// Scope separates counters without appearing in the number.
	// Sales use the club id so each club counts on its own.
	Scope string

	IncludeYear bool

	// PadWidth is the minimum digit count. Defaults to 5.
	PadWidth int

	// ResetPeriod is "year", "month" or "never".
	ResetPeriod string
}

// DefaultConfig returns a yearly-reset sequence formatted as PREFIX-YYYY-NNNNN.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// SaleConfig returns the per-club sale sequence.
func SaleConfig(clubID string) Config {
	cfg := DefaultConfig("V")
	cfg.Scope = clubID
	return cfg
}
