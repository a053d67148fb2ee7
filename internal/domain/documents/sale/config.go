package sale

import "clubledger/internal/core/numerator"

const (
	// NumeratorStrategy is strict: a sale is a fiscal document and a
	// rolled-back sale must not leave a gap.
	NumeratorStrategy = numerator.StrategyStrict
)
