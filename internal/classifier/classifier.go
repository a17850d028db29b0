package classifier

import "context"

// Classifier decides whether a message is a self-introduction.
//
// Implementations never fail open: on any uncertainty (provider outage,
// rate limiting, malformed output) the answer is false.
type Classifier interface {
	IsIntroduction(ctx context.Context, text string) bool
}
