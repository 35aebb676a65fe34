// Package retry runs an operation again after transient failures, waiting
// with exponential backoff between attempts.
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
//	    return callRemote(ctx)
//	})
//
// The wait respects ctx: cancellation stops retrying and returns the last
// operation error. A delay that would overrun the context deadline is not
// started at all.
package retry
