package service

import "context"

// AggregateInvalidator drops cached dashboard aggregates. Services that
// write rows feeding the dashboard call it after a successful mutation so
// cached summaries never outlive the data they describe.
type AggregateInvalidator interface {
	InvalidateCache(ctx context.Context)
}

func invalidateAggregates(ctx context.Context, inv AggregateInvalidator) {
	if inv != nil {
		inv.InvalidateCache(ctx)
	}
}
