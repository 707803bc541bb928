package ports

import "context"

// Subscription is an open push subscription on the catalog change feed.
type Subscription interface {
	// Close tears down the subscription and releases the remote connection.
	// Must be called on shutdown.
	Close() error
}

// CatalogBus delivers push notifications whenever the package catalog
// changes. Notifications carry no payload: subscribers reload the full
// record set on every delivery rather than applying diffs.
type CatalogBus interface {
	// NotifyChanged publishes a catalog change notification.
	NotifyChanged(ctx context.Context) error

	// SubscribeChanges invokes onChange for every notification until the
	// subscription is closed. onError is called at most once, when the
	// subscription fails terminally; the bus does not retry.
	SubscribeChanges(ctx context.Context, onChange func(), onError func(error)) (Subscription, error)
}
