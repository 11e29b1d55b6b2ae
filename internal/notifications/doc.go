// Package notifications delivers push notifications for catalog events via
// ntfy. When no topic is configured the service degrades to a noop so
// callers never need to guard notification sends.
package notifications
