// Package domain holds the trip-card model: flight and hotel items, their
// lifecycle statuses, and the per-conversation trip record that reconciliation
// produces.
package domain
