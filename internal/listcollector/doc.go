// Package listcollector implements the ListCollector: a bounded worker pool
// that fans independent per-item git queries out in parallel, renders a
// skeleton table within milliseconds, and fills cells in place as task
// results drain back in.
//
// Grounded on the teacher's internal/git/load.go errgroup fan-out (bounded
// concurrency, per-item error isolation, stable-order results) and
// internal/ui/static/table.go's lipgloss table renderer, generalized from a
// single eager load into a skeleton-then-progressive-fill pipeline with a
// single-producer-many-consumer result channel.
package listcollector
