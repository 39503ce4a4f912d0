// Package shared holds code used across layers that belongs to no single
// domain package. Its testutil subpackage provides dataset fixtures and a
// capturing slog handler for tests.
package shared
