// Package mocks provides test doubles for the hal boundary
// interfaces.
package mocks
