// Package tag mints process-unique identities for dispatch storage.
//
// A Tag names one independent callback storage slot. Two distinct Tags
// never alias each other's storage; reusing one Tag value for two live
// bindings is rejected at bind time by the dispatch registry. The zero
// Tag is invalid, and valid Tags can only be obtained from New or
// Named, so a forged identity cannot collide with an allocated one.
package tag
