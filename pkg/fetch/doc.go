// Package fetch is the reference transport adapter for the store package. The
// stores themselves never perform I/O; fetch runs the HTTP round trip, decodes
// the JSON envelopes, maps transport outcomes onto status codes and feeds the
// resolved result into a store exactly once.
//
// Using fetch is optional. Any transport that produces store.TransferError
// values and calls the store result methods can take its place.
package fetch
