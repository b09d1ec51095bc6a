// Package scanner owns the scan lifecycle and the discovery pipeline.
//
// A Controller drives a radio.Radio: it starts scanning when the adapter is
// powered on or the operator asks for it, stops when the adapter goes away or
// the operator asks for it, and reports every transition as a status event.
// Discovered peripherals flow through a Pipeline that filters them against the
// configured targets, decodes iBeacon and magnetic-field payloads and emits one
// measurement per advertisement.
//
// All controller state is owned by the goroutine running Controller.Run. Radio
// callbacks, operator commands and scan completions are posted to it and
// handled one at a time.
package scanner
