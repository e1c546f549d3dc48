// Package importapp drives catalog imports end to end: fetch the provider
// record, price it, resolve category and owner, then persist through the
// server path with a client-side fallback.
package importapp
