// Package importing holds the vocabulary of a catalog import: the error
// taxonomy reported per item, the in-flight job registry port and the two
// persistence ports (server-authoritative and client fallback).
package importing
