// Package models defines the payloads exchanged with the finance backend.
//
// Monetary values are kept as the decimal strings the backend sends (Money);
// they are parsed only for display and ordering. Mapping-shaped fields
// (Amounts, Breakdown) keep the key order of the response body so that
// "first encountered wins" tie-breaking is well defined.
package models
