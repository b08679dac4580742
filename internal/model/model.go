// Package model defines the domain types used across the application.
package model

// Record represents a single SMS record fetched from the Hadi API.
// Records are immutable once extracted.
type Record struct {
	// Number is the sender phone number, empty when the API omits it.
	Number string
	// Message is the raw message body.
	Message string
	// OTP is the first 4-8 digit group found in Message, empty when none.
	OTP string
	// ReceivedAt is the record timestamp as reported by the API,
	// in "2006-01-02 15:04:05" form in the configured timezone.
	ReceivedAt string
	// Hash is the stable dedup identifier: hex sha256 of
	// "ReceivedAt|Number|Message".
	Hash string
}
