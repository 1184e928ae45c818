package domain

import "fmt"

// ClientRef identifies a client either by account ID or, for clients
// without an account, by phone number
type ClientRef struct {
	ID    *int64
	Phone *string
}

// IsZero returns true if neither identifier is set
func (c ClientRef) IsZero() bool {
	return c.ID == nil && (c.Phone == nil || *c.Phone == "")
}

// String returns a log-friendly representation
func (c ClientRef) String() string {
	if c.ID != nil {
		return fmt.Sprintf("client_id=%d", *c.ID)
	}
	if c.Phone != nil {
		return fmt.Sprintf("client_phone=%s", *c.Phone)
	}
	return "client=<none>"
}
