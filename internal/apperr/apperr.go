// Package apperr models domain-level rejections: outcomes the caller is
// expected to handle, carrying the HTTP status the transport layer should
// answer with. Unexpected failures stay plain errors and bubble up unchanged.
package apperr

import "errors"

// ErrNotFound is the shared not-found signal; the transport layer maps it to
// a 404. Services return it instead of nil/false so callers can errors.Is it.
var ErrNotFound = errors.New("not found")

type Rejection struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (r *Rejection) Error() string { return r.Message }

// Reject builds a domain rejection, e.g. Reject(409, "category already exists").
func Reject(status int, message string) *Rejection {
	return &Rejection{Message: message, Status: status}
}

// AsRejection unwraps err into a *Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
