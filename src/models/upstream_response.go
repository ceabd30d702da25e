package models

// MUpstreamResponse is the raw answer of the upstream API for one call.
type MUpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *MUpstreamResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
