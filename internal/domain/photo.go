package domain

// Photo is a staged upload. The binary stays with the photo pipeline until
// Commit succeeds, at which point URL holds the durable reference and the
// staged bytes may be released.
type Photo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Uploaded    bool   `json:"uploaded"`
	URL         string `json:"url,omitempty"`
}
