package domain

import "time"

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// NGOApplication is a verification request from an NGO seeking the
// differentiated purchase tier. Documents holds blob-store paths of the
// uploaded registration papers.
type NGOApplication struct {
	ID                 string     `json:"id"`
	NGOName            string     `json:"ngoName"`
	RegistrationNumber string     `json:"registrationNumber"`
	ContactPerson      string     `json:"contactPerson"`
	ContactEmail       string     `json:"contactEmail"`
	ContactPhone       string     `json:"contactPhone"`
	ServiceArea        string     `json:"serviceArea"`
	OperationalDetails string     `json:"operationalDetails,omitempty"`
	Documents          []string   `json:"documents,omitempty"`
	Status             string     `json:"status"`
	AdminNotes         string     `json:"adminNotes,omitempty"`
	ReviewedBy         *string    `json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}
