package ngo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"clothcycle/internal/blob"
	"clothcycle/internal/domain"
	"clothcycle/internal/repository/ngoapp"
)

// Application is the verification form an NGO submits.
type Application struct {
	NGOName            string `json:"ngoName"`
	RegistrationNumber string `json:"registrationNumber"`
	ContactPerson      string `json:"contactPerson"`
	ContactEmail       string `json:"contactEmail"`
	ContactPhone       string `json:"contactPhone"`
	ServiceArea        string `json:"serviceArea"`
	OperationalDetails string `json:"operationalDetails"`
}

// Document is one registration paper attached to an application.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service struct {
	apps   ngoapp.Repository
	blobs  blob.Store
	bucket string
	now    func() time.Time
}

func New(apps ngoapp.Repository, blobs blob.Store, bucket string) *Service {
	return &Service{apps: apps, blobs: blobs, bucket: bucket, now: time.Now}
}

// Submit uploads the supporting documents and records the application with
// status pending. A document upload failure aborts before the row is
// written; an insert failure after upload is reported without compensating
// the already-uploaded documents.
func (s *Service) Submit(ctx context.Context, in Application, docs []Document) (*domain.NGOApplication, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var uploaded []string
	for i, doc := range docs {
		objectPath := fmt.Sprintf("%s/%s-%d%s", in.RegistrationNumber, in.RegistrationNumber, s.now().UnixMilli()+int64(i), extension(doc.Name))
		if _, err := s.blobs.Upload(ctx, s.bucket, objectPath, doc.Data, doc.ContentType); err != nil {
			return nil, fmt.Errorf("upload document %s: %w", doc.Name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	app := domain.NGOApplication{
		NGOName:            in.NGOName,
		RegistrationNumber: in.RegistrationNumber,
		ContactPerson:      in.ContactPerson,
		ContactEmail:       in.ContactEmail,
		ContactPhone:       in.ContactPhone,
		ServiceArea:        in.ServiceArea,
		OperationalDetails: in.OperationalDetails,
		Documents:          uploaded,
		Status:             domain.ApplicationStatusPending,
	}
	return s.apps.Insert(ctx, app)
}

// List returns every application, newest first, for the admin dashboard.
func (s *Service) List(ctx context.Context) ([]domain.NGOApplication, error) {
	return s.apps.List(ctx)
}

// Review approves or rejects an application, recording the reviewer and
// timestamp.
func (s *Service) Review(ctx context.Context, id string, approve bool, adminNotes, reviewerID string) error {
	if strings.TrimSpace(reviewerID) == "" {
		return errors.New("reviewer required")
	}
	status := domain.ApplicationStatusRejected
	if approve {
		status = domain.ApplicationStatusApproved
	}
	return s.apps.Review(ctx, id, status, adminNotes, reviewerID, s.now())
}

// ValidationError reports the form fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid application: %d field(s)", len(e.Fields))
}

func validate(in Application) error {
	required := map[string]string{
		"ngoName":            in.NGOName,
		"registrationNumber": in.RegistrationNumber,
		"contactPerson":      in.ContactPerson,
		"contactEmail":       in.ContactEmail,
		"contactPhone":       in.ContactPhone,
		"serviceArea":        in.ServiceArea,
	}
	fields := make(map[string]string)
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = "required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func extension(name string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		return ext
	}
	return ".pdf"
}
