package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"clothcycle/internal/domain"
)

type ListingWriter interface {
	Insert(ctx context.Context, listing domain.Listing) (*domain.Listing, error)
}

// CSVImporter reads a clothing listing CSV export and inserts the rows as
// approved listings. Bulk intake from partner NGOs and drives arrives this
// way.
type CSVImporter struct {
	reader      *csv.Reader
	listingRepo ListingWriter
}

func NewCSVImporter(r io.Reader, repo ListingWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		listingRepo: repo,
	}
}

type csvRow struct {
	Category           string
	Size               string
	Fabric             string
	ConditionNotes     string
	HasDefects         bool
	Tier               string
	Price              float64
	Donation           bool
	City               string
	Pincode            string
	PickupAvailability string
	Contact            string
	PhotoURLs          []string
}

// Run parses CSV rows and inserts listings. A row with a category starts a
// new listing; rows carrying only a photo URL attach to the listing above.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Category != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (photos) belong to the current listing.
		if current != nil && len(row.PhotoURLs) > 0 {
			current.PhotoURLs = append(current.PhotoURLs, row.PhotoURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Category == "" || row.Size == "" || row.City == "" || row.Pincode == "" {
		return fmt.Errorf("invalid listing row (missing required fields) for category %q", row.Category)
	}
	if !row.Donation && row.Tier == "" {
		return fmt.Errorf("sale listing in %s has no tier", row.City)
	}

	l := domain.Listing{
		Category:           row.Category,
		Size:               row.Size,
		Fabric:             row.Fabric,
		ConditionNotes:     row.ConditionNotes,
		HasDefects:         row.HasDefects,
		Tier:               row.Tier,
		Price:              row.Price,
		Donation:           row.Donation,
		City:               row.City,
		Pincode:            row.Pincode,
		PickupAvailability: row.PickupAvailability,
		Contact:            row.Contact,
		Status:             domain.ListingStatusApproved,
	}
	if row.Donation {
		l.Tier = ""
		l.Price = 0
	}
	for _, url := range row.PhotoURLs {
		l.Photos = append(l.Photos, domain.ListingPhoto{URL: url, Filename: filenameFromURL(url)})
	}

	if _, err := i.listingRepo.Insert(ctx, l); err != nil {
		return fmt.Errorf("insert listing %s/%s: %w", row.Category, row.City, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	category := pick(record, index, "category")
	photoURL := pick(record, index, "photo.url")

	if category == "" && photoURL == "" {
		return nil
	}

	var price float64
	if s := pick(record, index, "price"); s != "" {
		price, _ = strconv.ParseFloat(s, 64)
	}

	row := &csvRow{
		Category:           category,
		Size:               pick(record, index, "size"),
		Fabric:             pick(record, index, "fabric"),
		ConditionNotes:     pick(record, index, "condition_notes"),
		HasDefects:         pick(record, index, "has_defects") == "true",
		Tier:               pick(record, index, "tier"),
		Price:              price,
		Donation:           pick(record, index, "donation") == "true",
		City:               pick(record, index, "city"),
		Pincode:            pick(record, index, "pincode"),
		PickupAvailability: pick(record, index, "pickup_availability"),
		Contact:            pick(record, index, "contact"),
	}
	if photoURL != "" {
		row.PhotoURLs = []string{photoURL}
	}
	return row
}

func filenameFromURL(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 && i+1 < len(url) {
		return url[i+1:]
	}
	return url
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
