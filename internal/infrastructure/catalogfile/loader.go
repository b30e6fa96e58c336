// Package catalogfile seeds a product store from a YAML or JSON catalog file
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/logparts/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// Entry is one product as written in a catalog file
type Entry struct {
	SKU           string    `yaml:"sku"`
	Title         string    `yaml:"title"`
	Description   string    `yaml:"description"`
	Brand         string    `yaml:"brand"`
	Category      string    `yaml:"category"`
	OriginalCodes string    `yaml:"original_codes"`
	ImageURLs     ImageList `yaml:"image_urls"`
	BasePrice     *float64  `yaml:"base_price"`
}

// File is the top-level catalog document
type File struct {
	Products []Entry `yaml:"products"`
}

// ImageList accepts either a sequence of URLs or a single string holding a JSON
// array or comma-delimited list
type ImageList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (l *ImageList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var urls []string
		if err := value.Decode(&urls); err != nil {
			return err
		}
		cleaned := []string{}
		for _, u := range urls {
			cleaned = append(cleaned, domain.ParseImageURLs(u)...)
		}
		*l = cleaned
	case yaml.ScalarNode:
		*l = ImageList(domain.ParseImageURLs(value.Value))
	default:
		return fmt.Errorf("image_urls: unsupported YAML node kind %d", value.Kind)
	}
	return nil
}

// Record converts the entry into a ProductRecord
func (e Entry) Record() domain.ProductRecord {
	images := []string(e.ImageURLs)
	if images == nil {
		images = []string{}
	}
	return domain.ProductRecord{
		Code:              strings.TrimSpace(e.SKU),
		Title:             strings.TrimSpace(e.Title),
		Description:       strings.TrimSpace(e.Description),
		Brand:             strings.TrimSpace(e.Brand),
		Category:          strings.TrimSpace(e.Category),
		RawAlternateCodes: strings.TrimSpace(e.OriginalCodes),
		AlternateCodes:    domain.ParseAlternateCodes(e.OriginalCodes),
		Images:            images,
		BasePrice:         e.BasePrice,
	}
}

// Loader reads catalog files into a ProductWriter
type Loader struct {
	writer domain.ProductWriter
}

// NewLoader creates a loader writing into writer
func NewLoader(writer domain.ProductWriter) *Loader {
	return &Loader{writer: writer}
}

// LoadFile seeds the store from the catalog file at path
func (l *Loader) LoadFile(ctx context.Context, path string) (domain.LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LoadResult{}, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load decodes a catalog document from r and inserts every entry. Entries without a
// code and duplicates are skipped; other insert failures are recorded in the result
// and loading continues.
func (l *Loader) Load(ctx context.Context, r io.Reader) (domain.LoadResult, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.LoadResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidCatalogFile, err)
	}

	result := domain.LoadResult{}
	for i, entry := range file.Products {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Read++

		record := entry.Record()
		if record.Code == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: missing sku", i+1))
			continue
		}

		err := l.writer.Insert(ctx, record)
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, domain.ErrDuplicateProduct):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d (%s): %v", i+1, record.Code, err))
		}
	}

	log.Printf("[SEED] read=%d inserted=%d skipped=%d errors=%d",
		result.Read, result.Inserted, result.Skipped, len(result.Errors))
	return result, nil
}
