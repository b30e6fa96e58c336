package sqlite

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/logparts/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// productColumns is the column list every product SELECT uses, in scan order
const productColumns = `id, sku, title, description, brand, category, image_urls, original_codes, base_price`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// productRow mirrors one row of the products table
type productRow struct {
	ID            int64
	Code          string
	Title         sql.NullString
	Description   sql.NullString
	Brand         sql.NullString
	Category      sql.NullString
	ImageURLs     sql.NullString
	OriginalCodes sql.NullString
	BasePrice     sql.NullFloat64
}

func scanProduct(scanner rowScanner) (domain.ProductRecord, error) {
	var row productRow
	err := scanner.Scan(
		&row.ID, &row.Code, &row.Title, &row.Description, &row.Brand,
		&row.Category, &row.ImageURLs, &row.OriginalCodes, &row.BasePrice,
	)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	return mapRow(row), nil
}

// mapRow converts a stored row into a ProductRecord. Alternate codes and image
// lists are parsed here; malformed encodings are repaired, never rejected.
func mapRow(row productRow) domain.ProductRecord {
	product := domain.ProductRecord{
		ID:                strconv.FormatInt(row.ID, 10),
		Code:              row.Code,
		Title:             row.Title.String,
		Description:       row.Description.String,
		Brand:             row.Brand.String,
		Category:          row.Category.String,
		RawAlternateCodes: row.OriginalCodes.String,
		AlternateCodes:    domain.ParseAlternateCodes(row.OriginalCodes.String),
		Images:            domain.ParseImageURLs(row.ImageURLs.String),
	}
	if row.BasePrice.Valid {
		price := row.BasePrice.Float64
		product.BasePrice = &price
	}
	return product
}

// toRow prepares a record for storage: text is NFC-normalized and images are
// stored as a JSON array.
func toRow(product domain.ProductRecord) (productRow, error) {
	row := productRow{
		Code:          norm.NFC.String(product.Code),
		Title:         nullString(norm.NFC.String(product.Title)),
		Description:   nullString(norm.NFC.String(product.Description)),
		Brand:         nullString(norm.NFC.String(product.Brand)),
		Category:      nullString(norm.NFC.String(product.Category)),
		OriginalCodes: nullString(norm.NFC.String(product.AlternateCodesText())),
	}
	if len(product.Images) > 0 {
		encoded, err := json.Marshal(product.Images)
		if err != nil {
			return productRow{}, err
		}
		row.ImageURLs = nullString(string(encoded))
	}
	if product.BasePrice != nil {
		row.BasePrice = sql.NullFloat64{Float64: *product.BasePrice, Valid: true}
	}
	return row, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
