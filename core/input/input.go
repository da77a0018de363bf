package input

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"

	"twin-sync/core/kind"
	"twin-sync/core/storage"
)

// Supported file extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// Table is a parsed input file.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Parser loads batch input files from object storage.
type Parser struct {
	client storage.Client
	bucket string
}

// NewParser creates a parser reading from bucket.
func NewParser(client storage.Client, bucket string) *Parser {
	return &Parser{client: client, bucket: bucket}
}

// Load downloads and parses an uploaded file.
func (p *Parser) Load(ctx context.Context, objectName string) (*Table, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", objectName, err)
	}
	defer obj.Close()
	return Parse(objectName, obj)
}

// ParseFile parses a local file.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse picks the format from the extension of name.
func Parse(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtCSV:
		return ParseCSV(r)
	case ExtXLSX:
		return ParseXLSX(r)
	default:
		return nil, kind.Invalidf("unsupported input file %s: expected %s or %s", name, ExtCSV, ExtXLSX)
	}
}

// ParseCSV reads a comma separated file whose first line is the header.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, kind.Invalidf("invalid csv: %v", err)
		}
		records = append(records, rec)
	}
	return build(records)
}

// ParseXLSX reads the first sheet of a workbook whose first row is the header.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, kind.Invalidf("invalid xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, kind.Invalidf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return build(rows)
}

func build(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, kind.Invalidf("input has no header")
	}

	// Blank header cells are skipped; idx keeps the source position.
	type column struct {
		name string
		idx  int
	}
	var columns []column
	seen := map[string]bool{}
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if seen[h] {
			return nil, kind.Invalidf("duplicate column %s", h)
		}
		seen[h] = true
		columns = append(columns, column{name: h, idx: i})
	}
	if len(columns) == 0 {
		return nil, kind.Invalidf("input has no header")
	}

	t := &Table{Columns: make([]string, len(columns))}
	for i, c := range columns {
		t.Columns[i] = c.name
	}

	width := len(records[0])
	for line, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		if len(rec) > width && !blank(rec[width:]) {
			return nil, kind.Invalidf("line %d has %d values, header has %d", line+2, len(rec), width)
		}
		row := make(map[string]string, len(columns))
		for _, c := range columns {
			if c.idx < len(rec) {
				row[c.name] = strings.TrimSpace(rec[c.idx])
			} else {
				row[c.name] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
