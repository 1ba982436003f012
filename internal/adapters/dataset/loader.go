package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/ports"
)

// Loader resolves logical dataset names to file paths and reads them as
// header-keyed rows. Sources may be CSV (comma or semicolon separated) or
// XLSX; the format is sniffed from the extension, then the content type.
type Loader struct {
	Opener ports.FileOpener
	Paths  map[string]string
}

func NewLoader(opener ports.FileOpener, paths map[string]string) *Loader {
	return &Loader{Opener: opener, Paths: paths}
}

func (l *Loader) Load(ctx context.Context, dataset string) ([]map[string]string, error) {
	fp, ok := l.Paths[dataset]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", dataset)
	}

	t0 := time.Now()
	log.Printf("[DATA][LOAD][START] dataset=%q path=%q", dataset, fp)

	rc, meta, err := l.Opener.Open(ctx, fp)
	if err != nil {
		log.Printf("[DATA][LOAD][ERR] open: %v", err)
		return nil, err
	}
	defer rc.Close()

	format := detectFormat(fp, meta.ContentType)
	log.Printf("[DATA][LOAD] dataset=%q source=%s content_type=%q size=%d detected_format=%s",
		dataset, meta.Source, meta.ContentType, meta.Size, format)

	var rows []map[string]string
	switch format {
	case "xlsx":
		rows, err = readXLSXFirstSheet(rc)
	case "csv":
		rows, err = readCSV(rc)
	default:
		// unknown format: buffer and try XLSX, then CSV
		var buf bytes.Buffer
		if _, err = buf.ReadFrom(rc); err != nil {
			return nil, err
		}
		rows, err = readXLSXFirstSheet(bytes.NewReader(buf.Bytes()))
		if err != nil {
			rows, err = readCSV(bytes.NewReader(buf.Bytes()))
		}
	}
	if err != nil {
		log.Printf("[DATA][LOAD][ERR] dataset=%q read: %v", dataset, err)
		return nil, fmt.Errorf("dataset %q: %w", dataset, err)
	}

	log.Printf("[DATA][LOAD][DONE] dataset=%q rows=%d duration=%s", dataset, len(rows), time.Since(t0))
	return rows, nil
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	br := bufio.NewReader(r)
	sep, err := sniffSeparator(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = sep
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	log.Printf("[DATA][CSV] sep=%q header=%v", sep, header)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[DATA][CSV][WARN] read row err: %v", err)
			continue
		}
		rows = append(rows, toMap(header, record))
	}
	return rows, nil
}

// sniffSeparator peeks at the header line and picks ';' when it outnumbers
// ',' there; the tax-authority extracts use semicolons, reference
// spreadsheets exported as CSV use commas.
func sniffSeparator(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, err
	}
	line := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		line = peek[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';', nil
	}
	return ',', nil
}

func readXLSXFirstSheet(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	sheet := sheets[0]

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	if !it.Next() {
		return nil, it.Error()
	}
	header, err := it.Columns()
	if err != nil {
		return nil, err
	}
	log.Printf("[DATA][XLSX] first_sheet=%q header=%v", sheet, header)

	var rows []map[string]string
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			log.Printf("[DATA][XLSX][WARN] read row err: %v", err)
			continue
		}
		rows = append(rows, toMap(header, cols))
	}
	if err := it.Error(); err != nil {
		return rows, err
	}
	return rows, nil
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return m
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "xlsx":
		return "xlsx"
	case "csv":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
