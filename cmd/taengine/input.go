package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/newthinker/taengine/internal/core"
	"github.com/newthinker/taengine/internal/series"
)

// csvColumns are the required CSV header names.
var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

// barsFile is the object form of a JSON input file.
type barsFile struct {
	Symbol string          `json:"symbol"`
	Bars   []series.RawBar `json:"bars"`
}

// readBars parses a JSON array of records, a JSON object with a bars
// field, or CSV with a date,open,high,low,close,volume header. The symbol
// is only set for the JSON object form.
func readBars(r io.Reader) (symbol string, bars []series.RawBar, err error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return "", nil, core.Invalidf("reading input: %v", err)
	}

	switch first {
	case '[':
		bars, err = decodeJSONBars(br)
		return "", bars, err
	case '{':
		var f barsFile
		dec := json.NewDecoder(br)
		dec.UseNumber()
		if err := dec.Decode(&f); err != nil {
			return "", nil, core.Invalidf("decoding JSON input: %v", err)
		}
		return f.Symbol, f.Bars, nil
	default:
		bars, err = readCSV(br)
		return "", bars, err
	}
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// firstNonSpace skips a byte order mark and leading whitespace and
// returns the next byte without consuming it.
func firstNonSpace(br *bufio.Reader) (byte, error) {
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func decodeJSONBars(r io.Reader) ([]series.RawBar, error) {
	var bars []series.RawBar
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&bars); err != nil {
		return nil, core.Invalidf("decoding JSON input: %v", err)
	}
	return bars, nil
}

func readCSV(r io.Reader) ([]series.RawBar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, core.Invalidf("reading CSV header: %v", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range csvColumns {
		if _, ok := idx[col]; !ok {
			return nil, core.Invalidf("CSV header missing %q column", col)
		}
	}

	var bars []series.RawBar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.Invalidf("CSV line %d: %v", line, err)
		}
		field := func(col string) any {
			i := idx[col]
			if i >= len(rec) {
				return nil
			}
			return rec[i]
		}
		bars = append(bars, series.RawBar{
			Date:   field("date"),
			Open:   field("open"),
			High:   field("high"),
			Low:    field("low"),
			Close:  field("close"),
			Volume: field("volume"),
		})
	}
	return bars, nil
}

// symbolFromPath derives a symbol from an input file name.
func symbolFromPath(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func requireSymbol(flag, fromFile, path string) (string, error) {
	for _, s := range []string{flag, fromFile, symbolFromPath(path)} {
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("no symbol: pass --symbol")
}
