package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Converts registry JSON exports (plain arrays, NDJSON, or GeoJSON feature
// collections) into CSV with a fixed column set, one output file per input.
// The taxpayer id is never part of the column set.

var fields = []string{
	"id", "lote_id", "municipio", "proprietario", "imovel",
	"codigo_distrito", "ponto_de_referencia", "codigo_municipio", "centroide",
	"nome_distrito", "dhc", "dhm", "situacao_juridica", "sncr", "titulo", "numero",
}

func main() {
	in := flag.String("in", ".", "input JSON file or directory")
	out := flag.String("out", "csv_out", "output directory")
	flag.Parse()

	inputs, err := collectInputs(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "no JSON files found in", *in)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failures := 0
	for _, path := range inputs {
		records, err := readRecords(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failures++
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".csv"
		target := filepath.Join(*out, name)
		if err := writeCSV(target, records); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", target, err)
			failures++
			continue
		}
		fmt.Printf("• %s: %d registros\n", name, len(records))
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func collectInputs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			paths = append(paths, filepath.Join(root, e.Name()))
		}
	}
	return paths, nil
}

// readRecords accepts a JSON array of objects, a single object, NDJSON, or
// a GeoJSON FeatureCollection (using each feature's properties).
func readRecords(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return readNDJSON(path)
	}
	switch v := doc.(type) {
	case []any:
		return objectList(v), nil
	case map[string]any:
		if features, ok := v["features"].([]any); ok {
			records := make([]map[string]any, 0, len(features))
			for _, f := range features {
				if fm, ok := f.(map[string]any); ok {
					if props, ok := fm["properties"].(map[string]any); ok {
						records = append(records, props)
					}
				}
			}
			return records, nil
		}
		return []map[string]any{v}, nil
	default:
		return nil, fmt.Errorf("unsupported JSON shape")
	}
}

func readNDJSON(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("not valid JSON or NDJSON")
		}
		records = append(records, m)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func objectList(items []any) []map[string]any {
	records := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

func writeCSV(path string, records []map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, field := range fields {
			row[i] = cell(rec[field])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
