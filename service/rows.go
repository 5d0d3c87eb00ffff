package service

import "strings"

// recordsFromRows turns a header row plus data rows into header-keyed records.
// Short rows are padded with empty strings; columns with a blank header are dropped.
func recordsFromRows(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = ""
			}
		}
		records = append(records, record)
	}
	return records
}
