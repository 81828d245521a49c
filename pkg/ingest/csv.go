/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errCSVRead = errors.New("failed to read csv")

// ReadCSV decodes a header-rowed CSV export into raw rows. Every cell
// arrives as a string; the adapters' parsers take it from there. Rows
// shorter than the header simply omit the trailing fields.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCSVRead, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([]Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(Row, len(header))

		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}

			row[header[i]] = cell
		}

		rows = append(rows, row)
	}

	return rows, nil
}
