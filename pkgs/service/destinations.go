package service

import (
	"encoding/csv"
	"os"

	"github.com/pkg/errors"
)

// LoadDestinationsCSV reads round-1 seed rows from a delimited file
// with an endpoint,email,secret header. An unreadable or malformed
// file is a configuration error: the caller should abort before any
// dispatch starts.
func LoadDestinationsCSV(path string) ([]Destination, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open submission csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse submission csv")
	}
	if len(rows) == 0 {
		return nil, errors.New("submission csv has no header row")
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"endpoint", "email", "secret"} {
		if _, ok := col[required]; !ok {
			return nil, errors.Errorf("submission csv missing %q column", required)
		}
	}

	dests := make([]Destination, 0, len(rows)-1)
	for _, row := range rows[1:] {
		dests = append(dests, Destination{
			Endpoint: row[col["endpoint"]],
			Email:    row[col["email"]],
			Secret:   row[col["secret"]],
		})
	}
	return dests, nil
}
