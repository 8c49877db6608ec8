package nbastats

import "strconv"

// statsResponse is the tabular envelope stats.nba.com returns: named result
// sets whose rows must be zipped with their headers.
type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
	ResultSet  *resultSet  `json:"resultSet"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// rows zips the preferred result set (or the first one) into named records.
// Absent or malformed sets yield an empty slice, never a panic.
func (r statsResponse) rows(preferred string) []record {
	rs := r.pick(preferred)
	if rs == nil {
		return nil
	}
	out := make([]record, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		rec := make(record, len(rs.Headers))
		for i, h := range rs.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func (r statsResponse) pick(preferred string) *resultSet {
	if len(r.ResultSets) > 0 {
		if preferred != "" {
			for i := range r.ResultSets {
				if r.ResultSets[i].Name == preferred {
					return &r.ResultSets[i]
				}
			}
		}
		return &r.ResultSets[0]
	}
	return r.ResultSet
}

// record is one zipped row. Accessors default on missing or mistyped
// values — upstream freely mixes numbers, strings, and nulls.
type record map[string]interface{}

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (r record) float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func (r record) int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
