package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique index violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, database.ErrDuplicate) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already contains") ||
		strings.Contains(errStr, "already exists")
}

// inTable reports whether id is a record id of table, e.g. "guest:abc"
func inTable(id, table string) bool {
	return strings.HasPrefix(id, table+":") && len(id) > len(table)+1
}

// convertSurrealID converts a SurrealDB record id (possibly a RecordID
// value or a {tb,id} map) to "table:id"
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
		return ""
	case map[string]interface{}:
		tb, _ := v["tb"].(string)
		if tb == "" {
			tb, _ = v["Table"].(string)
		}
		idPart := extractIDValue(v["id"])
		if idPart == "" {
			idPart = extractIDValue(v["ID"])
		}
		if tb != "" && idPart != "" {
			return tb + ":" + idPart
		}
		return idPart
	}
	return fmt.Sprintf("%v", id)
}

// extractIDValue extracts the id part which may be nested as {"String": "x"}
func extractIDValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["String"].(string); ok {
			return s
		}
		if s, ok := v["string"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// normalizeValue rewrites driver-specific values (record ids, datetimes)
// into plain JSON-friendly values, recursively
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time
	case map[string]interface{}:
		if _, hasTB := t["tb"]; hasTB && len(t) == 2 {
			if _, hasID := t["id"]; hasID {
				return convertSurrealID(t)
			}
		}
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	}
	return v
}

// unwrapRecord strips the {status, result} envelope and array wrappers
func unwrapRecord(result interface{}) (map[string]interface{}, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	if resp, ok := result.(map[string]interface{}); ok {
		if _, hasStatus := resp["status"]; hasStatus {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return data, nil
}

// decodeRecord normalizes a row and decodes it into T through JSON.
// renames maps stored field names to the model's json names, e.g.
// "owner" -> "owner_id" for record links.
func decodeRecord[T any](result interface{}, renames map[string]string) (*T, map[string]interface{}, error) {
	raw, err := unwrapRecord(result)
	if err != nil {
		return nil, nil, err
	}

	data, _ := normalizeValue(raw).(map[string]interface{})
	for from, to := range renames {
		if v, ok := data[from]; ok {
			data[to] = v
			delete(data, from)
		}
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	var out T
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, nil, err
	}
	return &out, data, nil
}

// decodeRecords decodes every row of every statement response; rows that
// fail to decode are skipped
func decodeRecords[T any](results []interface{}, renames map[string]string) []*T {
	out := make([]*T, 0)

	add := func(item interface{}) {
		rec, _, err := decodeRecord[T](item, renames)
		if err == nil {
			out = append(out, rec)
		}
	}

	for _, res := range results {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					add(item)
				}
				continue
			}
		}
		add(res)
	}

	return out
}

// lastStatementRows returns the rows of the final statement of a
// multi-statement query (e.g. LET ...; SELECT ...)
func lastStatementRows(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	return results[len(results)-1:]
}

type createdRecord struct {
	ID        string
	CreatedOn time.Time
	UpdatedOn time.Time
}

// extractCreatedRecord reads id and timestamps from a CREATE response
func extractCreatedRecord(result []interface{}) (*createdRecord, error) {
	if len(result) == 0 {
		return nil, errors.New("no result returned")
	}

	data, err := unwrapRecord(result[0])
	if err != nil {
		return nil, err
	}

	record := &createdRecord{ID: convertSurrealID(data["id"])}
	if t := getTime(data, "created_on"); t != nil {
		record.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		record.UpdatedOn = *t
	}
	return record, nil
}

// optional passes a pointer's value, or nil so the field is cleared
func optional[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// formatTime renders t for a <datetime> cast
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// optTime renders an optional datetime, nil stays nil
func optTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt extracts an int value from a map
func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	}
	return 0
}

// getBool extracts a bool value from a map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// getTime extracts a time value from a map
func getTime(m map[string]interface{}, key string) *time.Time {
	switch v := m[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &t
		}
	case time.Time:
		return &v
	case models.CustomDateTime:
		t := v.Time
		return &t
	case *models.CustomDateTime:
		if v != nil {
			t := v.Time
			return &t
		}
	}
	return nil
}

// extractCount reads {count: n} from a GROUP ALL count query
func extractCount(results []interface{}) int {
	for _, res := range results {
		resp, ok := res.(map[string]interface{})
		if !ok {
			continue
		}
		rows, ok := resp["result"].([]interface{})
		if !ok || len(rows) == 0 {
			continue
		}
		if row, ok := rows[0].(map[string]interface{}); ok {
			return getInt(row, "count")
		}
	}
	return 0
}

// mustMap returns the record map of a result or an empty map
func mustMap(result interface{}) map[string]interface{} {
	data, err := unwrapRecord(result)
	if err != nil {
		return map[string]interface{}{}
	}
	return data
}
