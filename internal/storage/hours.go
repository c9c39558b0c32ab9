package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/model"
)

// HoursRepository reads the business_hours table. The table predates this
// service and was edited by hand through several admin tools, so rows are
// treated as loosely-typed JSON and normalized into canonical rules here, at
// the adapter boundary; nothing past this package sees the raw shapes.
type HoursRepository struct {
	pool *db.Pool
}

func NewHoursRepository(pool *db.Pool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

func (r *HoursRepository) ListRules(ctx context.Context) ([]model.BusinessHoursRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_jsonb(bh) FROM business_hours bh`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.BusinessHoursRule
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var row map[string]any
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		if rule, ok := NormalizeHoursRow(row); ok {
			rules = append(rules, rule)
		}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rules, nil
}

func (r *HoursRepository) UpsertRule(ctx context.Context, rule model.BusinessHoursRule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_hours (day_of_week, opens_at, closes_at, is_closed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day_of_week) DO UPDATE
		SET opens_at = EXCLUDED.opens_at,
			closes_at = EXCLUDED.closes_at,
			is_closed = EXCLUDED.is_closed,
			updated_at = now()
	`, rule.Weekday, rule.Open, rule.Close, rule.Closed)
	return err
}

var (
	dayFields   = []string{"day_of_week", "weekday", "day", "day_index", "week_day"}
	openFields  = []string{"opens_at", "open_time", "start_time", "opens", "open"}
	closeFields = []string{"closes_at", "close_time", "end_time", "closes", "close"}
)

// NormalizeHoursRow maps one heterogeneous row into a canonical rule. Rows
// without a recognizable day index are dropped; unparseable times are left
// empty so the resolver can fall back to the built-in default. Never errors.
func NormalizeHoursRow(row map[string]any) (model.BusinessHoursRule, bool) {
	day, ok := readDayIndex(row)
	if !ok {
		return model.BusinessHoursRule{}, false
	}
	rule := model.BusinessHoursRule{
		Weekday: day,
		Closed:  readClosedFlag(row),
	}
	for _, field := range openFields {
		if clock := readClock(row[field]); clock != "" {
			rule.Open = clock
			break
		}
	}
	for _, field := range closeFields {
		if clock := readClock(row[field]); clock != "" {
			rule.Close = clock
			break
		}
	}
	return rule, true
}

// readDayIndex accepts 0-6 (Sunday=0) and 1-7 (7=Sunday) day numbering, as a
// JSON number or a numeric string.
func readDayIndex(row map[string]any) (int, bool) {
	for _, field := range dayFields {
		raw, present := row[field]
		if !present || raw == nil {
			continue
		}
		var day int
		switch v := raw.(type) {
		case float64:
			day = int(v)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return 0, false
			}
			day = n
		default:
			return 0, false
		}
		if day >= 0 && day <= 6 {
			return day, true
		}
		if day == 7 {
			return 0, true
		}
		return 0, false
	}
	return 0, false
}

// readClock extracts "HH:MM" from a time-of-day string ("08:00",
// "08:00:00") or a full timestamp truncated to its wall clock. Returns ""
// when the value is absent or unrecognizable.
func readClock(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if len(s) >= 5 && s[2] == ':' {
		candidate := s[:5]
		if _, err := time.Parse("15:04", candidate); err == nil {
			return candidate
		}
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

func readClosedFlag(row map[string]any) bool {
	if truthy(row["is_closed"]) || truthy(row["closed"]) {
		return true
	}
	if v, ok := row["is_open"].(bool); ok && !v {
		return true
	}
	if v, ok := row["active"].(bool); ok && !v {
		return true
	}
	return false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v == "true" || v == "t" || v == "1"
	default:
		return false
	}
}
