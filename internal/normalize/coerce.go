package normalize

import (
	"errors"
	"fmt"
	"math"
	"mlbids/internal/schema"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout          = "1/2/2006"
	shortYearDateLayout = "1/2/06"
)

// IntegerIDColumns are the provider id columns of the main schema, a blank id
// means "no id from this provider" and is stored as 0.
var IntegerIDColumns = []string{
	"BaseballHQID",
	"BaseballProspectusID",
	"CBSID",
	"ESPNID",
	"FanduelID",
	"MLBID",
	"NFBCID",
	"OttoneuID",
	"RotowireID",
	"YahooID",
}

var errMissing = errors.New("value is missing")

type coercer func(value any) (any, error)

func coercersFor(kind schema.Kind) map[string]coercer {
	switch kind {
	case schema.Main:
		rules := map[string]coercer{
			"Birthdate":    coerceBirthdate,
			"AllPositions": coercePositions,
			"Active":       coerceActive,
		}
		for _, c := range IntegerIDColumns {
			rules[c] = coerceID
		}
		return rules
	case schema.Changelog:
		return map[string]coercer{
			"Date": coerceDate,
		}
	}
	return nil
}

func unexpectedType(value any) error {
	return fmt.Errorf("unexpected type %T", value)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// coerceBirthdate parses m/d/yyyy, falling back to m/d/yy.
func coerceBirthdate(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errMissing
	case time.Time:
		return dateOnly(v), nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err == nil {
			return t, nil
		}
		t, shortErr := time.Parse(shortYearDateLayout, v)
		if shortErr == nil {
			return t, nil
		}
		return nil, fmt.Errorf("not a m/d/yyyy or m/d/yy date: %w", err)
	}
	return nil, unexpectedType(value)
}

// coerceDate parses m/d/yyyy only.
func coerceDate(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errMissing
	case time.Time:
		return dateOnly(v), nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("not a m/d/yyyy date: %w", err)
		}
		return t, nil
	}
	return nil, unexpectedType(value)
}

func coercePositions(value any) (any, error) {
	var positions []string
	switch v := value.(type) {
	case nil:
		return nil, errMissing
	case []string:
		positions = slices.Clone(v)
	case string:
		positions = strings.Split(v, "/")
		for i, p := range positions {
			positions[i] = strings.TrimSpace(p)
		}
	default:
		return nil, unexpectedType(value)
	}

	if len(positions) == 0 || slices.Contains(positions, "") {
		return nil, fmt.Errorf("empty position in %q", strings.Join(positions, "/"))
	}
	return positions, nil
}

func coerceActive(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errMissing
	case bool:
		return v, nil
	case string:
		switch strings.ToUpper(v) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
		return nil, fmt.Errorf("expected Y or N")
	}
	return nil, unexpectedType(value)
}

// ids are truncated like an int() cast, numeric upstream exports render
// integer columns with blanks as floats (ex. "12.0").
func truncateID(f float64) (int64, error) {
	if math.IsNaN(f) {
		return 0, nil
	}
	if math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, fmt.Errorf("out of range")
	}
	return int64(f), nil
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return int64(0), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return truncateID(v)
	case string:
		if strings.EqualFold(v, "nan") {
			return int64(0), nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return id, nil
		}
		f, floatErr := strconv.ParseFloat(v, 64)
		if floatErr != nil {
			return nil, fmt.Errorf("not a number: %w", err)
		}
		return truncateID(f)
	}
	return nil, unexpectedType(value)
}
