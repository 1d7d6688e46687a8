// Package nutrition decodes loosely-structured nutrition payloads produced by
// AI backends, where the same quantity may appear under several key spellings
// and as a number or as text such as "250 kcal".
package nutrition

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field names a semantic nutrition quantity.
type Field string

const (
	Calories Field = "calories"
	Protein  Field = "protein"
	Carbs    Field = "carbs"
	Fats     Field = "fats"
	Servings Field = "servings"
)

// CandidateKeys lists, per field, the keys tried in priority order.
// Matching is case-insensitive.
var CandidateKeys = map[Field][]string{
	Calories: {"calories", "kcal", "calories_kcal", "energy_kcal", "energy", "cal", "calorie"},
	Protein:  {"protein", "protein_g", "proteins", "protein_grams"},
	Carbs:    {"carbs", "carbs_g", "carbohydrates", "carbohydrate", "carbs_grams", "carbohydrates_g"},
	Fats:     {"fats", "fat", "fats_g", "fat_g", "total_fat", "fat_grams"},
	Servings: {"servings", "serving", "portions", "serves"},
}

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Value is an optional decoded quantity.
type Value struct {
	V  float64
	OK bool
}

// Or returns the value, or def when it was not found.
func (v Value) Or(def float64) float64 {
	if !v.OK {
		return def
	}
	return v.V
}

// Fields holds one optional value per semantic field.
type Fields struct {
	Calories Value
	Protein  Value
	Carbs    Value
	Fats     Value
	Servings Value
}

// Decode extracts every field from m. Missing or unparsable fields are left
// with OK == false.
func Decode(m map[string]any) Fields {
	lower := make(map[string]any, len(m))
	for k, v := range m {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, dup := lower[lk]; !dup {
			lower[lk] = v
		}
	}
	return Fields{
		Calories: lookup(lower, Calories),
		Protein:  lookup(lower, Protein),
		Carbs:    lookup(lower, Carbs),
		Fats:     lookup(lower, Fats),
		Servings: lookup(lower, Servings),
	}
}

// DecodeJSON is Decode for a raw JSON object. Non-objects yield empty Fields.
func DecodeJSON(raw []byte) Fields {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Fields{}
	}
	return Decode(m)
}

func lookup(m map[string]any, f Field) Value {
	for _, key := range CandidateKeys[f] {
		v, ok := m[key]
		if !ok {
			continue
		}
		if n, ok := Number(v); ok {
			return Value{V: n, OK: true}
		}
	}
	return Value{}
}

// Number interprets v as a quantity: JSON numbers directly, strings by their
// first numeric run ("12.5g" -> 12.5).
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		match := numberRe.FindString(x)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(match, 64)
		return f, err == nil
	}
	return 0, false
}
