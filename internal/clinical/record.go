package clinical

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable fills any SOAP section the oracle left out.
const NotAvailable = "N/A"

// Record is the four-section SOAP note. Extra keeps any additional keys the
// oracle returned.
type Record struct {
	Subjective string         `mapstructure:"Subjective"`
	Objective  string         `mapstructure:"Objective"`
	Assessment string         `mapstructure:"Assessment"`
	Plan       string         `mapstructure:"Plan"`
	Extra      map[string]any `mapstructure:",remain"`
}

var sectionKeys = []string{"Subjective", "Objective", "Assessment", "Plan"}

// EmptyRecord is the all-"N/A" fallback.
func EmptyRecord() Record {
	return Record{Subjective: NotAvailable, Objective: NotAvailable, Assessment: NotAvailable, Plan: NotAvailable}
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["Subjective"] = r.Subjective
	out["Objective"] = r.Objective
	out["Assessment"] = r.Assessment
	out["Plan"] = r.Plan
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	rec, err := repairRecord(obj)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

const recordSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["Subjective", "Objective", "Assessment", "Plan"],
  "properties": {
    "Subjective": {"type": "string", "minLength": 1},
    "Objective": {"type": "string", "minLength": 1},
    "Assessment": {"type": "string", "minLength": 1},
    "Plan": {"type": "string", "minLength": 1}
  }
}`

var (
	recordSchema  = mustCompileSchema(recordSchemaJSON, "soap-record.schema.json")
	schemaPrinter = message.NewPrinter(language.English)
)

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ParseRecord decodes an oracle response into a Record. Schema violations are
// repaired and reported in issues. A non-JSON or non-object response returns
// an error together with EmptyRecord().
func ParseRecord(raw string) (rec Record, issues []string, err error) {
	text := StripFence(raw)
	if text == "" {
		return EmptyRecord(), nil, errors.New("empty response")
	}
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return EmptyRecord(), nil, fmt.Errorf("malformed json: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return EmptyRecord(), nil, fmt.Errorf("expected json object, got %T", doc)
	}
	issues = validateRecord(obj)
	rec, err = repairRecord(obj)
	if err != nil {
		return EmptyRecord(), issues, err
	}
	return rec, issues, nil
}

func validateRecord(obj map[string]any) []string {
	err := recordSchema.Validate(obj)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var out []string
	collectSchemaErrors(ve, &out)
	return out
}

func collectSchemaErrors(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, out)
	}
}

// repairRecord maps loosely keyed oracle output onto the four sections.
// Lookup per section: exact key, then case-insensitive, then the initial
// letter (S/O/A/P). Matched keys are consumed; everything else is kept.
func repairRecord(obj map[string]any) (Record, error) {
	canonical := make(map[string]any, len(obj))
	used := map[string]bool{}
	for _, section := range sectionKeys {
		key, ok := findSectionKey(obj, section, used)
		text := ""
		if ok {
			used[key] = true
			text = coerceText(obj[key])
		}
		if text == "" {
			text = NotAvailable
		}
		canonical[section] = text
	}
	for k, v := range obj {
		if !used[k] {
			canonical[k] = v
		}
	}
	var rec Record
	if err := mapstructure.Decode(canonical, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if len(rec.Extra) == 0 {
		rec.Extra = nil
	}
	return rec, nil
}

func findSectionKey(obj map[string]any, section string, used map[string]bool) (string, bool) {
	if _, ok := obj[section]; ok && !used[section] {
		return section, true
	}
	for k := range obj {
		if !used[k] && strings.EqualFold(strings.TrimSpace(k), section) {
			return k, true
		}
	}
	initial := section[:1]
	for k := range obj {
		if !used[k] && strings.EqualFold(strings.TrimSpace(k), initial) {
			return k, true
		}
	}
	return "", false
}

// coerceText renders any JSON value as section text.
func coerceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
