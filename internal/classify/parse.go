package classify

import (
	"encoding/json"
	"regexp"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	fencedObject = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	bareObject   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// parseResponse decodes raw oracle output with three fallbacks: the whole
// string, the first fenced block holding an object, then the widest
// brace-delimited substring.
func parseResponse(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}

	if m := fencedObject.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
			return v, true
		}
	}

	if m := bareObject.FindString(raw); m != "" {
		if err := json.Unmarshal([]byte(m), &v); err == nil {
			return v, true
		}
	}

	return nil, false
}

// decodeVerdict checks the parsed value has the verdict shape: a boolean
// is_lead (isLead accepted) and string name, phone and category.
func decodeVerdict(v any) (model.Verdict, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.Verdict{}, false
	}

	flag, ok := obj["is_lead"]
	if !ok {
		flag, ok = obj["isLead"]
	}
	if !ok {
		return model.Verdict{}, false
	}
	isLead, ok := flag.(bool)
	if !ok {
		return model.Verdict{}, false
	}

	var fields [3]string
	for i, key := range []string{"name", "phone", "category"} {
		s, ok := obj[key].(string)
		if !ok {
			return model.Verdict{}, false
		}
		fields[i] = s
	}

	return model.Verdict{
		IsLead:   isLead,
		Name:     fields[0],
		Phone:    fields[1],
		Category: fields[2],
	}, true
}
