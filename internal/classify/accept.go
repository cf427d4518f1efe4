package classify

import (
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// Categories is the closed set of lead categories.
var Categories = []string{"Биохимия", "Снеки", "Вода", "Кешью"}

// nonCompanyNames are place names the oracle tends to report as company names.
var nonCompanyNames = func() map[string]struct{} {
	names := []string{
		"тожикистон", "узбекистон", "казахстан", "туркманистон", "киргизия", "киргизистон",
		"ташкент", "самарканд", "бухара", "андижон", "фергана", "наманган",
		"тошкент", "қозоғистон", "қирғизистон",
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// Rejection reasons for leads that fail acceptance.
const (
	RejectCategory   = "invalid_category"
	RejectPlaceName  = "place_name"
	RejectShortName  = "short_name"
	RejectShortPhone = "short_phone"
)

// accept applies the deterministic guardrails to a positive verdict. It
// returns the verdict to hand downstream and the rejection reason, if any.
// A rejected verdict keeps every field and only loses IsLead.
func accept(v model.Verdict) (model.Verdict, string) {
	category := strings.TrimSpace(v.Category)
	known := false
	for _, c := range Categories {
		if c == category {
			known = true
			break
		}
	}
	if !known {
		v.IsLead = false
		return v, RejectCategory
	}

	name := strings.TrimSpace(v.Name)
	if _, bad := nonCompanyNames[strings.ToLower(name)]; bad {
		v.IsLead = false
		return v, RejectPlaceName
	}
	if model.CodeUnits(name) < 2 {
		v.IsLead = false
		return v, RejectShortName
	}
	if model.CodeUnits(strings.TrimSpace(v.Phone)) < 5 {
		v.IsLead = false
		return v, RejectShortPhone
	}

	v.Name = name
	return v, ""
}
