package classify

import "strings"

// Rule pairs a predicate with the tag it yields. Tables are evaluated in order.
type Rule[T ~string] struct {
	Name  string
	Match func(string) bool
	Tag   T
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func always(string) bool { return true }

var isDateField = containsAny("Day", "Month", "Year")

// Tested against the field id.
var familyRules = []Rule[FamilyTag]{
	{Name: "amount", Match: containsAny("Amt"), Tag: FamilyAmount},
	{Name: "date", Match: isDateField, Tag: FamilyDate},
	{Name: "default", Match: always, Tag: FamilyRadio},
}

// Tested against the field id. Longer ids precede the ids they contain.
var pageRules = []Rule[PageTag]{
	{Name: "pensionsTakenBefore", Match: containsAny("pensionsTakenBefore"), Tag: PagePensionsTakenBefore},
	{Name: "pensionsTakenBetween", Match: containsAny("pensionsTakenBetween"), Tag: PagePensionsTakenBetween},
	{Name: "pensionsTaken", Match: containsAny("pensionsTaken"), Tag: PagePensionsTaken},
	{Name: "overseasPensions", Match: containsAny("overseasPensions"), Tag: PageOverseasPensions},
	{Name: "currentPensions", Match: containsAny("currentPensions"), Tag: PageCurrentPensions},
	{Name: "pensionDebits", Match: containsAny("pensionDebits"), Tag: PagePensionDebits},
	{Name: "numberOfPSOs", Match: containsAny("numberOfPSOs"), Tag: PageNumberOfPSOs},
	{Name: "psoDetails", Match: func(id string) bool { return isDateField(id) || strings.Contains(id, "psoAmt") }, Tag: PagePSODetails},
	{Name: "default", Match: always, Tag: PageUnknown},
}

// Tested against the validation message, case-sensitive.
var typeRules = []Rule[TypeTag]{
	{Name: "negative", Match: containsAny("0 or more"), Tag: TypeNegativeAmount},
	{Name: "range", Match: containsAny("less than"), Tag: TypeAmountOutOfRange},
	{Name: "date-range", Match: containsAny("Enter a date after"), Tag: TypeDateOutOfRange},
	{Name: "commas", Match: containsAny("without commas"), Tag: TypeInvalidFormat},
	{Name: "date-format", Match: containsAny("date in the correct format"), Tag: TypeInvalidFormat},
	{Name: "decimals", Match: containsAny("decimal places"), Tag: TypeDecimalPlaces},
	{Name: "default", Match: always, Tag: TypeMandatory},
}

// FamilyRules returns a copy of the family rule table.
func FamilyRules() []Rule[FamilyTag] { return append([]Rule[FamilyTag](nil), familyRules...) }

// PageRules returns a copy of the page rule table.
func PageRules() []Rule[PageTag] { return append([]Rule[PageTag](nil), pageRules...) }

// TypeRules returns a copy of the type rule table.
func TypeRules() []Rule[TypeTag] { return append([]Rule[TypeTag](nil), typeRules...) }

// firstMatch returns the tag of the first rule matching s. Every table ends
// with an always-matching rule; fallback covers an empty table.
func firstMatch[T ~string](rules []Rule[T], s string, fallback T) T {
	for _, r := range rules {
		if r.Match(s) {
			return r.Tag
		}
	}
	return fallback
}
