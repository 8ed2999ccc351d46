package classify

import "strings"

// summaryHeadingMarker is the heading wording that triggers the summary event.
const summaryHeadingMarker = "problem with your application"

// Classify maps a field id and its validation message to the analytics taxonomy.
// It is a pure function of its inputs and never fails; unmatched input falls
// through to unknownPage and mandatory.
func Classify(id, message string) Classification {
	return Classification{
		Family: firstMatch(familyRules, id, FamilyRadio),
		Page:   firstMatch(pageRules, id, PageUnknown),
		Type:   firstMatch(typeRules, message, TypeMandatory),
	}
}

// ClassifyEntry classifies a single error summary entry.
func ClassifyEntry(e ErrorEntry) Classification {
	return Classify(e.ID, e.Message)
}

// ClassifyAll classifies entries in order.
func ClassifyAll(entries []ErrorEntry) []Classification {
	out := make([]Classification, 0, len(entries))
	for _, e := range entries {
		out = append(out, ClassifyEntry(e))
	}
	return out
}

// CheckHeading reports the summary classification when the error summary
// heading says the application has a problem.
func CheckHeading(text string) (Classification, bool) {
	if strings.Contains(text, summaryHeadingMarker) {
		return SummaryClassification, true
	}
	return Classification{}, false
}
