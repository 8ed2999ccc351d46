package classify

// FamilyTag identifies the kind of field that failed validation.
type FamilyTag string

const (
	FamilyAmount         FamilyTag = "error-Amount"
	FamilyDate           FamilyTag = "error-Date"
	FamilyRadio          FamilyTag = "error-Radio"
	FamilyRelativeAmount FamilyTag = "error-Relative-Amount"
)

// PageTag identifies the form page a field belongs to.
type PageTag string

const (
	PagePensionsTakenBefore  PageTag = "pensionsTakenBefore"
	PagePensionsTakenBetween PageTag = "pensionsTakenBetween"
	PagePensionsTaken        PageTag = "pensionsTaken"
	PageOverseasPensions     PageTag = "overseasPensions"
	PageCurrentPensions      PageTag = "currentPensions"
	PagePensionDebits        PageTag = "pensionDebits"
	PageNumberOfPSOs         PageTag = "numberOfPSOs"
	PagePSODetails           PageTag = "psoDetails"
	PageUnknown              PageTag = "unknownPage"
	PageSummary              PageTag = "summary"
)

// TypeTag identifies why a field failed validation.
type TypeTag string

const (
	TypeNegativeAmount   TypeTag = "negativeAmount"
	TypeAmountOutOfRange TypeTag = "amountOutOfRange"
	TypeDateOutOfRange   TypeTag = "dateOutOfRange"
	TypeInvalidFormat    TypeTag = "invalidFormat"
	TypeDecimalPlaces    TypeTag = "decimalPlaces"
	TypeMandatory        TypeTag = "mandatory"
	TypeInsufficient     TypeTag = "insufficient"
)

// ErrorEntry is one line of a rendered error summary.
type ErrorEntry struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Classification is the analytics taxonomy for one error.
type Classification struct {
	Family FamilyTag `json:"family"`
	Page   PageTag   `json:"page"`
	Type   TypeTag   `json:"type"`
}

// Triple returns the classification as (category, action, label).
func (c Classification) Triple() (category, action, label string) {
	return string(c.Family), string(c.Page), string(c.Type)
}

// String renders the classification as "family:page:type".
func (c Classification) String() string {
	return string(c.Family) + ":" + string(c.Page) + ":" + string(c.Type)
}

// SummaryClassification is reported once for a page whose error summary
// heading signals an application-level problem.
var SummaryClassification = Classification{
	Family: FamilyRelativeAmount,
	Page:   PageSummary,
	Type:   TypeInsufficient,
}

var (
	families = tagSet(FamilyAmount, FamilyDate, FamilyRadio, FamilyRelativeAmount)
	pages    = tagSet(PagePensionsTakenBefore, PagePensionsTakenBetween, PagePensionsTaken, PageOverseasPensions,
		PageCurrentPensions, PagePensionDebits, PageNumberOfPSOs, PagePSODetails, PageUnknown, PageSummary)
	types = tagSet(TypeNegativeAmount, TypeAmountOutOfRange, TypeDateOutOfRange, TypeInvalidFormat,
		TypeDecimalPlaces, TypeMandatory, TypeInsufficient)
)

func tagSet[T ~string](tags ...T) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[string(t)] = struct{}{}
	}
	return m
}

// IsFamily reports whether category is one of the family tags.
func IsFamily(category string) bool {
	_, ok := families[category]
	return ok
}

// IsClassification reports whether (category, action, label) is a triple
// made only of family, page and type tags.
func IsClassification(category, action, label string) bool {
	if !IsFamily(category) {
		return false
	}
	_, okPage := pages[action]
	_, okType := types[label]
	return okPage && okType
}
