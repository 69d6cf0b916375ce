package constants

import (
	"strings"
	"unicode"
)

// Section is a canonical policy section name from the commercial taxonomy.
type Section string

// SectionOther collects sections that are not part of the taxonomy.
const SectionOther Section = "Other"

var allSections = []Section{
	"Fire",
	"Buildings combined",
	"Office contents",
	"Business interruption",
	"General",
	"Theft",
	"Money",
	"Glass",
	"Fidelity guarantee",
	"Goods in transit",
	"Business all risks",
	"Accidental damage",
	"Public liability",
	"Employers' liability",
	"Stated benefits",
	"Group personal accident",
	"Motor personal accident",
	"Motor General",
	"Motor Specific/Specified",
	"Motor Fleet",
	"Electronic equipment",
	"Umbrella liability",
	"Assist/Value services/ VAS",
	"SASRIA",
	"Intermediary fee",
	"Accounts receivable",
	"Motor Industry Risks",
	"Houseowners",
	"Machinery Breakdown",
	"Householders",
	"Personal, All Risks",
	"Watercraft",
	"Personal Legal Liability",
	"Deterioration of Stock",
	"Personal Umbrella Liability",
	"Greens and Irrigation Systems",
	"Commercial Umbrella Liability",
	"Professional Indemnity",
	"Cyber",
	"Community & Sectional Title",
	"Plant All risk",
	"Contractor All Risk",
	"Hospitality",
}

// SubSections lists the sub-section descriptions searched for inside each section.
var SubSections = map[Section][]string{
	"Fire":                       {"Building structure", "Contents", "Stock", "Loss of rent", "Debris removal", "Alternative accommodation", "Rent receivable", "Machinery", "Equipment"},
	"Buildings combined":         {"Main building", "Outbuildings", "Boundary walls", "Fixed improvements", "Tenant's improvements", "Signs", "Landscaping", "Carports", "Storage facilities"},
	"Office contents":            {"Furniture & fittings", "Office equipment", "Computer equipment", "Personal effects", "Stock", "Documents", "Artwork", "Antiques", "Electronics"},
	"Motor General":              {"Comprehensive cover", "Third party", "Fire & theft", "Windscreen cover", "Roadside assistance", "Courtesy car", "Hire car", "Medical expenses"},
	"Public liability":           {"General public liability", "Products liability", "Professional indemnity", "Legal costs", "Cross liability", "Tenant's liability", "Employer's liability"},
	"SASRIA":                     {"Riot damages", "Strike damages", "Civil commotion", "Terrorism cover", "Political violence", "Social unrest", "Malicious damage"},
	"Accounts receivable":        {"Books of account", "Computer records", "Outstanding debtors", "Mercantile collections", "Credit sales", "Bad debts", "Collection costs"},
	"Motor Industry Risks":       {"Stock in trade", "Customers vehicles", "Tools and equipment", "Liability", "Showroom contents", "Spare parts", "Workshop equipment"},
	"Machinery Breakdown":        {"Mechanical breakdown", "Electrical breakdown", "Explosion", "Expediting expenses", "Replacement parts", "Labour costs", "Loss of income"},
	"Professional Indemnity":     {"Errors and omissions", "Legal costs", "Documents", "Loss of data", "Defense costs", "Settlement costs", "Regulatory fines"},
	"Cyber":                      {"Data breach", "Cyber attack", "Business interruption", "System restoration", "Legal costs", "Notification costs", "Credit monitoring", "Ransomware"},
	"Watercraft":                 {"Hull damage", "Third party liability", "Personal accident", "Salvage costs", "Wreck removal", "Pollution liability", "Medical expenses"},
	"Personal Legal Liability":   {"Legal costs", "Damages awarded", "Defense costs", "Bail bonds", "Court costs", "Settlement costs"},
	"Plant All risk":             {"Construction plant", "Contractors equipment", "Hired in plant", "Transit", "Testing", "Commissioning", "Maintenance"},
	"Contractor All Risk":        {"Contract works", "Plant and equipment", "Third party liability", "Professional indemnity", "Delay in start-up", "Testing", "Maintenance"},
	"Hospitality":                {"Public liability", "Product liability", "Liquor liability", "Employment practices", "Food safety", "Guest property", "Business interruption"},
	"Business interruption":      {"Loss of gross profit", "Increased cost of working", "Claims preparation", "Accountants fees", "Loss of rent", "Debtors", "Book debts"},
	"Electronic equipment":       {"Computers", "Servers", "Networking equipment", "Software", "Data", "Peripherals", "Mobile devices", "IoT devices"},
	"Theft":                      {"Burglary", "Robbery", "Employee dishonesty", "Money", "Securities", "Stock", "Equipment", "Contents"},
	"Money":                      {"Cash", "Cheques", "Credit cards", "Bank notes", "Coins", "Postal orders", "Gift vouchers", "Travellers cheques"},
	"Glass":                      {"Windows", "Doors", "Skylights", "Shop fronts", "Display cases", "Mirrors", "Signs", "Fittings"},
	"Fidelity guarantee":         {"Employee dishonesty", "Fraud", "Theft", "Embezzlement", "Forgery", "Computer fraud", "Funds transfer fraud"},
	"Goods in transit":           {"Road transport", "Rail transport", "Air transport", "Sea transport", "Temporary storage", "Loading/unloading", "Packing materials"},
	"Accidental damage":          {"Impact damage", "Falling objects", "Collision", "Spillage", "Breakage", "Vandalism", "Natural disasters"},
	"Employers' liability":       {"Workplace accidents", "Occupational diseases", "Medical expenses", "Rehabilitation", "Legal costs", "Compensation"},
	"Umbrella liability":         {"Excess liability", "Aggregate limits", "Worldwide coverage", "Additional insureds", "Defense costs", "Settlement costs"},
	"Assist/Value services/ VAS": {"Emergency assistance", "Legal helpline", "Medical assistance", "Travel assistance", "Home assistance", "24/7 support"},
	"Intermediary fee":           {"Brokerage", "Administration fees", "Policy fees", "Service charges", "Documentation fees", "Processing fees"},
}

// synonyms are keyed by SectionKey output.
var synonyms = map[string]Section{
	"buildings":                  "Buildings combined",
	"building combined":          "Buildings combined",
	"buildings combined cover":   "Buildings combined",
	"contents":                   "Office contents",
	"office content":             "Office contents",
	"bi":                         "Business interruption",
	"all risks":                  "Business all risks",
	"business all risk":          "Business all risks",
	"git":                        "Goods in transit",
	"employer liability":         "Employers' liability",
	"employers liability cover":  "Employers' liability",
	"motor":                      "Motor General",
	"motor specific":             "Motor Specific/Specified",
	"motor specified":            "Motor Specific/Specified",
	"fleet":                      "Motor Fleet",
	"vas":                        "Assist/Value services/ VAS",
	"value added services":       "Assist/Value services/ VAS",
	"assist":                     "Assist/Value services/ VAS",
	"broker fee":                 "Intermediary fee",
	"personal all risk":          "Personal, All Risks",
	"pi":                         "Professional Indemnity",
	"cyber liability":            "Cyber",
	"sectional title":            "Community & Sectional Title",
	"contractors all risk":       "Contractor All Risk",
	"contract works":             "Contractor All Risk",
	"machinery breakdown cover":  "Machinery Breakdown",
	"electronic equipment cover": "Electronic equipment",
}

var sectionIndex = func() map[string]Section {
	m := make(map[string]Section, len(allSections))
	for _, s := range allSections {
		m[SectionKey(string(s))] = s
	}
	return m
}()

// Sections returns the taxonomy in display order.
func Sections() []Section {
	out := make([]Section, len(allSections))
	copy(out, allSections)
	return out
}

func SectionsAsStrings() []string {
	result := make([]string, len(allSections))
	for i, s := range allSections {
		result[i] = string(s)
	}
	return result
}

// SectionKey folds a label to a comparable key: lower case, apostrophes dropped,
// "&" read as "and", every other run of non-alphanumerics collapsed to one space.
func SectionKey(label string) string {
	label = strings.ReplaceAll(label, "&", " and ")
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// Canonicalize maps a free-form section label onto the taxonomy.
// Unknown labels return SectionOther and false.
func Canonicalize(input string) (Section, bool) {
	key := SectionKey(input)
	if key == "" {
		return SectionOther, false
	}
	if s, ok := sectionIndex[key]; ok {
		return s, true
	}
	if s, ok := synonyms[key]; ok {
		return s, true
	}
	// "Fire Section", "SASRIA cover" and similar suffixed headings
	for _, suffix := range []string{" section", " cover", " insurance", " premium"} {
		if trimmed, found := strings.CutSuffix(key, suffix); found {
			if s, ok := sectionIndex[trimmed]; ok {
				return s, true
			}
			if s, ok := synonyms[trimmed]; ok {
				return s, true
			}
		}
	}
	return SectionOther, false
}
