package domain

// DueDiligenceReport is the structured result of analyzing one property document.
// A report is built once from an inference response and never modified afterwards.
type DueDiligenceReport struct {
	ReportSummary    string          `json:"reportSummary" yaml:"reportSummary"`
	PropertyDetails  PropertyDetails `json:"propertyDetails" yaml:"propertyDetails"`
	CurrentOwner     string          `json:"currentOwner" yaml:"currentOwner"`
	OwnershipHistory []Transaction   `json:"ownershipHistory" yaml:"ownershipHistory"`
	Encumbrances     []string        `json:"encumbrances" yaml:"encumbrances"`
	Financials       Financials      `json:"financials" yaml:"financials"`
	LegalClauses     []LegalClause   `json:"legalClauses" yaml:"legalClauses"`
	RiskAssessment   RiskAssessment  `json:"riskAssessment" yaml:"riskAssessment"`
}

// PropertyDetails identifies the property the document refers to.
type PropertyDetails struct {
	Address      string `json:"address" yaml:"address"`
	SurveyNumber string `json:"surveyNumber" yaml:"surveyNumber"`
	TotalArea    string `json:"totalArea" yaml:"totalArea"`
	PropertyType string `json:"propertyType" yaml:"propertyType"`
	ZoneType     string `json:"zoneType,omitempty" yaml:"zoneType,omitempty"`
}

// Transaction is one entry in the title flow, in the order the model returned it.
type Transaction struct {
	Date            string `json:"date" yaml:"date"`
	TransactionType string `json:"transactionType" yaml:"transactionType"`
	From            string `json:"from" yaml:"from"`
	To              string `json:"to" yaml:"to"`
	Amount          string `json:"amount" yaml:"amount"`
	DocumentNumber  string `json:"documentNumber,omitempty" yaml:"documentNumber,omitempty"`
	Details         string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Financials summarizes transaction values and tax status.
type Financials struct {
	Summary              string `json:"summary" yaml:"summary"`
	LastTransactionValue string `json:"lastTransactionValue" yaml:"lastTransactionValue"`
	TaxStatus            string `json:"taxStatus" yaml:"taxStatus"`
}

// LegalClause is a notable clause with a buyer-facing explanation.
type LegalClause struct {
	Clause       string `json:"clause" yaml:"clause"`
	Explanation  string `json:"explanation" yaml:"explanation"`
	Significance Level  `json:"significance" yaml:"significance"`
}

// RiskAssessment is the overall risk verdict. Score is an integer in [0,100].
type RiskAssessment struct {
	RiskLevel       Level        `json:"riskLevel" yaml:"riskLevel"`
	Score           int          `json:"score" yaml:"score"`
	Factors         []RiskFactor `json:"factors" yaml:"factors"`
	Recommendations []string     `json:"recommendations" yaml:"recommendations"`
}

// RiskFactor is a single identified concern.
type RiskFactor struct {
	Category    string `json:"category" yaml:"category"`
	Risk        string `json:"risk" yaml:"risk"`
	Severity    Level  `json:"severity" yaml:"severity"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// HasEncumbrances reports whether any active liability was found.
func (r *DueDiligenceReport) HasEncumbrances() bool {
	return len(r.Encumbrances) > 0
}
