// Package testutil provides report fixtures shared by package tests.
package testutil

import (
	"encoding/json"

	"propcheck/internal/domain"
)

// ReportJSON is a schema-conformant model response for a sale deed with a
// mortgage still registered against the property.
const ReportJSON = `{
  "reportSummary": "Sale deed for a residential plot with one active mortgage.",
  "propertyDetails": {
    "address": "Plot 14, 3rd Cross, Jayanagar, Bengaluru",
    "surveyNumber": "112/4B",
    "totalArea": "2400 sq ft",
    "propertyType": "Residential Plot",
    "zoneType": "Residential"
  },
  "currentOwner": "Anita Rao",
  "ownershipHistory": [
    {"date": "12-03-2004", "transactionType": "Sale Deed", "from": "K. Murthy", "to": "S. Iyer", "amount": "Rs. 8,00,000", "documentNumber": "JAY-2004-1182"},
    {"date": "05-07-2016", "transactionType": "Sale Deed", "from": "S. Iyer", "to": "Anita Rao", "amount": "Rs. 62,00,000", "details": "Registered at Jayanagar SRO"}
  ],
  "encumbrances": ["Mortgage in favour of State Bank of India, 2016"],
  "financials": {
    "summary": "Property tax paid up to 2023-24.",
    "lastTransactionValue": "Rs. 62,00,000",
    "taxStatus": "Paid"
  },
  "legalClauses": [
    {"clause": "Indemnity", "explanation": "Seller covers losses from defects in title.", "significance": "HIGH"},
    {"clause": "Easement", "explanation": "Neighbour retains a right of way along the east wall.", "significance": "MEDIUM"}
  ],
  "riskAssessment": {
    "riskLevel": "HIGH",
    "score": 85,
    "factors": [
      {"category": "Title", "risk": "Active mortgage", "severity": "HIGH", "explanation": "Loan must be closed before transfer."},
      {"category": "Zoning", "risk": "Buffer zone", "severity": "LOW", "explanation": "Plot is near a lake buffer."}
    ],
    "recommendations": ["Obtain a loan closure letter", "Verify the latest encumbrance certificate"]
  }
}`

// CleanReportJSON is a conformant response with no encumbrances and low risk.
const CleanReportJSON = `{
  "reportSummary": "Clean title with an unbroken chain of ownership.",
  "propertyDetails": {
    "address": "Flat 2B, Lake View Apartments, Pune",
    "surveyNumber": "45/1",
    "totalArea": "1100 sq ft",
    "propertyType": "Apartment"
  },
  "currentOwner": "Rahul Deshpande",
  "ownershipHistory": [
    {"date": "01-02-2019", "transactionType": "Sale Deed", "from": "Builder Pvt Ltd", "to": "Rahul Deshpande", "amount": "Rs. 75,00,000"}
  ],
  "encumbrances": [],
  "financials": {
    "summary": "No dues recorded.",
    "lastTransactionValue": "Rs. 75,00,000",
    "taxStatus": "Paid"
  },
  "legalClauses": [],
  "riskAssessment": {
    "riskLevel": "LOW",
    "score": 12,
    "factors": [],
    "recommendations": []
  }
}`

// Report decodes ReportJSON into a report.
func Report() *domain.DueDiligenceReport {
	return mustDecode(ReportJSON)
}

// CleanReport decodes CleanReportJSON into a report.
func CleanReport() *domain.DueDiligenceReport {
	return mustDecode(CleanReportJSON)
}

// ReportMap decodes ReportJSON into a generic map so tests can remove or alter fields.
func ReportMap() map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(ReportJSON), &m); err != nil {
		panic(err)
	}
	return m
}

// MustJSON marshals v or panics.
func MustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustDecode(s string) *domain.DueDiligenceReport {
	var r domain.DueDiligenceReport
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		panic(err)
	}
	return &r
}
