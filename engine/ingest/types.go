package ingest

import "github.com/LemonScout/lemonscout-mvp/engine/domain"

// RawComplaint is one complaint row as the NHTSA API returns it.
type RawComplaint struct {
	ODINumber          int    `json:"odiNumber"`
	Manufacturer       string `json:"manufacturer"`
	Crash              bool   `json:"crash"`
	Fire               bool   `json:"fire"`
	NumberOfInjuries   int    `json:"numberOfInjuries"`
	NumberOfDeaths     int    `json:"numberOfDeaths"`
	DateOfIncident     string `json:"dateOfIncident"`
	DateComplaintFiled string `json:"dateComplaintFiled"`
	Components         string `json:"components"`
	Summary            string `json:"summary"`
}

// RawRecall is one recall campaign row as the NHTSA API returns it.
type RawRecall struct {
	NHTSACampaignNumber string `json:"NHTSACampaignNumber"`
	ReportReceivedDate  string `json:"ReportReceivedDate"`
	Component           string `json:"Component"`
	Consequence         string `json:"Consequence"`
	Remedy              string `json:"Remedy"`
	PotentialUnits      int    `json:"PotentialNumberofUnitsAffected"`
}

// RawBatch is the collector → worker hand-off for one vehicle: everything a
// report build needs, in raw form.
type RawBatch struct {
	Vehicle     domain.Vehicle      `json:"vehicle"`
	Complaints  []RawComplaint      `json:"complaints"`
	Recalls     []RawRecall         `json:"recalls"`
	Attrs       domain.VehicleAttrs `json:"attrs"`
	FuelPrices  domain.FuelPrices   `json:"fuel_prices,omitempty"`
	SalesVolume int                 `json:"sales_volume,omitempty"`
}

// ScoredBatch is a batch with its normalized records, ready for scoring.
type ScoredBatch struct {
	Batch      RawBatch
	Complaints []domain.ComplaintRecord
	Recalls    []domain.RecallRecord
}

// DLQMessage is published to the dead-letter subject after retries run out.
type DLQMessage struct {
	Batch   RawBatch `json:"batch"`
	Error   string   `json:"error"`
	Retries int      `json:"retries"`
}
