package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

// complaintPointID derives a stable Qdrant point ID so re-ingesting a vehicle
// overwrites rather than duplicates its complaints.
func complaintPointID(vehicleKey string, odiNumber int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%d", vehicleKey, odiNumber))).String()
}

// nhtsaDate parses the date layouts the NHTSA API uses across endpoints.
func nhtsaDate(s string) time.Time {
	for _, layout := range []string{"01/02/2006", "2006-01-02", "20060102", time.RFC3339} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// complaintFromRaw normalizes one NHTSA complaint row.
func complaintFromRaw(c RawComplaint) domain.ComplaintRecord {
	return domain.ComplaintRecord{
		ID:        fmt.Sprintf("nhtsa-%d", c.ODINumber),
		Filed:     nhtsaDate(c.DateComplaintFiled),
		Component: strings.TrimSpace(c.Components),
		Crash:     c.Crash,
		Fire:      c.Fire,
		Injuries:  c.NumberOfInjuries,
		Deaths:    c.NumberOfDeaths,
		Summary:   strings.TrimSpace(c.Summary),
	}
}

// recallFromRaw normalizes one NHTSA recall campaign row.
func recallFromRaw(r RawRecall) domain.RecallRecord {
	return domain.RecallRecord{
		Campaign:         strings.TrimSpace(r.NHTSACampaignNumber),
		Date:             nhtsaDate(r.ReportReceivedDate),
		Component:        strings.TrimSpace(r.Component),
		Consequence:      strings.TrimSpace(r.Consequence),
		Remedy:           strings.TrimSpace(r.Remedy),
		PossiblyAffected: r.PotentialUnits,
	}
}
