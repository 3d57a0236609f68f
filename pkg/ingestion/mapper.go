package ingestion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/trialforge/platform/pkg/common/models"
)

// scalarFields is the declarative extraction schema for single-valued
// attributes: canonical raw field name -> path inside the study document.
var scalarFields = []struct {
	field string
	path  []string
}{
	{"NCTId", []string{"protocolSection", "identificationModule", "nctId"}},
	{"BriefTitle", []string{"protocolSection", "descriptionModule", "briefSummary"}},
	{"OfficialTitle", []string{"protocolSection", "descriptionModule", "officialTitle"}},
	{"LeadSponsorName", []string{"protocolSection", "sponsorCollaboratorsModule", "leadSponsor", "name"}},
	{"LeadSponsorClass", []string{"protocolSection", "sponsorCollaboratorsModule", "leadSponsor", "class"}},
	{"Status", []string{"protocolSection", "statusModule", "overallStatus"}},
	{"StudyStartDate", []string{"protocolSection", "statusModule", "startDateStruct", "date"}},
	{"PrimaryCompletionDate", []string{"protocolSection", "statusModule", "primaryCompletionDateStruct", "date"}},
	{"StudyCompletionDate", []string{"protocolSection", "statusModule", "completionDateStruct", "date"}},
	{"StudyType", []string{"protocolSection", "designModule", "studyType"}},
	{"Allocation", []string{"protocolSection", "designModule", "allocation"}},
	{"InterventionModel", []string{"protocolSection", "designModule", "interventionModel"}},
	{"PrimaryPurpose", []string{"protocolSection", "designModule", "primaryPurpose"}},
	{"MaskingInfo", []string{"protocolSection", "designModule", "maskingInfo", "masking"}},
}

// listFields flattens multi-valued sub-lists into a single "; "-delimited
// string per canonical attribute. Lossy on purpose; the enrichment stage
// tolerates it.
var listFields = []struct {
	field   string
	path    []string
	itemKey string // empty: the list holds bare strings
}{
	{"Condition", []string{"protocolSection", "conditionsModule", "conditions"}, ""},
	{"InterventionName", []string{"protocolSection", "armsInterventionsModule", "interventions"}, "name"},
	{"InterventionType", []string{"protocolSection", "armsInterventionsModule", "interventions"}, "type"},
	{"Phase", []string{"protocolSection", "designModule", "phases"}, ""},
	{"LocationCountry", []string{"protocolSection", "contactsLocationsModule", "locations"}, "country"},
	{"LocationState", []string{"protocolSection", "contactsLocationsModule", "locations"}, "state"},
	{"LocationCity", []string{"protocolSection", "contactsLocationsModule", "locations"}, "city"},
	{"LocationFacility", []string{"protocolSection", "contactsLocationsModule", "locations"}, "facility"},
	{"OutcomeMeasureDescription", []string{"protocolSection", "outcomesModule", "outcomes"}, "description"},
}

// MapStudy flattens one nested provider study document into the canonical
// raw-record field set.
func MapStudy(study map[string]interface{}) (rec models.RawTrialRecord, err error) {
	// Provider documents are untrusted input; a malformed study must not
	// abort the whole page.
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("mapping study document: %v", r)
		}
	}()

	if study == nil {
		return nil, fmt.Errorf("nil study document")
	}

	rec = make(models.RawTrialRecord, len(scalarFields)+len(listFields)+1)

	for _, f := range scalarFields {
		rec[f.field] = lookupPath(study, f.path)
	}

	for _, f := range listFields {
		rec[f.field] = joinList(lookupPath(study, f.path), f.itemKey)
	}

	enrollment := lookupPath(study, []string{"protocolSection", "enrollmentModule", "enrollmentCount"})
	rec["EnrollmentCount"] = parseEnrollment(enrollment)

	return rec, nil
}

func studyID(study map[string]interface{}) string {
	if id, ok := lookupPath(study, []string{"protocolSection", "identificationModule", "nctId"}).(string); ok {
		return id
	}
	return "unknown"
}

func lookupPath(doc map[string]interface{}, path []string) interface{} {
	var current interface{} = doc
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = m[key]
	}
	return current
}

func joinList(value interface{}, itemKey string) interface{} {
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}

	parts := make([]string, 0, len(list))
	for _, item := range list {
		if itemKey == "" {
			parts = append(parts, cast.ToString(item))
			continue
		}
		entry, ok := item.(map[string]interface{})
		if !ok {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, cast.ToString(entry[itemKey]))
	}
	return strings.Join(parts, "; ")
}

// parseEnrollment coerces string-with-separators or numeric counts to an
// integer, nil on failure.
func parseEnrollment(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return nil
		}
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			return nil
		}
		return n
	default:
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil
		}
		return n
	}
}
