package listing

import (
	"github.com/Jairajmehra/projects-api/internal/airtable"
	"github.com/Jairajmehra/projects-api/internal/logger"
)

// get reads one source field, defaulting to "" when absent or null. Every
// output field defaults independently; one missing field never rejects the
// record.
func get(fields map[string]any, key string) any {
	if v, ok := fields[key]; ok && v != nil {
		return v
	}
	return ""
}

// str reads one source field as a string, "" when absent or non-string.
func str(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// FormatResidentialProject maps one raw residential project record to an
// Entity. When a Photos field is present its first comma-split element
// overrides the explicit cover photo URL.
func FormatResidentialProject(rec airtable.Record) Entity {
	fields := rec.Fields
	if fields == nil {
		logger.L().Error("format_residential_project_error", "reason", "missing fields", "record_id", rec.ID)
		return nil
	}
	coverPhoto := str(fields, "Cover Photo Storage URL")
	if photos := str(fields, "Photos"); photos != "" {
		coverPhoto = firstCommaSplit(photos)
	}
	return Entity{
		"rera":                 get(fields, "RERA Number"),
		"name":                 get(fields, "Project Name"),
		"brochureLink":         get(fields, "Brochure Storage URL"),
		"coverPhotoLink":       coverPhoto,
		"certificateLink":      get(fields, "Certificate Storage URL"),
		"promoterName":         get(fields, "Promoter Name"),
		"mobile":               get(fields, "Mobile"),
		"projectType":          get(fields, "Project Type"),
		"startDate":            get(fields, "Project Start Date"),
		"endDate":              get(fields, "Project End Date"),
		"projectLandArea":      get(fields, "Land Area (Sqyrds)"),
		"projectAddress":       get(fields, "Project Address"),
		"projectStatus":        get(fields, "Project Status"),
		"totalUnits":           get(fields, "Total Units"),
		"totalUnitsAvailable":  get(fields, "Available Units"),
		"numberOfTowers":       get(fields, "Total No Of Towers"),
		"planPassingAuthority": get(fields, "Plan Passing Authority"),
		"coordinates":          get(fields, "coordinates"),
		"photos":               get(fields, "Photos"),
		"price":                get(fields, "Price"),
		"bhk":                  get(fields, "BHK"),
		"localityNames":        get(fields, "Name (from Locality)"),
		"configuration":        get(fields, "Configuration"),
		"airtable_id":          rec.ID,
	}
}

// FormatCommercialProject maps one raw commercial project record to an
// Entity. The coordinate field keeps the source's capitalized "Coordinates"
// key; see Entity.CoordinateString.
func FormatCommercialProject(rec airtable.Record) Entity {
	fields := rec.Fields
	if fields == nil {
		logger.L().Error("format_commercial_project_error", "reason", "missing fields", "record_id", rec.ID)
		return nil
	}
	return Entity{
		"rera":                 get(fields, "RERA Number"),
		"name":                 get(fields, "Project Name"),
		"brochureLink":         get(fields, "Brochure Storage URL"),
		"coverPhotoLink":       get(fields, "Cover Photo Storage URL"),
		"certificateLink":      get(fields, "Certificate Storage URL"),
		"promoterName":         get(fields, "Promoter Name"),
		"email":                get(fields, "Email Id"),
		"promoterPhone":        get(fields, "Promoter Phone"),
		"promoterAddress":      get(fields, "Promoter Address"),
		"mobile":               get(fields, "Mobile"),
		"projectType":          get(fields, "Project Type"),
		"district":             get(fields, "District"),
		"approvedDate":         get(fields, "Approved on"),
		"originalEndDate":      get(fields, "Project Original End Date"),
		"extendedEndDate":      get(fields, "Project Extended End Date"),
		"projectLandArea":      get(fields, "Project Land Area (Sq Mtrs)"),
		"averageCarpetArea":    get(fields, "Average Carpet Area of Units (Sq Mtrs)"),
		"totalOpenArea":        get(fields, "Total Open Area (Sq Mtrs)"),
		"totalCoveredArea":     get(fields, "Total Covered Area (Sq Mtrs)"),
		"projectAddress":       get(fields, "Project Address"),
		"aboutProject":         get(fields, "About Property"),
		"startDate":            get(fields, "Project Start Date"),
		"endDate":              get(fields, "Project End Date"),
		"projectStatus":        get(fields, "Project Status"),
		"type":                 get(fields, "Type"),
		"totalUnits":           get(fields, "Total Units"),
		"totalUnitsAvailable":  get(fields, "Available Units"),
		"numberOfTowers":       get(fields, "Total No Of Towers"),
		"planPassingAuthority": get(fields, "Plan Passing Authority"),
		"Coordinates":          get(fields, "Coordinates"),
		"airtable_id":          rec.ID,
	}
}

// linkedProjectPhotos finds the first residential project whose rera equals
// the reference and returns its comma-joined photos value, "" when nothing
// matches. The projects collection must already be formatted.
func linkedProjectPhotos(rera string, projects []Entity) string {
	for _, p := range projects {
		if p == nil {
			continue
		}
		if p.Str("rera") == rera {
			return p.Str("photos")
		}
	}
	return ""
}

// FormatResidentialProperty maps one raw residential property record to an
// Entity. A property without its own photo borrows the first photo of its
// linked project, looked up by RERA number in the already-formatted
// residential projects collection.
func FormatResidentialProperty(rec airtable.Record, residentialProjects []Entity) Entity {
	fields := rec.Fields
	if fields == nil {
		logger.L().Error("format_residential_property_error", "reason", "missing fields", "record_id", rec.ID)
		return nil
	}
	photos := str(fields, "Photos")
	linkedRera := toStrings(get(fields, "RERA Number (from residential projects)"))
	if photos == "" && len(linkedRera) > 0 {
		if projectPhotos := linkedProjectPhotos(linkedRera[0], residentialProjects); projectPhotos != "" {
			photos = firstCommaSplit(projectPhotos)
		}
	}
	return Entity{
		"name":                get(fields, "Property Name"),
		"price":               get(fields, "Price"),
		"transactionType":     get(fields, "Transaction Type"),
		"locality":            toStrings(get(fields, "Name (from Localities)")),
		"photos":              photos,
		"size":                get(fields, "Size in Sqfts"),
		"propertyType":        get(fields, "Property Type"),
		"coordinates":         get(fields, "Property Coordinates"),
		"landmark":            get(fields, "Landmark"),
		"condition":           get(fields, "Condition"),
		"date":                get(fields, "Date"),
		"bhk":                 get(fields, "BHK"),
		"airtable_id":         rec.ID,
		"linked_project_rera": linkedRera,
	}
}

// FormatCommercialProperty maps one raw commercial property record to an
// Entity. Photos collapse to the first comma-split element.
func FormatCommercialProperty(rec airtable.Record) Entity {
	fields := rec.Fields
	if fields == nil {
		logger.L().Error("format_commercial_property_error", "reason", "missing fields", "record_id", rec.ID)
		return nil
	}
	photos := ""
	if s := str(fields, "Photos"); s != "" {
		photos = firstCommaSplit(s)
	}
	return Entity{
		"name":            get(fields, "Property Name"),
		"price":           get(fields, "Price"),
		"transactionType": get(fields, "Transaction Type"),
		"locality":        toStrings(get(fields, "Name (from Localities)")),
		"photos":          photos,
		"size":            get(fields, "Size in Sqfts"),
		"propertyType":    get(fields, "Property Type"),
		"coordinates":     get(fields, "Property Coordinates"),
		"landmark":        get(fields, "Landmark"),
		"condition":       get(fields, "Condition"),
		"date":            get(fields, "Date"),
		"airtable_id":     rec.ID,
	}
}

// FormatLocality maps one raw locality record to an Entity with a single
// name field.
func FormatLocality(rec airtable.Record) Entity {
	fields := rec.Fields
	if fields == nil {
		logger.L().Error("format_locality_error", "reason", "missing fields", "record_id", rec.ID)
		return nil
	}
	return Entity{
		"name": get(fields, "Name"),
	}
}
