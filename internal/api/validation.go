package api

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/resodo/contact-crawler/internal/report"
)

var websitePattern = regexp.MustCompile(
	`^(https?:\/\/)?([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(:[0-9]{1,5})?(\/.*)?$`)

// Patterns that indicate script injection attempts in free-form text.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script.*?>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)onload=`),
	regexp.MustCompile(`(?i)onerror=`),
	regexp.MustCompile(`(?i)onclick=`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)document\.`),
	regexp.MustCompile(`(?i)window\.`),
	regexp.MustCompile(`(?i)alert\(`),
	regexp.MustCompile(`(?i)prompt\(`),
	regexp.MustCompile(`(?i)confirm\(`),
	regexp.MustCompile(`(?i)<iframe.*?>`),
	regexp.MustCompile(`(?i)<object.*?>`),
	regexp.MustCompile(`(?i)<embed.*?>`),
}

var errInvalidWebsite = errors.New("invalid website URL format")

// parseRequest validates the contact-info query parameters into a Request.
func parseRequest(query url.Values) (report.Request, error) {
	respondent := strings.TrimSpace(query.Get("respondent"))
	if len(respondent) < 2 || len(respondent) > 200 {
		return report.Request{}, fmt.Errorf("respondent must be 2-200 characters")
	}

	filer := strings.TrimSpace(query.Get("filer"))
	if len(filer) < 2 || len(filer) > 100 {
		return report.Request{}, fmt.Errorf("filer must be 2-100 characters")
	}

	website, err := validateWebsite(query.Get("website"))
	if err != nil {
		return report.Request{}, err
	}

	rawInfo := query["filer_info"]
	if len(rawInfo) == 0 || len(rawInfo) > 20 {
		return report.Request{}, fmt.Errorf("filer_info must have 1-20 items")
	}
	filerInfo, err := validateFilerInfo(rawInfo)
	if err != nil {
		return report.Request{}, err
	}

	resolution := query.Get("resolution")
	if len(resolution) < 10 || len(resolution) > 5000 {
		return report.Request{}, fmt.Errorf("resolution must be 10-5000 characters")
	}
	resolution, err = validateResolution(resolution)
	if err != nil {
		return report.Request{}, err
	}

	return report.Request{
		Respondent: respondent,
		Website:    website,
		Filer:      filer,
		FilerInfo:  filerInfo,
		Resolution: resolution,
	}, nil
}

// validateWebsite validates and normalizes a website URL, assuming https
// when the scheme is missing.
func validateWebsite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errInvalidWebsite
	}
	if !websitePattern.MatchString(raw) {
		return "", errInvalidWebsite
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
		if !websitePattern.MatchString(raw) {
			return "", errInvalidWebsite
		}
	}
	return raw, nil
}

// validateFilerInfo trims entries, drops empties and bounds item length.
func validateFilerInfo(items []string) ([]string, error) {
	validated := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if len(item) > 1000 {
			return nil, fmt.Errorf("filer_info item too long (max 1000 chars)")
		}
		validated = append(validated, trimmed)
	}
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid filer_info provided")
	}
	return validated, nil
}

// validateResolution rejects resolution text carrying injection payloads.
func validateResolution(text string) (string, error) {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(text) {
			return "", fmt.Errorf("resolution contains suspicious content")
		}
	}
	return strings.TrimSpace(text), nil
}
