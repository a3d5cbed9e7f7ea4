package metrics

import (
	"math"

	"auditflow/internal/api"
)

// Summary aggregates display metrics over an audit's page records. It is
// always recomputed from the raw result and never stored as a source of
// truth.
type Summary struct {
	TotalPages           int `json:"total_pages"`
	PagesWithTitle       int `json:"pages_with_title"`
	PagesWithH1          int `json:"pages_with_h1"`
	PagesWithDescription int `json:"pages_with_description"`
	TotalImages          int `json:"total_images"`
	ImagesMissingAlt     int `json:"images_missing_alt"`
	TotalLinks           int `json:"total_links"`
	BrokenPages          int `json:"broken_pages"`

	TitleScore       int `json:"title_score"`
	H1Score          int `json:"h1_score"`
	DescriptionScore int `json:"description_score"`
	AltScore         int `json:"alt_score"`
	SEOScore         int `json:"seo_score"`
	LinkHealthScore  int `json:"link_health_score"`

	AvgRequestMillis float64 `json:"avg_request_millis"`
	AvgDOMSize       float64 `json:"avg_dom_size"`
	AvgHTMLSize      float64 `json:"avg_html_size"`
}

// Derive computes a Summary from a raw audit result. It is pure and
// idempotent; page order does not affect the output. A nil result yields a
// nil summary.
//
// Pages missing a field contribute zero to the matching accumulator but
// still count toward the page total. With zero pages every percentage is
// 100 and every count and average is 0; a page set with zero images scores
// 100 on alt coverage.
func Derive(result *api.AuditResult) *Summary {
	if result == nil {
		return nil
	}

	summary := &Summary{TotalPages: len(result.Items)}

	var totalRequestMillis float64
	var totalDOM, totalHTML int64
	for _, page := range result.Items {
		if page.Title != "" {
			summary.PagesWithTitle++
		}
		if page.H1 != "" {
			summary.PagesWithH1++
		}
		if page.Description != "" {
			summary.PagesWithDescription++
		}
		summary.TotalImages += page.Images
		summary.ImagesMissingAlt += page.ImagesNoAlt
		summary.TotalLinks += page.Links
		if page.Status >= 400 {
			summary.BrokenPages++
		}
		totalRequestMillis += page.RequestTime
		totalDOM += page.DOMSize
		totalHTML += page.HTMLSize
	}

	summary.TitleScore = percent(summary.PagesWithTitle, summary.TotalPages)
	summary.H1Score = percent(summary.PagesWithH1, summary.TotalPages)
	summary.DescriptionScore = percent(summary.PagesWithDescription, summary.TotalPages)
	// The service can report more missing-alt images than images on a page;
	// floor at zero so the score stays within [0, 100].
	imagesWithAlt := summary.TotalImages - summary.ImagesMissingAlt
	if imagesWithAlt < 0 {
		imagesWithAlt = 0
	}
	summary.AltScore = percent(imagesWithAlt, summary.TotalImages)
	summary.SEOScore = roundHalfUp(float64(summary.TitleScore+summary.H1Score+summary.DescriptionScore+summary.AltScore) / 4)
	summary.LinkHealthScore = percent(summary.TotalPages-summary.BrokenPages, summary.TotalPages)

	if summary.TotalPages > 0 {
		pages := float64(summary.TotalPages)
		summary.AvgRequestMillis = totalRequestMillis / pages
		summary.AvgDOMSize = float64(totalDOM) / pages
		summary.AvgHTMLSize = float64(totalHTML) / pages
	}

	return summary
}

// percent returns round(100*have/total), or 100 when total is zero.
func percent(have, total int) int {
	if total == 0 {
		return 100
	}
	return roundHalfUp(100 * float64(have) / float64(total))
}

// roundHalfUp rounds a non-negative value with ties going up.
func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}
