package metrics

import (
	"reflect"
	"testing"

	"auditflow/internal/api"
)

func TestDeriveNilResult(t *testing.T) {
	if Derive(nil) != nil {
		t.Fatal("expected nil summary for nil result")
	}
}

func TestDeriveZeroPages(t *testing.T) {
	summary := Derive(&api.AuditResult{})
	if summary.TotalPages != 0 {
		t.Fatalf("total pages = %d", summary.TotalPages)
	}
	for name, score := range map[string]int{
		"title":       summary.TitleScore,
		"h1":          summary.H1Score,
		"description": summary.DescriptionScore,
		"alt":         summary.AltScore,
		"seo":         summary.SEOScore,
		"link health": summary.LinkHealthScore,
	} {
		if score != 100 {
			t.Errorf("%s score = %d, want 100", name, score)
		}
	}
	if summary.AvgRequestMillis != 0 || summary.AvgDOMSize != 0 || summary.AvgHTMLSize != 0 {
		t.Fatalf("averages should be 0: %+v", summary)
	}
}

func TestDeriveSinglePageWithTitleOnly(t *testing.T) {
	summary := Derive(&api.AuditResult{
		Items: []api.PageRecord{
			{URL: "https://example.com/", Status: 200, Title: "Example"},
		},
	})

	if summary.TotalPages != 1 {
		t.Fatalf("total pages = %d", summary.TotalPages)
	}
	if summary.TitleScore != 100 {
		t.Fatalf("title score = %d, want 100", summary.TitleScore)
	}
	if summary.H1Score != 0 || summary.DescriptionScore != 0 {
		t.Fatalf("h1/description scores = %d/%d, want 0/0", summary.H1Score, summary.DescriptionScore)
	}
	// No images at all counts as full alt coverage.
	if summary.AltScore != 100 {
		t.Fatalf("alt score = %d, want 100", summary.AltScore)
	}
	// round((100+0+0+100)/4) = 50
	if summary.SEOScore != 50 {
		t.Fatalf("seo score = %d, want 50", summary.SEOScore)
	}
}

func TestDeriveMissingAltExceedsImages(t *testing.T) {
	summary := Derive(&api.AuditResult{
		Items: []api.PageRecord{
			{URL: "https://example.com/", Status: 200, Title: "Example", Images: 2, ImagesNoAlt: 5},
		},
	})

	if summary.AltScore != 0 {
		t.Fatalf("alt score = %d, want 0", summary.AltScore)
	}
	if summary.SEOScore < 0 || summary.SEOScore > 100 {
		t.Fatalf("seo score = %d, want within [0, 100]", summary.SEOScore)
	}
	// round((100+0+0+0)/4) = 25
	if summary.SEOScore != 25 {
		t.Fatalf("seo score = %d, want 25", summary.SEOScore)
	}
}

func TestDeriveBrokenPageRatio(t *testing.T) {
	items := []api.PageRecord{
		{URL: "https://example.com/", Status: 200},
		{URL: "https://example.com/a", Status: 200},
		{URL: "https://example.com/b", Status: 200},
		{URL: "https://example.com/missing", Status: 404},
	}
	summary := Derive(&api.AuditResult{Items: items})

	if summary.BrokenPages != 1 {
		t.Fatalf("broken pages = %d, want 1", summary.BrokenPages)
	}
	// round((4-1)/4*100) = 75
	if summary.LinkHealthScore != 75 {
		t.Fatalf("link health = %d, want 75", summary.LinkHealthScore)
	}
}

func TestDerivePercentagesAndAverages(t *testing.T) {
	items := []api.PageRecord{
		{Status: 200, Title: "a", H1: "a", Description: "a", Images: 4, ImagesNoAlt: 1, Links: 10, RequestTime: 100, DOMSize: 1000, HTMLSize: 20000},
		{Status: 200, Title: "b", Images: 2, ImagesNoAlt: 2, Links: 5, RequestTime: 300, DOMSize: 3000, HTMLSize: 40000},
		{Status: 500, Links: 1, RequestTime: 200, DOMSize: 2000, HTMLSize: 30000},
	}
	summary := Derive(&api.AuditResult{Items: items})

	if summary.PagesWithTitle != 2 || summary.PagesWithH1 != 1 || summary.PagesWithDescription != 1 {
		t.Fatalf("presence counts wrong: %+v", summary)
	}
	if summary.TitleScore != 67 {
		t.Fatalf("title score = %d, want 67 (round of 66.67)", summary.TitleScore)
	}
	if summary.H1Score != 33 || summary.DescriptionScore != 33 {
		t.Fatalf("h1/description = %d/%d, want 33/33", summary.H1Score, summary.DescriptionScore)
	}
	if summary.TotalImages != 6 || summary.ImagesMissingAlt != 3 {
		t.Fatalf("image counts wrong: %+v", summary)
	}
	if summary.AltScore != 50 {
		t.Fatalf("alt score = %d, want 50", summary.AltScore)
	}
	if summary.TotalLinks != 16 {
		t.Fatalf("total links = %d, want 16", summary.TotalLinks)
	}
	// round((67+33+33+50)/4) = round(45.75) = 46
	if summary.SEOScore != 46 {
		t.Fatalf("seo score = %d, want 46", summary.SEOScore)
	}
	if summary.LinkHealthScore != 67 {
		t.Fatalf("link health = %d, want 67", summary.LinkHealthScore)
	}
	if summary.AvgRequestMillis != 200 {
		t.Fatalf("avg request = %v, want 200", summary.AvgRequestMillis)
	}
	if summary.AvgDOMSize != 2000 || summary.AvgHTMLSize != 30000 {
		t.Fatalf("avg sizes wrong: %+v", summary)
	}
}

func TestDeriveHalfRoundsUp(t *testing.T) {
	// 1 of 8 pages titled: 12.5% rounds to 13.
	items := make([]api.PageRecord, 8)
	items[0].Title = "only"
	for i := range items {
		items[i].Status = 200
	}
	summary := Derive(&api.AuditResult{Items: items})
	if summary.TitleScore != 13 {
		t.Fatalf("title score = %d, want 13", summary.TitleScore)
	}
}

func TestDeriveIdempotent(t *testing.T) {
	result := &api.AuditResult{
		Items: []api.PageRecord{
			{Status: 200, Title: "a", Images: 3, ImagesNoAlt: 1, RequestTime: 42},
			{Status: 404, H1: "b", Links: 9},
		},
	}
	first := Derive(result)
	second := Derive(result)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Derive not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestDeriveOrderIndependent(t *testing.T) {
	a := api.PageRecord{Status: 200, Title: "a", Images: 3, ImagesNoAlt: 1}
	b := api.PageRecord{Status: 404, H1: "b", Links: 9}
	c := api.PageRecord{Status: 200, Description: "c", RequestTime: 10}

	forward := Derive(&api.AuditResult{Items: []api.PageRecord{a, b, c}})
	reversed := Derive(&api.AuditResult{Items: []api.PageRecord{c, b, a}})
	if !reflect.DeepEqual(forward, reversed) {
		t.Fatalf("Derive depends on order:\n%+v\n%+v", forward, reversed)
	}
}
