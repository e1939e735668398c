package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/models"
	"github.com/Conceptual-Machines/prdgen-api/pkg/embedded"
)

// Catalog maps document formats to their skeleton templates.
type Catalog struct{}

// NewCatalog creates a new template catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// FormatInfo describes one supported document format.
type FormatInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// SkeletonFor returns the document skeleton for format with the {date} and
// {quarter} placeholders resolved against now. The {product_name}
// placeholder is left in place for the prompt builder. Unknown formats fall
// back to the standard skeleton.
func (c *Catalog) SkeletonFor(format models.DocumentFormat, now time.Time) string {
	date := now.Format("January 02, 2006")
	quarter := fmt.Sprintf("Q%d %d", (int(now.Month())-1)/3+1, now.Year())

	skeleton := c.rawSkeleton(format)
	skeleton = strings.ReplaceAll(skeleton, "{date}", date)
	return strings.ReplaceAll(skeleton, "{quarter}", quarter)
}

// Formats lists the supported document formats in menu order.
func (c *Catalog) Formats() []FormatInfo {
	return []FormatInfo{
		{ID: string(models.FormatStandard), Label: "Standard PRD", Description: "Full 11-section PRD for complex features"},
		{ID: string(models.FormatOnePage), Label: "One-Page PRD", Description: "Concise single-page PRD for quick alignment"},
		{ID: string(models.FormatAgileEpic), Label: "Agile Epic", Description: "Sprint-based agile epic format"},
		{ID: string(models.FormatFeatureBrief), Label: "Feature Brief", Description: "Lightweight hypothesis-driven exploration brief"},
	}
}

func (c *Catalog) rawSkeleton(format models.DocumentFormat) string {
	var raw []byte
	switch format {
	case models.FormatOnePage:
		raw = embedded.OnePageTemplateMd
	case models.FormatAgileEpic:
		raw = embedded.AgileEpicTemplateMd
	case models.FormatFeatureBrief:
		raw = embedded.FeatureBriefTemplateMd
	case models.FormatStandard:
		raw = embedded.StandardTemplateMd
	default:
		raw = embedded.StandardTemplateMd
	}
	return strings.TrimSpace(string(raw))
}
