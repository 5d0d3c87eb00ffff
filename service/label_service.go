package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"fabric-digital-system/codec"
	"fabric-digital-system/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var labelTemplate = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Record.Code}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 0; padding: 6mm; width: 88mm; }
  h1 { font-size: 20pt; margin: 0 0 3mm 0; }
  .qr { width: 40mm; height: 40mm; }
  .swatch { max-width: 40mm; max-height: 40mm; float: right; }
  table { border-collapse: collapse; width: 100%; font-size: 9pt; margin-top: 3mm; }
  td { border-bottom: 1px solid #ccc; padding: 1mm 0; }
  td.k { color: #555; width: 35%; }
</style>
</head>
<body>
  <h1>{{.Record.Code}}</h1>
  {{if .ImageData}}<img class="swatch" src="{{.ImageData}}" alt="swatch">{{end}}
  <img class="qr" src="{{.QRData}}" alt="QR {{.Record.Code}}">
  <table>
  {{range .Fields}}{{if .Value}}<tr><td class="k">{{.Name}}</td><td>{{.Value}}</td></tr>{{end}}
  {{end}}
  </table>
</body>
</html>
`))

type labelField struct {
	Name  string
	Value string
}

// LabelService renders printable QR labels for fabric swatches
type LabelService struct {
	driveService DriveServiceInterface
	chromePath   string
}

// NewLabelService creates a new LabelService.
// driveService may be nil, in which case labels carry no swatch image.
func NewLabelService(driveService DriveServiceInterface, chromePath string) *LabelService {
	return &LabelService{
		driveService: driveService,
		chromePath:   chromePath,
	}
}

// RenderLabelHTML renders the label page for a record with its QR code and,
// when available, a thumbnail of the main image
func (s *LabelService) RenderLabelHTML(ctx context.Context, record *models.FabricRecord) (string, error) {
	qr, err := codec.Encode(record.Code, codec.DefaultSize)
	if err != nil {
		return "", err
	}

	imageData := ""
	if record.MainImageID != "" && s.driveService != nil {
		imageData, err = s.swatchDataURI(ctx, record.MainImageID)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to fetch swatch for %s: %v", record.Code, err)
		}
	}

	fields := []labelField{
		{"Supplier", record.Supplier},
		{"Category", record.Category},
		{"Composition", record.Composition},
		{"Shade", record.Shade},
		{"Weight", record.Weight},
		{"Finish", record.Finish},
		{"Width", record.Width},
		{"Warp shrink", record.WarpShrink},
		{"Weft shrink", record.WeftShrink},
		{"Weave", record.Weave},
		{"Stretch", record.Stretch},
		{"Growth", record.Growth},
		{"MoQ", record.MoQ},
		{"Status", record.Status},
	}

	data := struct {
		Record    *models.FabricRecord
		QRData    template.URL
		ImageData template.URL
		Fields    []labelField
	}{
		Record:    record,
		QRData:    template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qr)),
		ImageData: template.URL(imageData),
		Fields:    fields,
	}

	var buf bytes.Buffer
	if err := labelTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute label template: %w", err)
	}
	return buf.String(), nil
}

func (s *LabelService) swatchDataURI(ctx context.Context, fileID string) (string, error) {
	raw, err := s.driveService.DownloadImage(ctx, fileID)
	if err != nil {
		return "", err
	}
	thumb, err := ThumbnailImage(raw)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb), nil
}

// GeneratePDF renders the label and prints it to a 100mm x 150mm PDF with chromedp
func (s *LabelService) GeneratePDF(ctx context.Context, record *models.FabricRecord) ([]byte, error) {
	html, err := s.RenderLabelHTML(ctx, record)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// 100mm x 150mm label stock
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(3.94).
				WithPaperHeight(5.91).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate label PDF: %w", err)
	}

	log.Printf("✓ Label PDF generated for %s (%d bytes)", record.Code, len(pdfBuf))
	return pdfBuf, nil
}

// detectChromePath returns configured if it exists, else the first common install path found
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
