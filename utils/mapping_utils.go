package utils

import (
	"regexp"
	"strings"

	"fabric-digital-system/models"
)

// fieldAliases maps the lower-cased form keys accepted by the entry API to column names.
// Column names themselves are always accepted too.
var fieldAliases = map[string]string{
	"fabric_code":  models.ColFabricCode,
	"code":         models.ColFabricCode,
	"supplier":     models.ColSupplier,
	"moq":          models.ColMoQ,
	"category":     models.ColCategory,
	"status":       models.ColStatus,
	"composition":  models.ColComposition,
	"shade":        models.ColShade,
	"weight":       models.ColWeight,
	"bw_weight":    models.ColWeight,
	"finish":       models.ColFinish,
	"width":        models.ColWidth,
	"warp_shrink":  models.ColWarpShrink,
	"weft_shrink":  models.ColWeftShrink,
	"weave":        models.ColWeave,
	"stretch":      models.ColStretch,
	"growth":       models.ColGrowth,
	"main_img_id":  models.ColMainImgID,
	"wash_img_ids": models.ColWashImgIDs,
}

// MapFieldToColumn maps a form key to its column name.
// Input is normalized to lowercase before mapping; unknown keys return "".
func MapFieldToColumn(field string) string {
	key := strings.ToLower(strings.TrimSpace(field))
	if col, exists := fieldAliases[key]; exists {
		return col
	}
	for _, col := range models.ColumnSchema {
		if strings.ToLower(col) == key {
			return col
		}
	}
	return ""
}

// FabricRecordFromFields builds a record from loosely keyed form values.
// Values are trimmed except the code, which is case-sensitive but still trimmed of
// surrounding whitespace. Unknown keys are ignored.
func FabricRecordFromFields(fields map[string]string) models.FabricRecord {
	row := make(map[string]string, len(models.ColumnSchema))
	for key, value := range fields {
		col := MapFieldToColumn(key)
		if col == "" {
			continue
		}
		row[col] = strings.TrimSpace(value)
	}
	return *models.FabricRecordFromRow(row)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// QRFileName returns the download name for a fabric's QR image, e.g. ABC1_QR.png
func QRFileName(code string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(code), "_")
	if name == "" {
		name = "fabric"
	}
	return name + "_QR.png"
}

// LabelFileName returns the download name for a fabric's printable label
func LabelFileName(code string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(code), "_")
	if name == "" {
		name = "fabric"
	}
	return name + "_label.pdf"
}
