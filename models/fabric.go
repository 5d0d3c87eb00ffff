package models

import (
	"fmt"
	"strings"
)

// Column names of the fabric table, in storage order
const (
	ColFabricCode  = "Fabric_Code"
	ColSupplier    = "Supplier"
	ColMoQ         = "MoQ"
	ColCategory    = "Category"
	ColStatus      = "Status"
	ColComposition = "Composition"
	ColShade       = "Shade"
	ColWeight      = "BW_Weight"
	ColFinish      = "Finish"
	ColWidth       = "Width"
	ColWarpShrink  = "Warp_Shrink"
	ColWeftShrink  = "Weft_Shrink"
	ColWeave       = "Weave"
	ColStretch     = "Stretch"
	ColGrowth      = "Growth"
	ColMainImgID   = "Main_Img_ID"
	ColWashImgIDs  = "Wash_Img_IDs"
)

// ColumnSchema is the header row every fabric table must carry.
// FabricRecord.ToRow emits values in exactly this order.
var ColumnSchema = []string{
	ColFabricCode,
	ColSupplier,
	ColMoQ, ColCategory, ColStatus,
	ColComposition, ColShade,
	ColWeight, ColFinish, ColWidth,
	ColWarpShrink, ColWeftShrink,
	ColWeave, ColStretch, ColGrowth,
	ColMainImgID, ColWashImgIDs,
}

// FabricRecord represents one fabric specification row
type FabricRecord struct {
	Code string `json:"Fabric_Code"`

	Supplier string `json:"Supplier"`

	MoQ      string `json:"MoQ"`
	Category string `json:"Category"`
	Status   string `json:"Status"`

	Composition string `json:"Composition"`
	Shade       string `json:"Shade"`

	Weight string `json:"BW_Weight"`
	Finish string `json:"Finish"`
	Width  string `json:"Width"`

	WarpShrink string `json:"Warp_Shrink"`
	WeftShrink string `json:"Weft_Shrink"`

	Weave   string `json:"Weave"`
	Stretch string `json:"Stretch"`
	Growth  string `json:"Growth"`

	MainImageID  string   `json:"Main_Img_ID"`
	WashImageIDs []string `json:"Wash_Img_IDs"`
}

// Validate checks the invariants a record must satisfy before it is stored
func (f *FabricRecord) Validate() error {
	if strings.TrimSpace(f.Code) == "" {
		return fmt.Errorf("fabric code is required")
	}
	if strings.Contains(f.MainImageID, ",") {
		return fmt.Errorf("main image id %q contains a comma", f.MainImageID)
	}
	for _, id := range f.WashImageIDs {
		if strings.Contains(id, ",") {
			return fmt.Errorf("wash image id %q contains a comma", id)
		}
	}
	return nil
}

// ToRow flattens the record into ColumnSchema order.
// Wash image IDs are joined with commas into a single cell.
func (f *FabricRecord) ToRow() []string {
	return []string{
		f.Code,
		f.Supplier,
		f.MoQ, f.Category, f.Status,
		f.Composition, f.Shade,
		f.Weight, f.Finish, f.Width,
		f.WarpShrink, f.WeftShrink,
		f.Weave, f.Stretch, f.Growth,
		f.MainImageID, strings.Join(f.WashImageIDs, ","),
	}
}

// ToMap returns the record keyed by column name
func (f *FabricRecord) ToMap() map[string]string {
	row := f.ToRow()
	m := make(map[string]string, len(ColumnSchema))
	for i, col := range ColumnSchema {
		m[col] = row[i]
	}
	return m
}

// FabricRecordFromRow maps a header-keyed row back into a FabricRecord.
// Missing columns are read as empty strings.
func FabricRecordFromRow(row map[string]string) *FabricRecord {
	get := func(col string) string {
		return row[col]
	}

	return &FabricRecord{
		Code:         get(ColFabricCode),
		Supplier:     get(ColSupplier),
		MoQ:          get(ColMoQ),
		Category:     get(ColCategory),
		Status:       get(ColStatus),
		Composition:  get(ColComposition),
		Shade:        get(ColShade),
		Weight:       get(ColWeight),
		Finish:       get(ColFinish),
		Width:        get(ColWidth),
		WarpShrink:   get(ColWarpShrink),
		WeftShrink:   get(ColWeftShrink),
		Weave:        get(ColWeave),
		Stretch:      get(ColStretch),
		Growth:       get(ColGrowth),
		MainImageID:  get(ColMainImgID),
		WashImageIDs: SplitImageIDs(get(ColWashImgIDs)),
	}
}

// SplitImageIDs splits a stored Wash_Img_IDs cell, dropping empty entries
func SplitImageIDs(cell string) []string {
	var ids []string
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
