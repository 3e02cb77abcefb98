package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Column headers, matching the layout the sales team already works with.
var headers = []string{
	"Level", "Happy_Block", "Village", "L2_Name", "L2_Count",
	"Priority_Score", "Priority_Label", "Ports_Available",
	"Installation_Status", "Province", "District", "Subdistrict",
	"Location_Type", "POI_Name", "POI_Address", "POI_Remark",
	"Timing_Weekday", "Timing_Weekend", "Best_Day", "Visit_Window", "Activity_Level",
	"Timing_Status", "Data_Source", "BestTime_Venue_ID", "Google_Maps",
	"Coverage_Notes", "Recommendations",
}

// cells flattens a row into the header order.
func cells(r model.ReportRow) []string {
	l2Count := ""
	if r.Level == model.LevelOverview {
		l2Count = fmt.Sprintf("%d", r.L2Count)
	}
	return []string{
		r.Level,
		r.HappyBlock,
		r.Village,
		r.L2Name,
		l2Count,
		fmt.Sprintf("%.1f", r.PriorityScore),
		string(r.PriorityLabel),
		fmt.Sprintf("%d", r.AvailPorts),
		string(r.InstallStatus),
		r.Province,
		r.District,
		r.Subdistrict,
		r.LocationType,
		r.POIName,
		r.POIAddress,
		r.POIRemark,
		r.TimingWeekday,
		r.TimingWeekend,
		r.BestDay,
		r.VisitWindow,
		r.ActivityLevel,
		r.TimingStatus,
		r.DataSource,
		r.BestTimeVenueID,
		r.MapsURL,
		r.CoverageNotes,
		r.Recommendations,
	}
}

// WriteXLSX saves the report as a single-sheet workbook.
func WriteXLSX(path string, rows []model.ReportRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Happy Blocks")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range headers {
		hr.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, c := range cells(r) {
			row.AddCell().SetString(c)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

// utf8BOM makes Excel detect UTF-8 so Thai names render correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV saves the report as a UTF-8 CSV with a BOM.
func WriteCSV(path string, rows []model.ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv")
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "report: write bom")
	}

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, r := range rows {
		if err := w.Write(cells(r)); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}
