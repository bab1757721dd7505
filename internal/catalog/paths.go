package catalog

import (
	"fmt"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// LightcurvePath is the catalog path of a source's full light curve
func LightcurvePath(sourceID int64) string {
	return fmt.Sprintf("/lightcurves/%d/all", sourceID)
}

// LightcurveDownloadPath is the catalog path of the bulk light-curve file
func LightcurveDownloadPath(sourceID int64) string {
	return LightcurvePath(sourceID) + "/download"
}

// CutoutPath is the catalog path of a flux cutout
func CutoutPath(pointID int64) string {
	return fmt.Sprintf("/cutouts/flux/%d", pointID)
}

// LightcurveFilename is the suggested name of a bulk download
func LightcurveFilename(sourceID int64, format models.DataFormat) string {
	return fmt.Sprintf("source-data-%d.%s", sourceID, format)
}

// CutoutFilename is the suggested name of a cutout download
func CutoutFilename(pointID int64, format models.CutoutFormat) string {
	return fmt.Sprintf("cutout-%d.%s", pointID, format)
}

// ContentTypeFor guesses a content type from a file extension
func ContentTypeFor(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "csv":
		return "text/csv"
	case "fits":
		return "application/fits"
	case "hdf5":
		return "application/x-hdf5"
	default:
		return "application/octet-stream"
	}
}
