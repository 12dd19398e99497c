package parser

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/sstent/walktime-go/internal/models"
)

type gpxFile struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Time string  `xml:"time"`
}

// GPXParser reads trk/trkseg/trkpt points. Points without a timestamp carry
// no speed information and are skipped.
type GPXParser struct{}

func (p *GPXParser) Parse(data []byte) ([]models.Position, error) {
	var gpx gpxFile
	if err := xml.Unmarshal(data, &gpx); err != nil {
		return nil, err
	}

	var positions []models.Position
	for _, track := range gpx.Tracks {
		for _, segment := range track.Segments {
			for _, pt := range segment.Points {
				ts, err := time.Parse(time.RFC3339, strings.TrimSpace(pt.Time))
				if err != nil {
					continue
				}
				positions = append(positions, models.Position{
					Lat:       pt.Lat,
					Lng:       pt.Lon,
					Timestamp: ts,
				})
			}
		}
	}

	if len(positions) == 0 {
		return nil, ErrNoTrackData
	}

	sortByTime(positions)
	return positions, nil
}
