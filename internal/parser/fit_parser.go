package parser

import (
	"bytes"
	"fmt"

	"github.com/tormoder/fit"

	"github.com/sstent/walktime-go/internal/models"
)

// FITParser reads the record messages of a FIT activity file.
type FITParser struct{}

func (p *FITParser) Parse(data []byte) ([]models.Position, error) {
	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity from FIT: %w", err)
	}

	var positions []models.Position
	for _, record := range activity.Records {
		if record == nil || record.PositionLat.Invalid() || record.PositionLong.Invalid() {
			continue
		}
		if record.Timestamp.IsZero() {
			continue
		}
		positions = append(positions, models.Position{
			Lat:       record.PositionLat.Degrees(),
			Lng:       record.PositionLong.Degrees(),
			Timestamp: record.Timestamp,
		})
	}

	if len(positions) == 0 {
		return nil, ErrNoTrackData
	}

	sortByTime(positions)
	return positions, nil
}
