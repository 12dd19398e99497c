package parser

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sstent/walktime-go/internal/models"
)

var ErrNoTrackData = errors.New("no track points found")

// Parser turns a recorded trace into time-ordered positions.
type Parser interface {
	Parse(data []byte) ([]models.Position, error)
}

func NewParser(fileType FileType) (Parser, error) {
	switch fileType {
	case FileTypeFIT:
		return &FITParser{}, nil
	case FileTypeGPX:
		return &GPXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// ParseFile detects the format of data and parses it.
func ParseFile(filename string, data []byte) ([]models.Position, FileType, error) {
	fileType := DetectFileType(filename, data)

	p, err := NewParser(fileType)
	if err != nil {
		return nil, fileType, err
	}

	positions, err := p.Parse(data)
	if err != nil {
		return nil, fileType, fmt.Errorf("failed to parse %s file: %w", fileType, err)
	}
	return positions, fileType, nil
}

func sortByTime(positions []models.Position) {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Timestamp.Before(positions[j].Timestamp)
	})
}
