package parser

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/kamilpajak/ciscope/pkg/models"
)

// CoberturaParser reads the overall line rate from Cobertura XML coverage reports
type CoberturaParser struct{}

type coberturaReport struct {
	XMLName  xml.Name `xml:"coverage"`
	LineRate *float64 `xml:"line-rate,attr"`
}

// Parse reads and parses a Cobertura XML file
func (p *CoberturaParser) Parse(path string) (*models.CoverageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage: %w", err)
	}

	return p.ParseBytes(data)
}

// ParseBytes parses Cobertura XML from raw bytes
func (p *CoberturaParser) ParseBytes(data []byte) (*models.CoverageInfo, error) {
	var raw coberturaReport
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse coverage: %w", err)
	}

	if raw.LineRate == nil {
		return nil, fmt.Errorf("coverage root has no line-rate attribute")
	}

	rate := *raw.LineRate
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("line-rate %v out of range [0,1]", rate)
	}

	return &models.CoverageInfo{LineRate: rate}, nil
}
