package reference

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FundRadar/internal/model"
)

// YAMLProvider loads the reference table from a local file:
//
//	funds:
//	  - ticker: HGLG11
//	    sector: Logística
//	    dividend_yield: "0,72%"
//	    price_to_book: "1,02"
type YAMLProvider struct {
	File string
}

func (p YAMLProvider) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(p.File)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	var doc struct {
		Funds []model.ReferenceAttributes `yaml:"funds"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse reference file %s: %w", p.File, err)
	}
	if len(doc.Funds) == 0 {
		return nil, fmt.Errorf("reference file %s: no funds listed", p.File)
	}
	return NewTable(doc.Funds), nil
}
