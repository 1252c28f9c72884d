package client

import (
	"context"
	"strings"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Group and field holding an action's funding source.
const (
	FundingGroup = "Funding"
	FundingField = "FundingSource"
)

// Classifier maps free-text labels onto a closed set of values. Labels are
// compared ignoring case and runs of whitespace.
type Classifier[E comparable] struct {
	labels  map[string]E
	unknown E
}

// NewClassifier creates a classifier. Labels missing from the dictionary
// classify as unknown.
func NewClassifier[E comparable](dictionary map[string]E, unknown E) *Classifier[E] {
	labels := make(map[string]E, len(dictionary))
	for label, value := range dictionary {
		labels[normalizeLabel(label)] = value
	}

	return &Classifier[E]{labels: labels, unknown: unknown}
}

// Classify returns the value for label.
func (c *Classifier[E]) Classify(label string) E {
	if value, ok := c.labels[normalizeLabel(label)]; ok {
		return value
	}

	return c.unknown
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

var fundingSources = NewClassifier(map[string]caseapi.FundingSource{
	"private":                   caseapi.FundingPrivate,
	"private client":            caseapi.FundingPrivate,
	"self funded":               caseapi.FundingPrivate,
	"legal aid":                 caseapi.FundingLegalAid,
	"legal aid agency":          caseapi.FundingLegalAid,
	"laa":                       caseapi.FundingLegalAid,
	"pro bono":                  caseapi.FundingProBono,
	"insurance":                 caseapi.FundingInsurance,
	"before the event":          caseapi.FundingInsurance,
	"after the event":           caseapi.FundingInsurance,
	"bte":                       caseapi.FundingInsurance,
	"ate":                       caseapi.FundingInsurance,
	"conditional fee":           caseapi.FundingConditionalFee,
	"conditional fee agreement": caseapi.FundingConditionalFee,
	"cfa":                       caseapi.FundingConditionalFee,
	"no win no fee":             caseapi.FundingConditionalFee,
}, caseapi.FundingUnknown)

// ClassifyFundingSource maps a funding label onto a FundingSource.
func ClassifyFundingSource(label string) caseapi.FundingSource {
	return fundingSources.Classify(label)
}

// ClassifierClient implements caseapi.ClassifierClient.
type ClassifierClient struct {
	fields *FieldValuesClient
}

// NewClassifierClient creates a new classifier client.
func NewClassifierClient(fields *FieldValuesClient) *ClassifierClient {
	return &ClassifierClient{fields: fields}
}

// FundingSource classifies an action's funding field. An unset field is
// FundingUnknown.
func (c *ClassifierClient) FundingSource(ctx context.Context, actionID caseapi.ID) (caseapi.FundingSource, error) {
	value, err := c.fields.Find(ctx, actionID, FundingGroup, FundingField)
	if err != nil {
		return caseapi.FundingUnknown, err
	}

	if value == nil {
		return caseapi.FundingUnknown, nil
	}

	return ClassifyFundingSource(value.StringValue), nil
}
