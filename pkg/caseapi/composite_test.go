package caseapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

func TestParseCompositeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		parts   []string
		wantErr error
	}{
		{name: "two parts", input: "4--9", parts: []string{"4", "9"}},
		{name: "three parts", input: "12--3--77", parts: []string{"12", "3", "77"}},
		{name: "single part", input: "42", parts: []string{"42"}},
		{name: "empty", input: "  ", wantErr: caseapi.ErrEmptyCompositeID},
		{name: "empty part", input: "4----9", wantErr: caseapi.ErrEmptyIDPart},
		{name: "trailing separator", input: "4--", wantErr: caseapi.ErrEmptyIDPart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := caseapi.ParseCompositeID(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.parts, id.Parts())
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestCompositeID(t *testing.T) {
	t.Parallel()

	id := caseapi.MustCompositeID("77", "FundingSource")

	assert.Equal(t, caseapi.ID("77--FundingSource"), id.ID())
	assert.Equal(t, 2, id.Len())
	assert.Equal(t, "FundingSource", id.Part(1))
	assert.Empty(t, id.Part(2))
	assert.Empty(t, id.Part(-1))
	assert.False(t, id.IsZero())
	assert.True(t, caseapi.CompositeID{}.IsZero())
	assert.True(t, id.Equal(caseapi.MustCompositeID("77", "FundingSource")))

	_, err := caseapi.NewCompositeID("a--b", "c")
	require.ErrorIs(t, err, caseapi.ErrIDPartSeparator)

	_, err = caseapi.NewCompositeID()
	require.ErrorIs(t, err, caseapi.ErrEmptyCompositeID)

	assert.Panics(t, func() { caseapi.MustCompositeID("", "x") })
}
