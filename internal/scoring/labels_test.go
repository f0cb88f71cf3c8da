package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/constants"
)

func TestAllKnownValuesInRange(t *testing.T) {
	values := KnownValues()
	require.NotEmpty(t, values)

	for _, v := range values {
		score, ok := Score(v)
		require.True(t, ok, "value %q should be in the table", v)
		assert.GreaterOrEqual(t, score, 0.0, "value %q", v)
		assert.LessOrEqual(t, score, 10.0, "value %q", v)
	}
}

func TestScoreOrDefaultUnknownValue(t *testing.T) {
	assert.Equal(t, DefaultScore, ScoreOrDefault("Technical Accuracy", "Somewhat Correct-ish"))
	assert.Equal(t, DefaultScore, ScoreOrDefault("Confidence Level", ""))
}

func TestScoreKnownValues(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"None", 0},
		{"Average", 5},
		{"Exceptional", 10},
		{"Clearly Evident", 10},
		{"Technically Precise", 10},
		{"Directly Aligned", 10},
	}

	for _, tc := range cases {
		got, ok := Score(tc.value)
		require.True(t, ok, tc.value)
		assert.Equal(t, tc.want, got, tc.value)
	}
}

func TestAnswerLengthScaleIsNonMonotonic(t *testing.T) {
	medium, _ := Score("Medium")
	short, _ := Score("Extremely Short")
	long, _ := Score("Excessively Long")

	assert.Equal(t, 10.0, medium)
	assert.Equal(t, 1.0, short)
	assert.Equal(t, 1.0, long)
}

func TestWeightTypeOverrides(t *testing.T) {
	// Technical interviews weigh accuracy above the universal default.
	assert.Equal(t, 2.0, Weight("Technical Accuracy", constants.InterviewTypeTechnical))
	assert.Equal(t, 1.5, Weight("Technical Accuracy", constants.InterviewTypeGeneral))

	assert.Equal(t, 2.0, Weight("Leadership", constants.InterviewTypeLeadership))
	assert.Equal(t, 1.6, Weight("Leadership", constants.InterviewTypeBehavioral))

	// Unknown labels default to 1.0.
	assert.Equal(t, 1.0, Weight("Strategic Thinking", constants.InterviewTypeGeneral))
}

func TestLabelTemplateFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, LabelTemplate(constants.InterviewTypeGeneral), LabelTemplate("unknown-type"))

	for _, interviewType := range []string{
		constants.InterviewTypeTechnical,
		constants.InterviewTypeBehavioral,
		constants.InterviewTypeLeadership,
		constants.InterviewTypeGeneral,
	} {
		assert.Len(t, LabelTemplate(interviewType), 10, interviewType)
	}
}
