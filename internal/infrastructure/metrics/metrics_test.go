package metrics

import (
	"testing"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestRecordMatch(t *testing.T) {
	before := testutil.ToFloat64(matchRequests.WithLabelValues("fuzzy"))
	noneBefore := testutil.ToFloat64(matchRequests.WithLabelValues("none"))

	RecordMatch(domain.FuzzyMatch, 2*time.Millisecond)
	RecordMatch("", time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(matchRequests.WithLabelValues("fuzzy")))
	assert.Equal(t, noneBefore+1, testutil.ToFloat64(matchRequests.WithLabelValues("none")))
}

func TestRecordEnhancedFood(t *testing.T) {
	before := testutil.ToFloat64(enhancedFoods.WithLabelValues(OutcomeUnmatched))
	RecordEnhancedFood(OutcomeUnmatched)
	assert.Equal(t, before+1, testutil.ToFloat64(enhancedFoods.WithLabelValues(OutcomeUnmatched)))
}
