package health_test

import (
	"catalog_server/api/health"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveMutation(t *testing.T) {
	okBefore := testutil.ToFloat64(health.ProductMutations.WithLabelValues("edit", "ok"))
	errBefore := testutil.ToFloat64(health.ProductMutations.WithLabelValues("edit", "error"))

	health.ObserveMutation("edit", nil)
	health.ObserveMutation("edit", nil)
	health.ObserveMutation("edit", errors.New("boom"))

	assert.Equal(t, okBefore+2, testutil.ToFloat64(health.ProductMutations.WithLabelValues("edit", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(health.ProductMutations.WithLabelValues("edit", "error")))
}
