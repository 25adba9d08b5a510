//go:build postgres

package service_test

import (
	"testing"

	"github.com/google/uuid"

	"workspace-service/internal/store/storetest"
)

func TestProjectQuotaConcurrentCreatorsPostgres(t *testing.T) {
	e := newEnvWithStore(t, storetest.NewPostgres(t), nil)
	assertQuotaHoldsUnderContention(t, e, "race-"+uuid.NewString()[:8])
}
