package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/core/internal/domain/entities"
)

func TestDomainErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"chore not found", fmt.Errorf("chore not found: %w", entities.ErrChoreNotFound), http.StatusNotFound},
		{"loan not found", entities.ErrLoanNotFound, http.StatusNotFound},
		{"member conflict", entities.ErrMemberAlreadyAssigned, http.StatusConflict},
		{"item already lent", entities.ErrItemAlreadyLent, http.StatusConflict},
		{"not connected", entities.ErrHouseholdsNotConnected, http.StatusForbidden},
		{"own household loan", entities.ErrOwnHouseholdLoan, http.StatusBadRequest},
		{"invalid recurrence", entities.ErrInvalidRecurrence, http.StatusBadRequest},
		// A wrapped infrastructure failure is a server fault, not a client error.
		{"storage failure", fmt.Errorf("failed to store schedule: %w", errors.New("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *echo.HTTPError
			require.ErrorAs(t, domainError(tt.err), &httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}
