package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	"github.com/AdamBeresnev/olympics-draws/internal/catalog"
	"github.com/AdamBeresnev/olympics-draws/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{bracket.ErrDrawNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 42", bracket.ErrMatchNotFound), http.StatusNotFound},
		{catalog.ErrEventNotFound, http.StatusNotFound},
		{bracket.ErrUnsupported, http.StatusUnprocessableEntity},
		{bracket.ErrInvalidConfiguration, http.StatusBadRequest},
		{bracket.ErrInvalidWinner, http.StatusBadRequest},
		{bracket.ErrParticipantsNotReady, http.StatusConflict},
		{bracket.ErrIllegalStateTransition, http.StatusConflict},
		{fmt.Errorf("save: %w", store.ErrVersionConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestServiceErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceError(rec, "Failed to load draw", errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	ServiceError(rec, "Failed to complete match", fmt.Errorf("%w: %q", bracket.ErrInvalidWinner, "Zed"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zed")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Winner string `json:"winner"`
	}

	testCases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"winner":"A"}`, false},
		{"empty body", ``, true},
		{"unknown field", `{"winner":"A","loser":"B"}`, true},
		{"trailing object", `{"winner":"A"}{"winner":"B"}`, true},
		{"malformed", `{"winner":`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got payload
			err := ReadJSON(httptest.NewRecorder(), req, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "A", got.Winner)
		})
	}
}
