package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskpoints/internal/apperr"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Server{logger: slog.Default()}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Invalid("title", "is required"), http.StatusBadRequest},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("find task"), apperr.ErrNotFound), http.StatusNotFound},
		{"conflict", &apperr.ConflictError{Detail: "category exists"}, http.StatusConflict},
		{"transaction", &apperr.TransactionError{Err: errors.New("owner row missing")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			s.respondError(c, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
