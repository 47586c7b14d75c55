package rest_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/travel-agency/internal/transport/rest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HealthHandler", func() {
	var (
		mock    sqlmock.Sqlmock
		handler *rest.HealthHandler
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
		mock = m
		handler = rest.NewHealthHandler(db)
	})

	It("should report healthy when the database answers", func() {
		mock.ExpectPing()

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var body rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Status).To(Equal(rest.HealthHealthy))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("should report unavailable without leaking the driver error", func() {
		mock.ExpectPing().WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(w.Body.String()).NotTo(ContainSubstring("10.0.0.5"))
	})

	It("should answer ping without touching the database", func() {
		w := httptest.NewRecorder()
		handler.Ping(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})
})
