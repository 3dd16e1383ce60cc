package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/internal/http/router"
	"basegraph.app/rendezvous/internal/queue"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
	"basegraph.app/rendezvous/internal/store"
)

type nopEnqueuer struct{ count int }

func (e *nopEnqueuer) Enqueue(context.Context, queue.CalendarNotification) error {
	e.count++
	return nil
}

var _ = Describe("SetupRoutes", func() {
	var (
		engine   *gin.Engine
		enqueuer *nopEnqueuer
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		enqueuer = &nopEnqueuer{}

		cfg := config.Config{JWTSecret: "jwt", Webhook: config.WebhookConfig{Secret: "s3cret"}}
		services := service.NewServices(store.NewStores(nil), nil, nil, realtime.NewRegistry(), cfg)
		router.SetupRoutes(engine, services, router.RouterConfig{
			WebhookSecret: cfg.Webhook.Secret,
			Enqueuer:      enqueuer,
		})
	})

	serve := func(req *http.Request) int {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	It("serves health without auth", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/health", nil))).To(Equal(http.StatusOK))
	})

	DescribeTable("guards the API behind a session",
		func(method, path string) {
			Expect(serve(httptest.NewRequest(method, path, nil))).To(Equal(http.StatusUnauthorized))
		},
		Entry("create meeting", http.MethodPost, "/api/v1/meetings"),
		Entry("respond", http.MethodPost, "/api/v1/invitations/1/respond"),
		Entry("notifications", http.MethodGet, "/api/v1/notifications"),
		Entry("mark read", http.MethodPut, "/api/v1/notifications/1/read"),
		Entry("me", http.MethodGet, "/api/v1/me"),
		Entry("watch", http.MethodPost, "/api/v1/calendar/watch"),
	)

	It("routes the calendar webhook without a session", func() {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/google-calendar?token=s3cret", nil)
		req.Header.Set("X-Goog-Channel-ID", "chan-1")
		req.Header.Set("X-Goog-Resource-State", "exists")

		Expect(serve(req)).To(Equal(http.StatusOK))
		Expect(enqueuer.count).To(Equal(1))
	})
})
