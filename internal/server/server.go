package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"charityportal/internal/auth"
	"charityportal/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-chi/cors"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type UserStore interface {
	User(ctx context.Context, userID int64) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
}

type DonationStore interface {
	Donations(ctx context.Context, q *types.DonationQuery) ([]*types.Donation, error)
	Donation(ctx context.Context, donationID int64) (*types.Donation, error)
	Create(ctx context.Context, donation *types.Donation) error
	Update(ctx context.Context, donationID int64, fields map[string]any) (*types.Donation, error)
	Cancel(ctx context.Context, donationID int64) (*types.Donation, error)
}

type ContributionStore interface {
	ContributionsByDonor(ctx context.Context, donorID int64) ([]*types.ContributionView, error)
	ContributionsByDonation(ctx context.Context, donationID int64) ([]*types.ContributionView, error)
	Contribution(ctx context.Context, contributionID int64) (*types.ContributionView, error)
	Create(ctx context.Context, contribution *types.Contribution, pickup *types.Pickup) (*types.ContributionView, error)
	UpdateStatus(ctx context.Context, contributionID int64, status types.ContributionStatus) (*types.ContributionView, error)
}

type NotificationStore interface {
	Notifications(ctx context.Context, userID int64, filter *types.NotificationFilter) ([]*types.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, notificationID string) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

type StatsStore interface {
	NGODashboard(ctx context.Context, ngoID int64) (*types.NGODashboard, error)
	DonorDashboard(ctx context.Context, donorID int64) (*types.DonorDashboard, error)
	AdminDashboard(ctx context.Context) (*types.AdminDashboard, error)
	Leaderboard(ctx context.Context, limit int) ([]*types.LeaderboardEntry, error)
}

type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators the API is served from. Images may be
// nil, which disables uploads.
type Dependencies struct {
	Tokens        *auth.TokenIssuer
	Users         UserStore
	Donations     DonationStore
	Contributions ContributionStore
	Notifications NotificationStore
	Stats         StatsStore
	Images        ImageStore
	DB            Pinger
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	tokens           *auth.TokenIssuer
	userRepo         UserStore
	donationRepo     DonationStore
	contributionRepo ContributionStore
	notificationRepo NotificationStore
	statsRepo        StatsStore
	images           ImageStore
	db               Pinger

	now     func() time.Time
	handler http.Handler
	server  *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Dependencies) *Service {
	s := &Service{
		logger: logger,
		config: config,

		tokens:           deps.Tokens,
		userRepo:         deps.Users,
		donationRepo:     deps.Donations,
		contributionRepo: deps.Contributions,
		notificationRepo: deps.Notifications,
		statsRepo:        deps.Stats,
		images:           deps.Images,
		db:               deps.DB,

		now: time.Now,
	}

	mux := flow.New()
	mux.NotFound = http.HandlerFunc(s.handleNotFound)
	mux.MethodNotAllowed = http.HandlerFunc(s.handleMethodNotAllowed)
	s.buildRouter(mux)

	// cors answers preflight requests itself, so it has to sit in front of
	// the router rather than inside a route group
	s.handler = s.RequestID(s.LoggingMiddleware(s.corsHandler()(s.StripTrailingSlash(mux))))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerRequestID},
		ExposedHeaders:   []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.HandleFunc("/", s.handleRoot, http.MethodGet)
	r.HandleFunc("/health", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/auth/me", s.handleMe, http.MethodGet)

		r.HandleFunc("/api/donations", s.handleListDonations, http.MethodGet)
		r.HandleFunc("/api/donations/:id", s.handleGetDonation, http.MethodGet)

		r.HandleFunc("/api/contributions/donor/:donorId", s.handleContributionsByDonor, http.MethodGet)
		r.HandleFunc("/api/contributions/donation/:donationId", s.handleContributionsByDonation, http.MethodGet)
		r.HandleFunc("/api/contributions", s.handleCreateContribution, http.MethodPost)

		r.HandleFunc("/api/notifications", s.handleListNotifications, http.MethodGet)
		r.HandleFunc("/api/notifications", s.handleClearNotifications, http.MethodDelete)
		r.HandleFunc("/api/notifications/count", s.handleUnreadCount, http.MethodGet)
		r.HandleFunc("/api/notifications/read-all", s.handleMarkAllRead, http.MethodPut)
		r.HandleFunc("/api/notifications/:id/read", s.handleMarkRead, http.MethodPut)

		r.HandleFunc("/api/leaderboard", s.handleLeaderboard, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRoles(types.RoleNGO))

			r.HandleFunc("/api/donations", s.handleCreateDonation, http.MethodPost)
			r.HandleFunc("/api/donations/:id", s.handleUpdateDonation, http.MethodPut)
			r.HandleFunc("/api/donations/:id", s.handleCancelDonation, http.MethodDelete)
			r.HandleFunc("/api/donations/:id/images", s.handleUploadDonationImage, http.MethodPost)

			r.HandleFunc("/api/dashboard/ngo", s.handleNGODashboard, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRoles(types.RoleNGO, types.RoleAdmin))

			r.HandleFunc("/api/contributions/:id/status", s.handleUpdateContributionStatus, http.MethodPut)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRoles(types.RoleDonor))

			r.HandleFunc("/api/dashboard/donor", s.handleDonorDashboard, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRoles(types.RoleAdmin))

			r.HandleFunc("/api/dashboard/admin", s.handleAdminDashboard, http.MethodGet)
		})
	})
}
