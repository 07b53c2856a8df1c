package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"charityportal/pkg/types"
)

// memDB is an in-memory stand-in for the Postgres repositories. It keeps the
// same rules the SQL layer enforces: unique emails, the donation lifecycle,
// no contributions to cancelled donations and notification fan-out.
type memDB struct {
	mu sync.Mutex

	clock  time.Time
	nextID int64

	users         []*types.User
	donations     []*types.Donation
	contributions []*types.Contribution
	pickups       []*types.Pickup
	notifications []*types.Notification
}

func newMemDB() *memDB {
	return &memDB{clock: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)}
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) user(id int64) *types.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (db *memDB) donation(id int64) *types.Donation {
	for _, d := range db.donations {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (db *memDB) contribution(id int64) *types.Contribution {
	for _, c := range db.contributions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (db *memDB) notify(n *types.Notification) {
	cp := *n
	cp.ID = fmt.Sprintf("n%d", db.id())
	cp.CreatedAt = db.tick()
	db.notifications = append(db.notifications, &cp)
}

func (db *memDB) view(c *types.Contribution) *types.ContributionView {
	v := &types.ContributionView{Contribution: *c}
	if d := db.donation(c.DonationID); d != nil {
		ngoID, donationType, location := d.NgoID, d.DonationType, d.Location
		v.NgoID = &ngoID
		v.DonationType = &donationType
		v.Location = &location
		v.NgoName = d.NgoName
	}
	for i := len(db.pickups) - 1; i >= 0; i-- {
		if db.pickups[i].ContributionID == c.ID {
			p := *db.pickups[i]
			v.Pickup = &p
			break
		}
	}
	return v
}

type memUsers struct{ db *memDB }

func (s memUsers) User(ctx context.Context, userID int64) (*types.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u := s.db.user(userID)
	if u == nil {
		return nil, types.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (s memUsers) Create(ctx context.Context, user *types.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return types.ErrEmailTaken
		}
	}

	user.ID = s.db.id()
	user.CreatedAt = s.db.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.db.users = append(s.db.users, &cp)
	return nil
}

type memDonations struct{ db *memDB }

func (s memDonations) Donations(ctx context.Context, q *types.DonationQuery) ([]*types.Donation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Donation, 0)
	for _, d := range s.db.donations {
		if q.Matches(d) {
			cp := *d
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s memDonations) Donation(ctx context.Context, donationID int64) (*types.Donation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d := s.db.donation(donationID)
	if d == nil {
		return nil, types.ErrDonationNotFound
	}
	cp := *d
	return &cp, nil
}

func (s memDonations) Create(ctx context.Context, donation *types.Donation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	ngo := s.db.user(donation.NgoID)
	if ngo == nil {
		return types.ErrUserNotFound
	}

	donation.ID = s.db.id()
	donation.NgoName = &ngo.Name
	donation.NgoEmail = &ngo.Email
	donation.ContactInfo = ngo.ContactInfo
	donation.CreatedAt = s.db.tick()
	donation.UpdatedAt = donation.CreatedAt

	cp := *donation
	s.db.donations = append(s.db.donations, &cp)

	template := types.DonationCreatedNotification(ngo.Name, &cp)
	for _, u := range s.db.users {
		if u.Role == types.RoleDonor {
			n := *template
			n.UserID = u.ID
			s.db.notify(&n)
		}
	}

	return nil
}

func (s memDonations) Update(ctx context.Context, donationID int64, fields map[string]any) (*types.Donation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d := s.db.donation(donationID)
	if d == nil {
		return nil, types.ErrDonationNotFound
	}

	if d.Status.Terminal() {
		for column := range fields {
			if column != "status" {
				return nil, types.ClosedDonationError(d.Status)
			}
		}
	}

	if next, ok := fields["status"].(types.DonationStatus); ok && !d.Status.CanTransitionTo(next) {
		return nil, types.InvalidTransitionError(d.Status, next)
	}

	for column, value := range fields {
		switch column {
		case "donation_type":
			d.DonationType = value.(types.DonationType)
		case "quantity_or_amount":
			d.QuantityOrAmount = value.(float64)
		case "location":
			d.Location = value.(string)
		case "pickup_date_time":
			d.PickupDateTime = value.(time.Time)
		case "priority":
			d.Priority = value.(types.Priority)
		case "status":
			d.Status = value.(types.DonationStatus)
		case "description":
			d.Description = optionalString(value)
		case "images":
			d.Images = optionalString(value)
		default:
			return nil, errors.New("unexpected column " + column)
		}
	}
	d.UpdatedAt = s.db.tick()

	cp := *d
	return &cp, nil
}

func (s memDonations) Cancel(ctx context.Context, donationID int64) (*types.Donation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d := s.db.donation(donationID)
	if d == nil {
		return nil, types.ErrDonationNotFound
	}

	if d.Status != types.DonationStatusCancelled {
		if !d.Status.CanTransitionTo(types.DonationStatusCancelled) {
			return nil, types.InvalidTransitionError(d.Status, types.DonationStatusCancelled)
		}
		d.Status = types.DonationStatusCancelled
		d.UpdatedAt = s.db.tick()
	}

	cp := *d
	return &cp, nil
}

func optionalString(value any) *string {
	switch v := value.(type) {
	case *string:
		return v
	case string:
		return &v
	}
	return nil
}

type memContributions struct{ db *memDB }

func (s memContributions) ContributionsByDonor(ctx context.Context, donorID int64) ([]*types.ContributionView, error) {
	return s.list(func(c *types.Contribution) bool { return c.DonorID == donorID }, false), nil
}

func (s memContributions) ContributionsByDonation(ctx context.Context, donationID int64) ([]*types.ContributionView, error) {
	return s.list(func(c *types.Contribution) bool { return c.DonationID == donationID }, true), nil
}

func (s memContributions) list(match func(*types.Contribution) bool, withDonor bool) []*types.ContributionView {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.ContributionView, 0)
	for i := len(s.db.contributions) - 1; i >= 0; i-- {
		c := s.db.contributions[i]
		if !match(c) {
			continue
		}

		v := s.db.view(c)
		if withDonor {
			v.NgoID, v.DonationType, v.Location, v.NgoName = nil, nil, nil, nil
			if u := s.db.user(c.DonorID); u != nil {
				name, email := u.Name, u.Email
				v.DonorName = &name
				v.DonorEmail = &email
			}
		}
		out = append(out, v)
	}
	return out
}

func (s memContributions) Contribution(ctx context.Context, contributionID int64) (*types.ContributionView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c := s.db.contribution(contributionID)
	if c == nil {
		return nil, types.ErrContributionNotFound
	}
	return s.db.view(c), nil
}

func (s memContributions) Create(ctx context.Context, contribution *types.Contribution, pickup *types.Pickup) (*types.ContributionView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d := s.db.donation(contribution.DonationID)
	if d == nil {
		return nil, types.ErrDonationNotFound
	}
	if d.Status == types.DonationStatusCancelled {
		return nil, types.ErrDonationCancelled
	}

	donor := s.db.user(contribution.DonorID)
	if donor == nil || donor.Role != types.RoleDonor {
		return nil, types.ErrDonorNotFound
	}

	contribution.ID = s.db.id()
	contribution.CreatedAt = s.db.tick()
	contribution.UpdatedAt = contribution.CreatedAt
	cp := *contribution
	s.db.contributions = append(s.db.contributions, &cp)

	if pickup != nil {
		p := *pickup
		p.ID = s.db.id()
		p.ContributionID = cp.ID
		p.CreatedAt = s.db.tick()
		s.db.pickups = append(s.db.pickups, &p)
	}

	s.db.notify(types.ContributionReceivedNotification(d.NgoID, donor.Name, d, cp.ID))

	return s.db.view(&cp), nil
}

func (s memContributions) UpdateStatus(ctx context.Context, contributionID int64, status types.ContributionStatus) (*types.ContributionView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c := s.db.contribution(contributionID)
	if c == nil {
		return nil, types.ErrContributionNotFound
	}

	previous := c.Status
	c.Status = status
	c.UpdatedAt = s.db.tick()

	d := s.db.donation(c.DonationID)
	if status.Advances() && d.Status == types.DonationStatusPending {
		d.Status = types.DonationStatusConfirmed
		d.UpdatedAt = c.UpdatedAt
	}

	if previous != status {
		ngoName := ""
		if d.NgoName != nil {
			ngoName = *d.NgoName
		}
		s.db.notify(types.ContributionStatusNotification(c, ngoName))
	}

	return s.db.view(c), nil
}

type memNotifications struct{ db *memDB }

func (s memNotifications) Notifications(ctx context.Context, userID int64, filter *types.NotificationFilter) ([]*types.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*types.Notification, 0)
	for i := len(s.db.notifications) - 1; i >= 0; i-- {
		n := s.db.notifications[i]
		if n.UserID != userID || (filter.UnreadOnly && n.Read) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s memNotifications) UnreadCount(ctx context.Context, userID int64) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	count := 0
	for _, n := range s.db.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s memNotifications) MarkRead(ctx context.Context, userID int64, notificationID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, n := range s.db.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

func (s memNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var updated int64
	for _, n := range s.db.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s memNotifications) Clear(ctx context.Context, userID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	kept := s.db.notifications[:0]
	var deleted int64
	for _, n := range s.db.notifications {
		if n.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.db.notifications = kept
	return deleted, nil
}

type memStats struct{ db *memDB }

func (s memStats) NGODashboard(ctx context.Context, ngoID int64) (*types.NGODashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := new(types.NGODashboard)
	for _, d := range s.db.donations {
		if d.NgoID != ngoID {
			continue
		}
		out.TotalDonations++
		switch d.Status {
		case types.DonationStatusPending:
			out.PendingDonations++
		case types.DonationStatusConfirmed:
			out.ConfirmedDonations++
		case types.DonationStatusCompleted:
			out.CompletedDonations++
		case types.DonationStatusCancelled:
			out.CancelledDonations++
		}
	}
	for _, c := range s.db.contributions {
		if d := s.db.donation(c.DonationID); d != nil && d.NgoID == ngoID {
			out.ContributionsReceived++
			out.AmountReceived += c.ContributionAmount
		}
	}
	return out, nil
}

func (s memStats) DonorDashboard(ctx context.Context, donorID int64) (*types.DonorDashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := new(types.DonorDashboard)
	for _, c := range s.db.contributions {
		if c.DonorID != donorID {
			continue
		}
		out.TotalContributions++
		out.TotalAmount += c.ContributionAmount
		switch c.Status {
		case types.ContributionStatusPending:
			out.PendingContributions++
		case types.ContributionStatusConfirmed:
			out.ConfirmedContributions++
		case types.ContributionStatusCompleted:
			out.CompletedContributions++
		}
	}
	return out, nil
}

func (s memStats) AdminDashboard(ctx context.Context) (*types.AdminDashboard, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := &types.AdminDashboard{
		TotalUsers:         len(s.db.users),
		TotalDonations:     len(s.db.donations),
		TotalContributions: len(s.db.contributions),
	}
	for _, d := range s.db.donations {
		switch d.Status {
		case types.DonationStatusPending:
			out.PendingDonations++
		case types.DonationStatusCompleted:
			out.CompletedDonations++
		}
	}
	for _, c := range s.db.contributions {
		out.TotalAmount += c.ContributionAmount
	}
	return out, nil
}

func (s memStats) Leaderboard(ctx context.Context, limit int) ([]*types.LeaderboardEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	byDonor := make(map[int64]*types.LeaderboardEntry)
	for _, c := range s.db.contributions {
		d := s.db.donation(c.DonationID)
		u := s.db.user(c.DonorID)
		if d == nil || u == nil || d.Status == types.DonationStatusCancelled || u.Role != types.RoleDonor {
			continue
		}
		entry, ok := byDonor[u.ID]
		if !ok {
			entry = &types.LeaderboardEntry{DonorID: u.ID, Name: u.Name}
			byDonor[u.ID] = entry
		}
		entry.TotalContributions++
		entry.TotalAmount += c.ContributionAmount
	}

	out := make([]*types.LeaderboardEntry, 0, len(byDonor))
	for _, entry := range byDonor {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].DonorID < out[j].DonorID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i, entry := range out {
		entry.Rank = i + 1
	}
	return out, nil
}

type memImages struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memImages) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return "s3://test-bucket/" + key, nil
}

func (s *memImages) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }
