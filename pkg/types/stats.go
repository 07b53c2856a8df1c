package types

type NGODashboard struct {
	TotalDonations        int     `db:"total_donations" json:"totalDonations"`
	PendingDonations      int     `db:"pending_donations" json:"pendingDonations"`
	ConfirmedDonations    int     `db:"confirmed_donations" json:"confirmedDonations"`
	CompletedDonations    int     `db:"completed_donations" json:"completedDonations"`
	CancelledDonations    int     `db:"cancelled_donations" json:"cancelledDonations"`
	ContributionsReceived int     `db:"contributions_received" json:"contributionsReceived"`
	AmountReceived        float64 `db:"amount_received" json:"amountReceived"`
}

type DonorDashboard struct {
	TotalContributions     int     `db:"total_contributions" json:"totalContributions"`
	TotalAmount            float64 `db:"total_amount" json:"totalAmount"`
	PendingContributions   int     `db:"pending_contributions" json:"pendingContributions"`
	ConfirmedContributions int     `db:"confirmed_contributions" json:"confirmedContributions"`
	CompletedContributions int     `db:"completed_contributions" json:"completedContributions"`
}

type AdminDashboard struct {
	TotalUsers         int     `db:"total_users" json:"totalUsers"`
	TotalDonations     int     `db:"total_donations" json:"totalDonations"`
	TotalContributions int     `db:"total_contributions" json:"totalContributions"`
	PendingDonations   int     `db:"pending_donations" json:"pendingDonations"`
	CompletedDonations int     `db:"completed_donations" json:"completedDonations"`
	TotalAmount        float64 `db:"total_amount" json:"totalAmount"`
}

type LeaderboardEntry struct {
	Rank               int     `db:"-" json:"rank"`
	DonorID            int64   `db:"donor_id" json:"id"`
	Name               string  `db:"name" json:"name"`
	TotalContributions int     `db:"total_contributions" json:"totalContributions"`
	TotalAmount        float64 `db:"total_amount" json:"totalAmount"`
}
