// internal/handlers/marketing/lead-magnet/models.go
package leadmagnet

type SendInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

type SendOutput struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

type StatsOutput struct {
	Success          bool   `json:"success"`
	TotalDownloads   int64  `json:"total_downloads"`
	DownloadsToday   int64  `json:"downloads_today"`
	ThisMonth        int64  `json:"this_month"`
	UniqueDownloaders int    `json:"unique_downloaders"`
	TotalSubscribers int    `json:"total_subscribers"`
	ConversionRate   string `json:"conversion_rate"`
}
