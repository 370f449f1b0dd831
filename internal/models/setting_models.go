package models

// Settings is the singleton store configuration.
// An empty AccessPIN disables the login gate entirely.
type Settings struct {
	MartName      string `json:"martName"`
	AdminName     string `json:"adminName"`
	Address       string `json:"address"`
	Contact       string `json:"contact"`
	Currency      string `json:"currency"`
	AccessPIN     string `json:"accessPin"`
	UseExternalDB bool   `json:"useExternalDB"`
	APIEndpoint   string `json:"apiEndpoint"`
}

// PINRequired reports whether the login gate is active.
func (s Settings) PINRequired() bool {
	return s.AccessPIN != ""
}

// RemoteEnabled reports whether the settings ask for remote sync.
func (s Settings) RemoteEnabled() bool {
	return s.UseExternalDB && s.APIEndpoint != ""
}

// DefaultSettings returns the seed settings used when nothing was ever saved.
func DefaultSettings() Settings {
	return Settings{
		MartName:  "MART INVENTORY",
		AdminName: "Admin User",
		Address:   "123 Main Street, City",
		Contact:   "+1 234 567 890",
		Currency:  "Rs.",
		AccessPIN: "",
	}
}
