package cli

import (
	"github.com/spf13/cobra"
)

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the store settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the store settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				st := s.store.Settings()
				pin := "(none)"
				if st.PINRequired() {
					pin = "(set)"
					// The PIN itself is only shown to someone who already knows it.
					if s.store.Unlock(rootOpts.PIN) == nil {
						pin = st.AccessPIN
					}
				}
				view := st
				view.AccessPIN = pin
				return s.out.Result(view, func() error {
					return s.out.Table([]string{"SETTING", "VALUE"}, [][]string{
						{"Store name", st.MartName},
						{"Admin", st.AdminName},
						{"Address", st.Address},
						{"Contact", st.Contact},
						{"Currency", st.Currency},
						{"Access PIN", pin},
						{"External sync", boolWord(st.UseExternalDB)},
						{"API endpoint", st.APIEndpoint},
					})
				})
			})
		},
	})

	var (
		name, admin, address, contact, currency, pin, endpoint string
		remote                                                  bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, true, func(s *session) error {
				st := s.store.Settings()
				changed := cmd.Flags().Changed
				if changed("name") {
					st.MartName = name
				}
				if changed("admin") {
					st.AdminName = admin
				}
				if changed("address") {
					st.Address = address
				}
				if changed("contact") {
					st.Contact = contact
				}
				if changed("currency") {
					st.Currency = currency
				}
				if changed("access-pin") {
					st.AccessPIN = pin
				}
				if changed("remote") {
					st.UseExternalDB = remote
				}
				if changed("api-endpoint") {
					st.APIEndpoint = endpoint
				}
				if err := s.store.UpdateSettings(st); err != nil {
					return err
				}
				s.out.Printf("Settings updated\n")
				return nil
			})
		},
	}
	set.Flags().StringVar(&name, "name", "", "store name")
	set.Flags().StringVar(&admin, "admin", "", "admin name")
	set.Flags().StringVar(&address, "address", "", "address")
	set.Flags().StringVar(&contact, "contact", "", "contact")
	set.Flags().StringVar(&currency, "currency", "", "currency symbol")
	set.Flags().StringVar(&pin, "access-pin", "", "new access PIN (empty disables the PIN)")
	set.Flags().BoolVar(&remote, "remote", false, "sync with the remote store")
	set.Flags().StringVar(&endpoint, "api-endpoint", "", "remote API endpoint")
	cmd.AddCommand(set)

	return cmd
}

func boolWord(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
