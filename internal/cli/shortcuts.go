package cli

// LsCmd provides desire-path shortcuts for listing resources
type LsCmd struct {
	Users     UsersListCmd     `cmd:"" help:"List users (shortcut for users list)"`
	Mailboxes MailboxesListCmd `cmd:"" help:"List mailboxes (shortcut for mailboxes list)"`
	Messages  MessagesListCmd  `cmd:"" help:"List messages (shortcut for messages list)"`
	Addresses AddressesListCmd `cmd:"" help:"List addresses (shortcut for addresses list)"`
}
