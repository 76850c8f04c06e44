package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// AddressRow is a display struct for address list output
type AddressRow struct {
	ID      string
	Address string
	Name    string
	Owner   string
	Main    string
	Tags    string
}

// AddressesListCmd lists addresses of a user, or every address with --all
type AddressesListCmd struct {
	All      bool     `help:"List addresses of all users" short:"a"`
	Query    string   `help:"Partial match on the address (with --all)"`
	Tag      []string `help:"Only addresses with any of these tags (with --all)"`
	Limit    int      `help:"Page size (with --all)" short:"l" default:"20"`
	Next     string   `help:"Cursor for the next page"`
	Previous string   `help:"Cursor for the previous page"`
	Page     int      `help:"Page number"`
}

var addressColumns = []output.Column{
	{Name: "ID", Key: "ID"},
	{Name: "Address", Key: "Address"},
	{Name: "Name", Key: "Name", Width: 30},
	{Name: "Owner", Key: "Owner"},
	{Name: "Main", Key: "Main"},
	{Name: "Tags", Key: "Tags"},
}

// Run executes the list addresses command
func (cmd *AddressesListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	if cmd.All {
		resp, err := services.Addresses.List(ctx, wildduck.AddressListParams{
			Query:      optString(cmd.Query),
			Tags:       cmd.Tag,
			PageParams: pageParams(cmd.Limit, cmd.Next, cmd.Previous, cmd.Page),
		})
		if err != nil {
			return output.FromAPIError(err, "list addresses")
		}

		rows := make([]AddressRow, len(resp.Results))
		for i, a := range resp.Results {
			owner := a.User
			if a.Forwarded {
				owner = "→ " + strings.Join(a.Targets, ", ")
			}
			rows[i] = AddressRow{
				ID:      a.ID,
				Address: a.Address,
				Name:    a.Name,
				Owner:   owner,
				Tags:    strings.Join(a.Tags, ","),
			}
		}

		if err := fp.Formatter.PrintList(rows, addressColumns); err != nil {
			return err
		}
		printCursorHint(fp.Err, resp.NextCursor, resp.PreviousCursor)
		return nil
	}

	user := sp.User()
	resp, err := services.Addresses.ListForUser(ctx, user, wildduck.UserAddressParams{})
	if err != nil {
		return output.FromAPIError(err, "list addresses")
	}

	rows := make([]AddressRow, len(resp.Results))
	for i, a := range resp.Results {
		rows[i] = AddressRow{
			ID:      a.ID,
			Address: a.Address,
			Name:    a.Name,
			Owner:   user,
			Main:    formatBool(a.Main),
			Tags:    strings.Join(a.Tags, ","),
		}
	}

	return fp.Formatter.PrintList(rows, addressColumns)
}

// addressRef returns the path segment for an address argument
func addressRef(ref string) string {
	return strings.TrimSpace(ref)
}

// AddressesGetCmd shows one address of a user
type AddressesGetCmd struct {
	Address string `arg:"" help:"Address id or email address"`
}

// Run executes the get address command
func (cmd *AddressesGetCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	addr, err := services.Addresses.Get(ctx, sp.User(), addressRef(cmd.Address))
	if err != nil {
		return output.FromAPIError(err, "get address")
	}

	return fp.Formatter.Print(addr)
}

// AddressesCreateCmd adds an address to a user
type AddressesCreateCmd struct {
	Address  string   `arg:"" help:"Email address, e.g. alias@example.com or *@example.com"`
	Name     string   `help:"Display name"`
	Main     bool     `help:"Make this the main address"`
	Wildcard bool     `help:"Allow a wildcard address" name:"wildcard"`
	Tag      []string `help:"Tags (repeatable)"`
}

// Run executes the create address command
func (cmd *AddressesCreateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would add address %s to %s\n", cmd.Address, sp.User())
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	resp, err := services.Addresses.Create(ctx, sp.User(), wildduck.CreateAddressRequest{
		Address:       cmd.Address,
		Name:          cmd.Name,
		Main:          cmd.Main,
		AllowWildcard: cmd.Wildcard,
		Tags:          cmd.Tag,
	})
	if err != nil {
		return output.FromAPIError(err, "create address")
	}

	fmt.Fprintf(fp.Err, "Address created: %s\n", cmd.Address)
	return fp.Formatter.Print(resp)
}

// AddressesUpdateCmd updates an address of a user
type AddressesUpdateCmd struct {
	Address string   `arg:"" help:"Address id or email address"`
	Rename  string   `help:"New email address"`
	Name    string   `help:"New display name"`
	Main    bool     `help:"Make this the main address"`
	Tag     []string `help:"Replace tags (repeatable)"`
}

// Run executes the update address command
func (cmd *AddressesUpdateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	req := wildduck.UpdateAddressRequest{
		Address: optString(cmd.Rename),
		Name:    optString(cmd.Name),
		Tags:    cmd.Tag,
	}
	if cmd.Main {
		req.Main = wildduck.Bool(true)
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would update address: %s\n", cmd.Address)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	if err := services.Addresses.Update(ctx, sp.User(), addressRef(cmd.Address), req); err != nil {
		return output.FromAPIError(err, "update address")
	}

	fmt.Fprintf(fp.Err, "Address updated: %s\n", cmd.Address)
	return nil
}

// AddressesDeleteCmd removes an address from a user
type AddressesDeleteCmd struct {
	Address string `arg:"" help:"Address id or email address"`
	Confirm bool   `help:"Confirm deletion"`
}

// Run executes the delete address command
func (cmd *AddressesDeleteCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if err := requireConfirmation(globals, cmd.Confirm, "Deletion"); err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would delete address: %s\n", cmd.Address)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	if err := services.Addresses.Delete(ctx, sp.User(), addressRef(cmd.Address)); err != nil {
		return output.FromAPIError(err, "delete address")
	}

	fmt.Fprintf(fp.Err, "Address deleted: %s\n", cmd.Address)
	return nil
}

// AddressesResolveCmd looks up who receives mail for an address
type AddressesResolveCmd struct {
	Address  string `arg:"" help:"Email address"`
	Wildcard bool   `help:"Fall back to wildcard addresses" name:"wildcard"`
}

// Run executes the resolve address command
func (cmd *AddressesResolveCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	params := wildduck.ResolveAddressParams{}
	if cmd.Wildcard {
		params.AllowWildcard = wildduck.Bool(true)
	}

	resolved, err := services.Addresses.Resolve(ctx, addressRef(cmd.Address), params)
	if err != nil {
		return output.FromAPIError(err, "resolve address")
	}

	return fp.Formatter.Print(resolved)
}
