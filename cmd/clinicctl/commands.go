package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/mmynk/clinicbook/internal/auth"
	"github.com/mmynk/clinicbook/internal/calculator"
	"github.com/mmynk/clinicbook/internal/config"
	"github.com/mmynk/clinicbook/internal/report"
	"github.com/mmynk/clinicbook/internal/service"
)

type clientsCmd struct{}

func (*clientsCmd) Name() string     { return "clients" }
func (*clientsCmd) Synopsis() string { return "list every client with its ledger" }
func (*clientsCmd) Usage() string {
	return `clients

  Prints the roster with completed sessions, charges, payments and balance
  of each client, followed by the practice totals.
`
}
func (*clientsCmd) SetFlags(*flag.FlagSet) {}

func (c *clientsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	practice, cfg, closeFn, err := openPractice(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	printMarkdown(os.Stdout, report.Roster(practice.Totals(), report.NewFormatter(cfg.Currency)))
	return subcommands.ExitSuccess
}

type statementCmd struct {
	clientID string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print the account statement of a client" }
func (*statementCmd) Usage() string {
	return `statement -client <id>

  Prints the sessions, payments and balance of one client.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.clientID, "client", "", "Client ID (required)")
}

func (c *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.clientID == "" {
		fmt.Fprintln(os.Stderr, "Error: -client is required.")
		return subcommands.ExitUsageError
	}

	practice, cfg, closeFn, err := openPractice(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	client, err := practice.Client(c.clientID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	appts := practice.Appointments(service.AppointmentFilter{ClientID: client.ID})
	payments := practice.Payments(client.ID)

	printMarkdown(os.Stdout, report.Statement(client, appts, payments, report.NewFormatter(cfg.Currency)))
	return subcommands.ExitSuccess
}

type recomputeCmd struct{}

func (*recomputeCmd) Name() string { return "recompute" }
func (*recomputeCmd) Synopsis() string {
	return "recompute every client ledger and save the repaired ones"
}
func (*recomputeCmd) Usage() string {
	return `recompute

  Recomputes the ledger of every client from its appointments and payments.
  Stale ledgers are reported and written back.
`
}
func (*recomputeCmd) SetFlags(*flag.FlagSet) {}

func (c *recomputeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	practice, _, closeFn, err := openPractice(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	// Load already repairs stale ledgers; a second pass finds nothing unless
	// the save failed.
	changed := practice.RecomputeAll(ctx)
	if pending := practice.SyncStatus().Pending; len(pending) > 0 {
		fmt.Fprintf(os.Stderr, "Error: could not save %s\n", strings.Join(pending, ", "))
		return subcommands.ExitFailure
	}
	fmt.Printf("%d clients checked, %d ledgers repaired\n", len(practice.Clients()), changed)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write clients, appointments and payments as JSON" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes a JSON document holding the three collections, to stdout by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (defaults to stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	practice, _, closeFn, err := openPractice(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	clients, appts, payments := practice.Snapshot()
	doc := struct {
		ExportedAt   time.Time `json:"exportedAt"`
		Clients      any       `json:"clients"`
		Appointments any       `json:"appointments"`
		Payments     any       `json:"payments"`
	}{time.Now().UTC(), clients, appts, payments}

	out := os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type clearCmd struct {
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete every stored client, appointment and payment" }
func (*clearCmd) Usage() string {
	return `clear -yes

  Removes all persisted data. This cannot be undone.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm deletion")
}

func (c *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: refusing to clear without -yes.")
		return subcommands.ExitUsageError
	}

	practice, _, closeFn, err := openPractice(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	if !practice.Reset(ctx) {
		fmt.Fprintln(os.Stderr, "Error: storage could not be cleared, see log.")
		return subcommands.ExitFailure
	}
	fmt.Println("All data cleared.")
	return subcommands.ExitSuccess
}

type hashPasscodeCmd struct{}

func (*hashPasscodeCmd) Name() string     { return "hash-passcode" }
func (*hashPasscodeCmd) Synopsis() string { return "hash a practitioner passcode for PASSCODE_HASH" }
func (*hashPasscodeCmd) Usage() string {
	return `hash-passcode [<passcode>]

  Prints the bcrypt hash of the passcode, read from stdin when not given.
`
}
func (*hashPasscodeCmd) SetFlags(*flag.FlagSet) {}

func (c *hashPasscodeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	passcode := f.Arg(0)
	if passcode == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "Error: reading passcode: %v\n", err)
			return subcommands.ExitFailure
		}
		passcode = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPasscode(passcode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Println(hash)
	return subcommands.ExitSuccess
}

type statusCmd struct {
	server   string
	passcode string
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "query the sync status and totals of a running server" }
func (*statusCmd) Usage() string {
	return `status [-server <url>] [-passcode <passcode>]

  Calls a running server. The passcode is required when the server has
  authentication enabled.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.server, "server", "http://localhost:8080", "Server base URL")
	f.StringVar(&c.passcode, "passcode", "", "Practitioner passcode")
}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := service.NewClient(&http.Client{Timeout: 10 * time.Second}, strings.TrimRight(c.server, "/"))
	if c.passcode != "" {
		if client, err = client.Login(ctx, c.passcode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: login: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	sync, err := service.Call[service.Empty, service.SyncStatusResponse](ctx, client, service.PracticeServiceName, "GetSyncStatus", &service.Empty{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	totals, err := service.Call[service.Empty, service.TotalsResponse](ctx, client, service.PracticeServiceName, "GetTotals", &service.Empty{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	t := calculator.Totals{
		TotalCharges:         totals.TotalCharges,
		TotalPaid:            totals.TotalPaid,
		Outstanding:          totals.Outstanding,
		Credit:               totals.Credit,
		OrphanedAppointments: totals.OrphanedAppointments,
		OrphanedPayments:     totals.OrphanedPayments,
	}
	for _, b := range totals.Clients {
		t.Clients = append(t.Clients, calculator.ClientBalance{ClientID: b.ClientID, ClientName: b.ClientName, Ledger: b.Ledger})
	}

	state := "online"
	if !sync.Online {
		state = "offline"
	}
	md := fmt.Sprintf("Server is **%s**", state)
	if len(sync.Pending) > 0 {
		md += fmt.Sprintf(", unsaved: %s", strings.Join(sync.Pending, ", "))
	}
	md += ".\n\n" + report.Roster(t, report.NewFormatter(cfg.Currency))
	printMarkdown(os.Stdout, md)
	return subcommands.ExitSuccess
}
